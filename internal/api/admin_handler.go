package api

import (
	"encoding/json"
	"net/http"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	"motorserve/internal/service"
)

type userLister interface {
	ListUsers(role string) ([]db.User, error)
}

// AdminHandler exposes the platform operator surface: user oversight,
// category taxonomy and center activation.
type AdminHandler struct {
	Users    userLister
	Catalog  *service.CatalogService
	Invoices *service.InvoiceService
}

func NewAdminHandler(users userLister, catalog *service.CatalogService, invoices *service.InvoiceService) *AdminHandler {
	return &AdminHandler{Users: users, Catalog: catalog, Invoices: invoices}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !db.Role(role).Valid() {
		http.Error(w, "Invalid role filter", http.StatusBadRequest)
		return
	}
	users, err := h.Users.ListUsers(role)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entities.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.Catalog.ListCenters(false)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entities.CenterResponse, 0, len(centers))
	for i := range centers {
		out = append(out, centerResponse(&centers[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) SetCenterActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Catalog.SetCenterActive(id, *req.IsActive); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Center updated"})
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req entities.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	category, err := h.Catalog.CreateCategory(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	category, err := h.Catalog.UpdateCategory(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Invoices.List(requestActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}
