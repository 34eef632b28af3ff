package api

import (
	"net/http"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	"motorserve/internal/service"
)

// CatalogHandler serves the public browse endpoints: no auth required.
type CatalogHandler struct {
	Service *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

func centerResponse(c *db.ServiceCenter) entities.CenterResponse {
	return entities.CenterResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Address:      c.Address,
		City:         c.City,
		State:        c.State,
		Phone:        c.Phone,
		Email:        c.Email,
		IsActive:     c.IsActive,
		Rating:       c.Rating,
		TotalReviews: c.TotalReviews,
	}
}

func (h *CatalogHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.Service.ListCenters(true)
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

func (h *CatalogHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	center, err := h.Service.GetCenter(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, centerResponse(center))
}

func (h *CatalogHandler) ListCenterServices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	services, err := h.Service.ListCenterServices(id, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
