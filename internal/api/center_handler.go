package api

import (
	"encoding/json"
	"net/http"

	"motorserve/internal/entities"
	"motorserve/internal/service"
)

// CenterHandler groups everything a service center account manages: its
// profile, service offerings, mechanics and the dashboard.
type CenterHandler struct {
	Catalog   *service.CatalogService
	Analytics *service.AnalyticsService
}

func NewCenterHandler(catalog *service.CatalogService, analytics *service.AnalyticsService) *CenterHandler {
	return &CenterHandler{Catalog: catalog, Analytics: analytics}
}

func (h *CenterHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req entities.CenterProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	center, err := h.Catalog.CreateCenterProfile(requestActor(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, centerResponse(center))
}

func (h *CenterHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req entities.CenterProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	center, err := h.Catalog.UpdateCenterProfile(requestActor(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, centerResponse(center))
}

func (h *CenterHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor := requestActor(r)
	if actor.Center == nil {
		http.Error(w, "Service center profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, centerResponse(actor.Center))
}

func (h *CenterHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req entities.ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	svc, err := h.Catalog.CreateService(requestActor(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (h *CenterHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	svc, err := h.Catalog.UpdateService(requestActor(r), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *CenterHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	actor := requestActor(r)
	if actor.Center == nil {
		http.Error(w, "Service center profile not found", http.StatusNotFound)
		return
	}
	services, err := h.Catalog.ListCenterServices(actor.Center.ID, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *CenterHandler) CreateMechanic(w http.ResponseWriter, r *http.Request) {
	var req entities.MechanicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	mechanic, err := h.Catalog.CreateMechanic(requestActor(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mechanic)
}

func (h *CenterHandler) UpdateMechanic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.MechanicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	mechanic, err := h.Catalog.UpdateMechanic(requestActor(r), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mechanic)
}

func (h *CenterHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.Catalog.ListMechanics(requestActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mechanics)
}

func (h *CenterHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Analytics.Dashboard(requestActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *CenterHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Analytics.Analyze(requestActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
