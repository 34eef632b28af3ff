package api

import (
	"encoding/json"
	"net/http"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	"motorserve/internal/service"
)

type InventoryHandler struct {
	Service *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{Service: svc}
}

func partResponse(p *db.SparePart) entities.SparePartResponse {
	return entities.SparePartResponse{
		ID:            p.ID,
		Name:          p.Name,
		PartNumber:    p.PartNumber,
		Description:   p.Description,
		Category:      p.Category,
		Supplier:      p.Supplier,
		UnitPrice:     p.UnitPrice,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *InventoryHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req entities.SparePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	part, err := h.Service.CreatePart(requestActor(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, partResponse(part))
}

func (h *InventoryHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	lowStockOnly := r.URL.Query().Get("low_stock") == "true"
	parts, err := h.Service.ListParts(requestActor(r), lowStockOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entities.SparePartResponse, 0, len(parts))
	for i := range parts {
		out = append(out, partResponse(&parts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InventoryHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	part, err := h.Service.GetPart(requestActor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partResponse(part))
}

func (h *InventoryHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.SparePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	part, err := h.Service.UpdatePart(requestActor(r), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partResponse(part))
}

func (h *InventoryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.InventoryTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	part, err := h.Service.RecordTransaction(requestActor(r), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, partResponse(part))
}

func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	txns, err := h.Service.ListTransactions(requestActor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entities.InventoryTransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, entities.InventoryTransactionResponse{
			ID:              t.ID,
			TransactionType: string(t.TransactionType),
			Quantity:        t.Quantity,
			UnitPrice:       t.UnitPrice,
			Notes:           t.Notes,
			CreatedBy:       t.CreatedBy,
			CreatedAt:       t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
