package api

import (
	"encoding/json"
	"net/http"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	"motorserve/internal/service"
)

type AuthHandler struct {
	Service service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{Service: svc}
}

func userResponse(u *db.User) entities.UserResponse {
	return entities.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Phone:    u.Phone,
		Address:  u.Address,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.Service.Register(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse(user))
}

// Me returns the resolved actor: the user plus any role profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := requestActor(r)
	resp := map[string]interface{}{"user": userResponse(actor.User)}
	if actor.Center != nil {
		resp["service_center"] = centerResponse(actor.Center)
	}
	if actor.Mechanic != nil {
		resp["mechanic"] = actor.Mechanic
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	token, user, err := h.Service.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.LoginResponse{
		Token: token,
		User:  userResponse(user),
	})
}
