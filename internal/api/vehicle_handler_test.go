package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
	"motorserve/internal/service"
)

type fakeVehicleStore struct {
	nextID   int
	vehicles map[int]*db.Vehicle
}

func (f *fakeVehicleStore) Create(v *db.Vehicle) error {
	for _, existing := range f.vehicles {
		if existing.RegistrationNumber == v.RegistrationNumber {
			return apperrors.ErrConflict("a vehicle with that registration number already exists")
		}
	}
	v.ID = f.nextID
	f.nextID++
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleStore) GetByID(id int) (*db.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Vehicle not found")
	}
	return v, nil
}

func (f *fakeVehicleStore) ListByOwner(ownerID int) ([]db.Vehicle, error) {
	var out []db.Vehicle
	for _, v := range f.vehicles {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVehicleStore) Update(v *db.Vehicle) error {
	existing, ok := f.vehicles[v.ID]
	if !ok || existing.OwnerID != v.OwnerID {
		return apperrors.ErrNotFound("Vehicle not found")
	}
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleStore) Delete(id, ownerID int) error {
	existing, ok := f.vehicles[id]
	if !ok || existing.OwnerID != ownerID {
		return apperrors.ErrNotFound("Vehicle not found")
	}
	delete(f.vehicles, id)
	return nil
}

func newVehicleRouter() (*mux.Router, *fakeVehicleStore) {
	store := &fakeVehicleStore{nextID: 1, vehicles: map[int]*db.Vehicle{}}
	handler := NewVehicleHandler(service.NewVehicleService(store))

	r := mux.NewRouter()
	r.HandleFunc("/api/vehicles", handler.Create).Methods("POST")
	r.HandleFunc("/api/vehicles", handler.List).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", handler.Get).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", handler.Delete).Methods("DELETE")
	return r, store
}

func asCustomer(r *http.Request, userID int) *http.Request {
	actor := auth.Actor{User: &db.User{ID: userID, Role: db.RoleCustomer}}
	return r.WithContext(auth.WithActor(r.Context(), actor))
}

func TestVehicleCreateAndGet(t *testing.T) {
	router, store := newVehicleRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_type":        "car",
		"brand":               "Honda",
		"model":               "City",
		"year":                2021,
		"registration_number": "KA01AB1234",
		"color":               "white",
		"mileage":             32000,
	})
	req := asCustomer(httptest.NewRequest("POST", "/api/vehicles", bytes.NewReader(body)), 10)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.vehicles, 1)

	req = asCustomer(httptest.NewRequest("GET", "/api/vehicles/1", nil), 10)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got db.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "KA01AB1234", got.RegistrationNumber)
}

func TestVehicleDuplicateRegistrationConflicts(t *testing.T) {
	router, _ := newVehicleRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"brand": "Honda", "model": "City", "year": 2021,
		"registration_number": "KA01AB1234",
	})
	for i, wantCode := range []int{http.StatusCreated, http.StatusConflict} {
		req := asCustomer(httptest.NewRequest("POST", "/api/vehicles", bytes.NewReader(body)), 10)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, wantCode, rec.Code, "request %d", i)
	}
}

func TestVehicleOwnershipEnforced(t *testing.T) {
	router, store := newVehicleRouter()
	store.vehicles[1] = &db.Vehicle{ID: 1, OwnerID: 10, Brand: "Honda", Model: "City", RegistrationNumber: "KA01AB1234"}
	store.nextID = 2

	req := asCustomer(httptest.NewRequest("GET", "/api/vehicles/1", nil), 11)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = asCustomer(httptest.NewRequest("DELETE", "/api/vehicles/1", nil), 11)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, "delete is owner-scoped, absence is not revealed")
	assert.Len(t, store.vehicles, 1)
}

func TestVehicleValidation(t *testing.T) {
	router, _ := newVehicleRouter()

	body, _ := json.Marshal(map[string]interface{}{"brand": "Honda"})
	req := asCustomer(httptest.NewRequest("POST", "/api/vehicles", bytes.NewReader(body)), 10)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}
