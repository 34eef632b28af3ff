package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

func customerActor(id int) auth.Actor {
	return auth.Actor{User: &db.User{ID: id, Role: db.RoleCustomer}}
}

func centerActor(userID, centerID int) auth.Actor {
	return auth.Actor{
		User:   &db.User{ID: userID, Role: db.RoleServiceCenter},
		Center: &db.ServiceCenter{ID: centerID, UserID: userID},
	}
}

func mechanicActor(userID, mechanicID, centerID int) auth.Actor {
	uid := userID
	return auth.Actor{
		User:     &db.User{ID: userID, Role: db.RoleMechanic},
		Mechanic: &db.Mechanic{ID: mechanicID, ServiceCenterID: centerID, UserID: &uid},
	}
}

func testBooking(status db.BookingStatus) *db.Booking {
	mechanicID := 7
	return &db.Booking{
		ID:              1,
		CustomerID:      10,
		ServiceCenterID: 20,
		MechanicID:      &mechanicID,
		Status:          status,
	}
}

func TestTransitionStateMachine(t *testing.T) {
	tests := []struct {
		from    db.BookingStatus
		to      db.BookingStatus
		allowed bool
	}{
		{db.StatusPending, db.StatusAccepted, true},
		{db.StatusPending, db.StatusRejected, true},
		{db.StatusPending, db.StatusCancelled, true},
		{db.StatusPending, db.StatusInProgress, false},
		{db.StatusPending, db.StatusCompleted, false},
		{db.StatusAccepted, db.StatusInProgress, true},
		{db.StatusAccepted, db.StatusCancelled, true},
		{db.StatusAccepted, db.StatusCompleted, false},
		{db.StatusAccepted, db.StatusRejected, false},
		{db.StatusInProgress, db.StatusCompleted, true},
		{db.StatusInProgress, db.StatusCancelled, false},
		{db.StatusCompleted, db.StatusReadyForDelivery, true},
		{db.StatusCompleted, db.StatusInProgress, false},
		{db.StatusRejected, db.StatusAccepted, false},
		{db.StatusCancelled, db.StatusPending, false},
		{db.StatusReadyForDelivery, db.StatusCompleted, false},
	}
	for _, tt := range tests {
		got := transitionAllowed(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestAllowTransitionRoleGates(t *testing.T) {
	owningCenter := centerActor(2, 20)
	otherCenter := centerActor(3, 99)
	assignedMechanic := mechanicActor(4, 7, 20)
	otherMechanic := mechanicActor(5, 8, 20)
	owner := customerActor(10)
	stranger := customerActor(11)

	tests := []struct {
		name    string
		actor   auth.Actor
		from    db.BookingStatus
		to      db.BookingStatus
		wantErr int // 0 means allowed
	}{
		{"center accepts", owningCenter, db.StatusPending, db.StatusAccepted, 0},
		{"center rejects", owningCenter, db.StatusPending, db.StatusRejected, 0},
		{"other center cannot accept", otherCenter, db.StatusPending, db.StatusAccepted, 403},
		{"customer cannot accept own booking", owner, db.StatusPending, db.StatusAccepted, 403},
		{"center starts work", owningCenter, db.StatusAccepted, db.StatusInProgress, 0},
		{"assigned mechanic starts work", assignedMechanic, db.StatusAccepted, db.StatusInProgress, 0},
		{"unassigned mechanic cannot start", otherMechanic, db.StatusAccepted, db.StatusInProgress, 403},
		{"assigned mechanic completes", assignedMechanic, db.StatusInProgress, db.StatusCompleted, 0},
		{"center marks ready", owningCenter, db.StatusCompleted, db.StatusReadyForDelivery, 0},
		{"mechanic cannot mark ready", assignedMechanic, db.StatusCompleted, db.StatusReadyForDelivery, 403},
		{"owner cancels pending", owner, db.StatusPending, db.StatusCancelled, 0},
		{"owner cancels accepted", owner, db.StatusAccepted, db.StatusCancelled, 0},
		{"stranger cannot cancel", stranger, db.StatusPending, db.StatusCancelled, 403},
		{"center cannot cancel", owningCenter, db.StatusPending, db.StatusCancelled, 403},
		{"owner cannot cancel in progress", owner, db.StatusInProgress, db.StatusCancelled, 409},
		{"no transition out of cancelled", owningCenter, db.StatusCancelled, db.StatusAccepted, 409},
		{"invalid status rejected", owningCenter, db.StatusPending, "teleported", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AllowTransition(tt.actor, testBooking(tt.from), tt.to)
			if tt.wantErr == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantErr, apperrors.StatusCode(err))
		})
	}
}

func TestCanView(t *testing.T) {
	booking := testBooking(db.StatusAccepted)

	assert.True(t, CanView(customerActor(10), booking))
	assert.False(t, CanView(customerActor(11), booking))
	assert.True(t, CanView(centerActor(2, 20), booking))
	assert.False(t, CanView(centerActor(3, 99), booking))
	assert.True(t, CanView(mechanicActor(4, 7, 20), booking))
	assert.False(t, CanView(mechanicActor(5, 8, 20), booking))
	assert.True(t, CanView(auth.Actor{User: &db.User{ID: 1, Role: db.RoleAdmin}}, booking))

	unassigned := testBooking(db.StatusPending)
	unassigned.MechanicID = nil
	assert.False(t, CanView(mechanicActor(4, 7, 20), unassigned))
}
