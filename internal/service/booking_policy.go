package service

import (
	"fmt"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

// allowedTransitions is the booking state machine. Missing entries are
// rejected; terminal states have no entries at all.
var allowedTransitions = map[db.BookingStatus][]db.BookingStatus{
	db.StatusPending:    {db.StatusAccepted, db.StatusRejected, db.StatusCancelled},
	db.StatusAccepted:   {db.StatusInProgress, db.StatusCancelled},
	db.StatusInProgress: {db.StatusCompleted},
	db.StatusCompleted:  {db.StatusReadyForDelivery},
}

func transitionAllowed(from, to db.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowTransition checks both the state machine and the role gate for one
// transition. It is pure: no storage access, so it is tested independently
// of transport and database.
func AllowTransition(actor auth.Actor, booking *db.Booking, to db.BookingStatus) error {
	if !to.Valid() {
		return apperrors.ErrValidation(fmt.Sprintf("invalid status %q", to))
	}
	if !transitionAllowed(booking.Status, to) {
		return apperrors.ErrConflict(fmt.Sprintf("cannot move booking from %s to %s", booking.Status, to))
	}

	ownsAsCenter := actor.Center != nil && actor.Center.ID == booking.ServiceCenterID
	assignedMechanic := actor.Mechanic != nil && booking.MechanicID != nil &&
		*booking.MechanicID == actor.Mechanic.ID
	ownsAsCustomer := actor.IsCustomer() && actor.User.ID == booking.CustomerID

	switch to {
	case db.StatusAccepted, db.StatusRejected, db.StatusReadyForDelivery:
		if !ownsAsCenter {
			return apperrors.ErrForbidden("only the service center can perform this update")
		}
	case db.StatusInProgress, db.StatusCompleted:
		if !ownsAsCenter && !assignedMechanic {
			return apperrors.ErrForbidden("only the service center or the assigned mechanic can perform this update")
		}
	case db.StatusCancelled:
		if !ownsAsCustomer {
			return apperrors.ErrForbidden("only the booking owner can cancel")
		}
	default:
		return apperrors.ErrValidation(fmt.Sprintf("unsupported target status %q", to))
	}
	return nil
}

// CanView reports whether the actor may read the booking at all.
func CanView(actor auth.Actor, booking *db.Booking) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsCustomer():
		return actor.User.ID == booking.CustomerID
	case actor.IsCenter():
		return actor.Center != nil && actor.Center.ID == booking.ServiceCenterID
	case actor.IsMechanic():
		return actor.Mechanic != nil && booking.MechanicID != nil && *booking.MechanicID == actor.Mechanic.ID
	}
	return false
}
