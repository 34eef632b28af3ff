package service

import (
	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
)

type notificationStore interface {
	ListByUser(userID int) ([]db.Notification, error)
	MarkRead(id, userID int) error
}

// NotificationService is the read side of the in-app notification feed.
type NotificationService struct {
	Notifications notificationStore
}

func NewNotificationService(notifications notificationStore) *NotificationService {
	return &NotificationService{Notifications: notifications}
}

func (s *NotificationService) List(actor auth.Actor) ([]entities.NotificationResponse, error) {
	rows, err := s.Notifications.ListByUser(actor.User.ID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.NotificationResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, entities.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

func (s *NotificationService) MarkRead(actor auth.Actor, id int) error {
	return s.Notifications.MarkRead(id, actor.User.ID)
}
