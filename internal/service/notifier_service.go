package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	"motorserve/internal/repository"
)

// Notifier is the fire-and-forget notification sink used by the other
// services. Implementations never fail the caller's operation.
type Notifier interface {
	Notify(userID int, notificationType, title, message string)
	NotifyBooking(userID int, detail *entities.BookingResponse)
}

// NotifyOutcome records what a single dispatch attempt managed to do, so
// best-effort failures stay observable instead of silently suppressed.
type NotifyOutcome struct {
	RecordStored bool
	EmailQueued  bool
	SMSQueued    bool
}

type NotifierService struct {
	Users         *repository.UserRepository
	Notifications *repository.NotificationRepository
}

func NewNotifierService(users *repository.UserRepository, notifications *repository.NotificationRepository) *NotifierService {
	return &NotifierService{Users: users, Notifications: notifications}
}

// Notify stores the in-app notification row and dispatches email and SMS
// asynchronously. Every failure is logged and none propagates.
func (s *NotifierService) Notify(userID int, notificationType, title, message string) {
	outcome := s.dispatch(userID, notificationType, title, message)
	if !outcome.RecordStored {
		log.Printf("ALERT: notification record for user %d was not stored (type=%s, title=%q)",
			userID, notificationType, title)
	}
}

func (s *NotifierService) dispatch(userID int, notificationType, title, message string) NotifyOutcome {
	var outcome NotifyOutcome

	user, err := s.Users.GetByID(userID)
	if err != nil {
		log.Printf("ALERT: could not resolve user %d for notification: %v", userID, err)
		return outcome
	}

	record := &db.Notification{
		UserID:  user.ID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if err := s.Notifications.Create(record); err != nil {
		log.Printf("ALERT: failed to store notification for user %d: %v", user.ID, err)
	} else {
		outcome.RecordStored = true
	}

	plainBody := fmt.Sprintf(
		"Hello %s,\n\n%s\n\nMotorServe, %d. All rights reserved.",
		user.Username, message, time.Now().UTC().Year(),
	)

	if user.Email != "" {
		outcome.EmailQueued = true
		go func(toEmail, toName, subject, body string) {
			if err := SendEmailWithSendGrid(toEmail, toName, subject, body, ""); err != nil {
				log.Printf("ALERT (async): email dispatch failed for user %s: %v", toName, err)
			}
		}(user.Email, user.Username, title, plainBody)
	}

	if user.Phone != "" {
		outcome.SMSQueued = true
		go func(toPhone, body string) {
			if err := SendSMS(toPhone, body); err != nil {
				log.Printf("ALERT (async): SMS dispatch failed for user %d: %v", userID, err)
			}
		}(user.Phone, fmt.Sprintf("MotorServe: %s", message))
	}

	return outcome
}

// NotifyBooking sends the richer status-change message for a booking: the
// in-app record, a templated HTML email and an SMS, all best-effort.
func (s *NotifierService) NotifyBooking(userID int, detail *entities.BookingResponse) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		log.Printf("ALERT: could not resolve user %d for booking notification: %v", userID, err)
		return
	}

	emailData := entities.BookingEmailData{
		UserName:      user.Username,
		BookingID:     detail.ID,
		ServiceName:   detail.ServiceName,
		CenterName:    detail.ServiceCenterName,
		VehicleLabel:  fmt.Sprintf("%s (%s)", detail.VehicleLabel, detail.RegistrationNumber),
		Status:        detail.Status,
		DateFormatted: detail.BookingDate.Format("Mon, 02 Jan 2006 15:04"),
		CurrentYear:   time.Now().UTC().Year(),
	}

	title := "Booking Status Updated"
	message := fmt.Sprintf("Your booking #%d at %s is now %s.", detail.ID, detail.ServiceCenterName, detail.Status)
	record := &db.Notification{
		UserID:  user.ID,
		Type:    "status_update",
		Title:   title,
		Message: message,
	}
	if err := s.Notifications.Create(record); err != nil {
		log.Printf("ALERT: failed to store notification for user %d: %v", user.ID, err)
	}

	subject := fmt.Sprintf("Your MotorServe booking #%d is %s", detail.ID, detail.Status)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nYour booking at %s is %s.\n\n"+
			"Booking Details:\n"+
			"Booking: #%d\n"+
			"Service: %s\n"+
			"Vehicle: %s\n"+
			"Date: %s\n\n"+
			"Thank you for choosing MotorServe.\n\n"+
			"MotorServe, %d. All rights reserved.",
		emailData.UserName, emailData.CenterName, emailData.Status,
		emailData.BookingID, emailData.ServiceName, emailData.VehicleLabel,
		emailData.DateFormatted, emailData.CurrentYear,
	)

	var htmlBody string
	tmplPath := filepath.Join("internal", "templates", "booking_email.html")
	if tmpl, err := template.ParseFiles(tmplPath); err != nil {
		log.Printf("ALERT: could not parse booking email template (%s): %v", tmplPath, err)
	} else {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, emailData); err != nil {
			log.Printf("ALERT: could not render booking email for booking %d: %v", detail.ID, err)
		} else {
			htmlBody = buf.String()
		}
	}

	if user.Email != "" {
		go func(toEmail, toName string) {
			if err := SendEmailWithSendGrid(toEmail, toName, subject, plainBody, htmlBody); err != nil {
				log.Printf("ALERT (async): booking email failed for booking %d: %v", detail.ID, err)
			}
		}(user.Email, user.Username)
	}

	if user.Phone != "" {
		go func(toPhone, body string) {
			if err := SendSMS(toPhone, body); err != nil {
				log.Printf("ALERT (async): booking SMS failed for booking %d: %v", detail.ID, err)
			}
		}(user.Phone, fmt.Sprintf("MotorServe: booking #%d is now %s.", detail.ID, detail.Status))
	}
}
