package domain

import (
	"strings"
	"time"
)

// NotificationType classifies inbox notifications.
type NotificationType string

const (
	NotificationSiteChange      NotificationType = "SITE_CHANGE"
	NotificationUserChange      NotificationType = "USER_CHANGE"
	NotificationMachineChange   NotificationType = "MACHINE_CHANGE"
	NotificationMaintenanceDone NotificationType = "MAINTENANCE_COMPLETED"
	NotificationMaintenanceDue  NotificationType = "MAINTENANCE_DUE"
	NotificationReportAvailable NotificationType = "REPORT_AVAILABLE"
)

// Notification is an immutable inbox record created only as a side effect
// of another aggregate's mutation, never directly by a user-facing form.
// The only mutation after creation is the read flag.
type Notification struct {
	ID          int64            `json:"id"`
	RecipientID int64            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	CreatedAt   time.Time        `json:"created_at"`
	Read        bool             `json:"read"`
}

// EntityID implements Entity.
func (n *Notification) EntityID() int64 { return n.ID }

// SetEntityID implements Entity.
func (n *Notification) SetEntityID(id int64) { n.ID = id }

// NewNotification creates an unread notification stamped with now.
// Returns false when a required field is missing; notifications carry no
// builder since they are never assembled from user input.
func NewNotification(recipientID int64, typ NotificationType, title, message string, now time.Time) (*Notification, bool) {
	if recipientID == 0 || strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, false
	}
	return &Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		CreatedAt:   now,
		Read:        false,
	}, true
}
