// File: internal/notification/model.go
package notification

import (
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	TypeAssignment   NotificationType = "assignment"
	TypeStatusUpdate NotificationType = "status_update"
	TypeMessage      NotificationType = "message"
	TypeReminder     NotificationType = "reminder"
	TypeSystem       NotificationType = "system"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	maxTitleLen   = 100
	maxMessageLen = 500
)

// Notification represents a user notification. Rows past ExpiresAt are
// reaped by the expiry job.
type Notification struct {
	common.BaseModel
	RecipientID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_recipient_read"`
	Type             NotificationType `gorm:"type:varchar(30);not null;index"`
	Title            string           `gorm:"type:varchar(100);not null"`
	Message          string           `gorm:"type:varchar(500);not null"`
	RelatedRequestID *uuid.UUID       `gorm:"type:uuid"`
	RelatedUserID    *uuid.UUID       `gorm:"type:uuid"`
	Read             bool             `gorm:"not null;default:false;index:idx_notification_recipient_read"`
	ReadAt           *time.Time
	Priority         string    `gorm:"type:varchar(10);not null;default:'medium'"`
	ExpiresAt        time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// CreateParams carries everything needed to create a notification.
type CreateParams struct {
	RecipientID      uuid.UUID
	Type             NotificationType
	Title            string
	Message          string
	RelatedRequestID *uuid.UUID
	RelatedUserID    *uuid.UUID
	Priority         string
}

// ListQuery holds the supported filters for a recipient's notifications.
type ListQuery struct {
	Read     *bool
	Type     NotificationType
	Page     int
	PageSize int
}

// RelatedRequest is the denormalized trip request summary attached to
// notification responses.
type RelatedRequest struct {
	ID        uuid.UUID `json:"id"`
	TourType  string    `json:"tourType"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
}

// RelatedUser is the denormalized account summary attached to notification
// responses.
type RelatedUser struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profileImage,omitempty"`
}

// NotificationResponse is the API view of a notification.
type NotificationResponse struct {
	ID             uuid.UUID        `json:"id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	RelatedRequest *RelatedRequest  `json:"relatedRequest,omitempty"`
	RelatedUser    *RelatedUser     `json:"relatedUser,omitempty"`
	Read           bool             `json:"read"`
	ReadAt         *time.Time       `json:"readAt,omitempty"`
	Priority       string           `json:"priority"`
	CreatedAt      time.Time        `json:"createdAt"`
	ExpiresAt      time.Time        `json:"expiresAt"`
}

// TypeStat is one row in the per-type notification statistics.
type TypeStat struct {
	Type   NotificationType `json:"type"`
	Count  int64            `json:"count"`
	Unread int64            `json:"unread"`
}

// Stats summarizes a recipient's notifications.
type Stats struct {
	Total       int64      `json:"total"`
	TotalUnread int64      `json:"totalUnread"`
	ByType      []TypeStat `json:"byType"`
}
