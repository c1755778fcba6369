package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, query ListQuery) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) // recipientID for ownership check
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) // Return count of marked notifications
	Delete(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error
	DeleteAllByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, error)
	StatsByRecipient(ctx context.Context, recipientID uuid.UUID) (*Stats, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient retrieves a paginated list of notifications for a recipient,
// ordered by creation date, optionally filtered by read state and type.
func (r *GORMRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, query ListQuery) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	dbQuery := r.db.WithContext(ctx).Model(&Notification{}).Where("recipient_id = ?", recipientID)
	if query.Read != nil {
		dbQuery = dbQuery.Where("read = ?", *query.Read)
	}
	if query.Type != "" {
		dbQuery = dbQuery.Where("type = ?", query.Type)
	}

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", recipientID, err)
	}

	pagination := common.NewPagination(total, query.Page, query.PageSize)

	offset := (query.Page - 1) * query.PageSize
	if query.Page <= 0 {
		offset = 0
	}

	err := dbQuery.Order("created_at DESC").
		Limit(query.PageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", recipientID, err)
	}
	return notifications, pagination, nil
}

// FindByID retrieves a specific notification by its ID, ensuring it belongs to the recipient.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", notificationID, recipientID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %s for user %s: %w", notificationID, recipientID, err)
	}
	return &notification, nil
}

// CountUnread returns the number of unread notifications for a recipient.
func (r *GORMRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", recipientID, err)
	}
	return count, nil
}

// MarkAsRead marks a specific notification as read for a recipient and
// returns the updated row. Marking an already-read notification is a no-op.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	notification, err := r.FindByID(ctx, notificationID, recipientID)
	if err != nil {
		return nil, err
	}
	if notification.Read {
		return notification, nil
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Updates(map[string]interface{}{"read": true, "read_at": now})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, recipientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
	}

	notification.Read = true
	notification.ReadAt = &now
	return notification, nil
}

// MarkAllAsRead marks all unread notifications for a recipient as read.
// It returns the count of notifications that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now()})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", recipientID, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification, ensuring it belongs to the recipient.
func (r *GORMRepository) Delete(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification %s for user %s: %w", notificationID, recipientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
	}
	return nil
}

// DeleteAllByRecipient removes all notifications for a recipient and returns
// the count of deleted rows.
func (r *GORMRepository) DeleteAllByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications for user %s: %w", recipientID, result.Error)
	}
	return result.RowsAffected, nil
}

// StatsByRecipient aggregates notification counts per type for a recipient.
func (r *GORMRepository) StatsByRecipient(ctx context.Context, recipientID uuid.UUID) (*Stats, error) {
	type typeRow struct {
		Type   NotificationType
		Count  int64
		Unread int64
	}
	var rows []typeRow

	err := r.db.WithContext(ctx).Model(&Notification{}).
		Select("type, COUNT(*) AS count, SUM(CASE WHEN read THEN 0 ELSE 1 END) AS unread").
		Where("recipient_id = ?", recipientID).
		Group("type").
		Order("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate notification stats for user %s: %w", recipientID, err)
	}

	stats := &Stats{ByType: make([]TypeStat, 0, len(rows))}
	for _, row := range rows {
		stats.Total += row.Count
		stats.TotalUnread += row.Unread
		stats.ByType = append(stats.ByType, TypeStat{Type: row.Type, Count: row.Count, Unread: row.Unread})
	}
	return stats, nil
}

// DeleteExpired removes notifications whose expiry time has passed.
func (r *GORMRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
