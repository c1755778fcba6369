package notification

import (
	"context"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestInfoProvider resolves trip request summaries for notification
// enrichment. Implemented by the request repository.
type RequestInfoProvider interface {
	RequestInfo(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]RelatedRequest, error)
}

// UserDirectory resolves user accounts for notification enrichment.
// Satisfied by user.Repository.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// ListResult bundles a page of enriched notifications with the recipient's
// unread count.
type ListResult struct {
	Notifications []NotificationResponse
	Pagination    *common.Pagination
	UnreadCount   int64
}

type Service interface {
	CreateNotification(ctx context.Context, params CreateParams) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, recipientID uuid.UUID, query ListQuery) (*ListResult, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*NotificationResponse, error)
	MarkAllUserNotificationsAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error
	DeleteAllUserNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error)
	GetStatsForUser(ctx context.Context, recipientID uuid.UUID) (*Stats, error)
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

type ServiceImplementation struct {
	repo        Repository
	requestInfo RequestInfoProvider
	users       UserDirectory
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, requestInfo RequestInfoProvider, users UserDirectory, cfg *config.Config, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:        repo,
		requestInfo: requestInfo,
		users:       users,
		cfg:         cfg,
		logger:      logger.Named("NotificationService"),
	}
}

// CreateNotification persists a notification for a recipient. Title and
// message are truncated to their column limits so callers never fail on
// oversized generated text.
func (s *ServiceImplementation) CreateNotification(ctx context.Context, params CreateParams) (*Notification, error) {
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	notification := &Notification{
		RecipientID:      params.RecipientID,
		Type:             params.Type,
		Title:            truncate(params.Title, maxTitleLen),
		Message:          truncate(params.Message, maxMessageLen),
		RelatedRequestID: params.RelatedRequestID,
		RelatedUserID:    params.RelatedUserID,
		Read:             false,
		Priority:         priority,
		ExpiresAt:        time.Now().AddDate(0, 0, s.cfg.NotificationLifespanDays),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification",
			zap.String("recipientID", params.RecipientID.String()),
			zap.String("type", string(params.Type)),
			zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}

	s.logger.Info("Notification created",
		zap.String("notificationID", notification.ID.String()),
		zap.String("recipientID", params.RecipientID.String()),
		zap.String("type", string(params.Type)))
	return notification, nil
}

// GetNotificationsForUser retrieves a page of the recipient's notifications
// together with the unread count. Each row is enriched with a summary of the
// related trip request and related user when present.
func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, recipientID uuid.UUID, query ListQuery) (*ListResult, error) {
	notifications, pagination, err := s.repo.ListByRecipient(ctx, recipientID, query)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}

	responses := s.enrich(ctx, notifications)
	return &ListResult{Notifications: responses, Pagination: pagination, UnreadCount: unread}, nil
}

// MarkNotificationAsRead marks a single notification as read.
func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*NotificationResponse, error) {
	notification, err := s.repo.MarkAsRead(ctx, notificationID, recipientID)
	if err != nil {
		return nil, err
	}
	response := toResponse(notification)
	return &response, nil
}

// MarkAllUserNotificationsAsRead marks every unread notification for the
// recipient as read and returns the count of rows updated.
func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}

// DeleteNotification removes a single notification owned by the recipient.
func (s *ServiceImplementation) DeleteNotification(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error {
	return s.repo.Delete(ctx, notificationID, recipientID)
}

// DeleteAllUserNotifications removes every notification for the recipient.
func (s *ServiceImplementation) DeleteAllUserNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.DeleteAllByRecipient(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to delete notifications", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not delete notifications.")
	}
	return count, nil
}

// GetStatsForUser returns per-type counts for the recipient's notifications.
func (s *ServiceImplementation) GetStatsForUser(ctx context.Context, recipientID uuid.UUID) (*Stats, error) {
	stats, err := s.repo.StatsByRecipient(ctx, recipientID)
	if err != nil {
		s.logger.Error("Failed to aggregate notification stats", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve notification statistics.")
	}
	return stats, nil
}

// DeleteExpiredNotifications removes all notifications past their expiry
// time. Invoked by the scheduled expiry job.
func (s *ServiceImplementation) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to delete expired notifications", zap.Error(err))
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Expired notifications deleted", zap.Int64("count", count))
	}
	return count, nil
}

// enrich attaches related request and user summaries to notification rows.
// Enrichment failures degrade to bare notifications rather than failing the
// whole listing.
func (s *ServiceImplementation) enrich(ctx context.Context, notifications []Notification) []NotificationResponse {
	requestIDs := make([]uuid.UUID, 0, len(notifications))
	seen := make(map[uuid.UUID]bool)
	for _, n := range notifications {
		if n.RelatedRequestID != nil && !seen[*n.RelatedRequestID] {
			seen[*n.RelatedRequestID] = true
			requestIDs = append(requestIDs, *n.RelatedRequestID)
		}
	}

	requestInfo := map[uuid.UUID]RelatedRequest{}
	if len(requestIDs) > 0 && s.requestInfo != nil {
		info, err := s.requestInfo.RequestInfo(ctx, requestIDs)
		if err != nil {
			s.logger.Warn("Failed to resolve related requests for notifications", zap.Error(err))
		} else {
			requestInfo = info
		}
	}

	userCache := make(map[uuid.UUID]*RelatedUser)
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response := toResponse(&n)
		if n.RelatedRequestID != nil {
			if info, ok := requestInfo[*n.RelatedRequestID]; ok {
				related := info
				response.RelatedRequest = &related
			}
		}
		if n.RelatedUserID != nil {
			response.RelatedUser = s.lookupUser(ctx, *n.RelatedUserID, userCache)
		}
		responses = append(responses, response)
	}
	return responses
}

func (s *ServiceImplementation) lookupUser(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*RelatedUser) *RelatedUser {
	if related, ok := cache[id]; ok {
		return related
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to resolve related user for notification", zap.String("userID", id.String()), zap.Error(err))
		cache[id] = nil
		return nil
	}
	related := &RelatedUser{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
	cache[id] = related
	return related
}

func toResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
