package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil && notification.ID == uuid.Nil {
		notification.ID = uuid.New() // Simulate DB generating ID
	}
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, query ListQuery) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, recipientID, query)
	var notifications []Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return notifications, pagination, args.Error(2)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	args := m.Called(ctx, notificationID, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	args := m.Called(ctx, notificationID, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAllByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) StatsByRecipient(ctx context.Context, recipientID uuid.UUID) (*Stats, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func (m *MockNotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockRequestInfoProvider is a mock type for notification.RequestInfoProvider
type MockRequestInfoProvider struct {
	mock.Mock
}

func (m *MockRequestInfoProvider) RequestInfo(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]RelatedRequest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]RelatedRequest), args.Error(1)
}

// MockUserDirectory is a mock type for notification.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// Test Suite Setup
type NotificationServiceTestSuite struct {
	service         Service
	mockNotifRepo   *MockNotificationRepository
	mockRequestInfo *MockRequestInfoProvider
	mockUsers       *MockUserDirectory
	cfg             *config.Config
}

func setupNotificationServiceTestSuite(t *testing.T) *NotificationServiceTestSuite {
	ts := &NotificationServiceTestSuite{}
	ts.mockNotifRepo = new(MockNotificationRepository)
	ts.mockRequestInfo = new(MockRequestInfoProvider)
	ts.mockUsers = new(MockUserDirectory)
	ts.cfg = &config.Config{NotificationLifespanDays: 30}

	ts.service = NewService(
		ts.mockNotifRepo,
		ts.mockRequestInfo,
		ts.mockUsers,
		ts.cfg,
		zap.NewNop(),
	)
	return ts
}

// --- Test Cases ---

func TestNotificationService_CreateNotification_Success(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	requestID := uuid.New()

	ts.mockNotifRepo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		notifArg := args.Get(1).(*Notification)
		assert.Equal(t, recipientID, notifArg.RecipientID)
		assert.Equal(t, TypeAssignment, notifArg.Type)
		assert.Equal(t, "Guide assigned", notifArg.Title)
		assert.Equal(t, &requestID, notifArg.RelatedRequestID)
		assert.Equal(t, PriorityHigh, notifArg.Priority)
		assert.False(t, notifArg.Read)
	}).Return(nil)

	created, err := ts.service.CreateNotification(ctx, CreateParams{
		RecipientID:      recipientID,
		Type:             TypeAssignment,
		Title:            "Guide assigned",
		Message:          "A guide has been assigned to your trip.",
		RelatedRequestID: &requestID,
		Priority:         PriorityHigh,
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, created.ID, "Expected notification ID to be set")
	// Expiry is the configured lifespan from now.
	expectedExpiry := time.Now().AddDate(0, 0, 30)
	assert.WithinDuration(t, expectedExpiry, created.ExpiresAt, time.Minute)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_CreateNotification_DefaultsAndTruncation(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()

	ts.mockNotifRepo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil)

	created, err := ts.service.CreateNotification(ctx, CreateParams{
		RecipientID: uuid.New(),
		Type:        TypeSystem,
		Title:       strings.Repeat("t", 150),
		Message:     strings.Repeat("m", 600),
	})

	assert.NoError(t, err)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.Len(t, created.Title, 100)
	assert.Len(t, created.Message, 500)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_CreateNotification_Error(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	expectedError := common.ErrInternalServer.WithDetails("Could not create notification.")

	ts.mockNotifRepo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(errors.New("repo error"))

	created, err := ts.service.CreateNotification(ctx, CreateParams{
		RecipientID: uuid.New(),
		Type:        TypeStatusUpdate,
		Title:       "test",
		Message:     "test",
	})

	assert.Error(t, err)
	assert.Nil(t, created)
	apiErr, ok := err.(*common.APIError)
	assert.True(t, ok)
	assert.Equal(t, expectedError.Code, apiErr.Code)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_GetNotificationsForUser_Success(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	requestID := uuid.New()
	touristID := uuid.New()
	query := ListQuery{Page: 1, PageSize: 5}

	mockNotifications := []Notification{
		{RecipientID: recipientID, Type: TypeAssignment, Message: "Notif 1", RelatedRequestID: &requestID, RelatedUserID: &touristID},
		{RecipientID: recipientID, Type: TypeSystem, Message: "Notif 2"},
	}
	mockNotifications[0].ID = uuid.New()
	mockNotifications[1].ID = uuid.New()
	mockPagination := common.NewPagination(2, 1, 5)

	ts.mockNotifRepo.On("ListByRecipient", ctx, recipientID, query).Return(mockNotifications, mockPagination, nil)
	ts.mockNotifRepo.On("CountUnread", ctx, recipientID).Return(int64(1), nil)
	ts.mockRequestInfo.On("RequestInfo", ctx, []uuid.UUID{requestID}).Return(map[uuid.UUID]RelatedRequest{
		requestID: {ID: requestID, TourType: "adventure", Status: "assigned", StartDate: time.Now()},
	}, nil)
	ts.mockUsers.On("FindByID", ctx, touristID).Return(&user.User{Name: "Alemu Kebede"}, nil)

	result, err := ts.service.GetNotificationsForUser(ctx, recipientID, query)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, result.Notifications, 2)
	assert.Equal(t, int64(1), result.UnreadCount)
	assert.Equal(t, mockPagination, result.Pagination)

	assert.NotNil(t, result.Notifications[0].RelatedRequest)
	assert.Equal(t, "adventure", result.Notifications[0].RelatedRequest.TourType)
	assert.NotNil(t, result.Notifications[0].RelatedUser)
	assert.Equal(t, "Alemu Kebede", result.Notifications[0].RelatedUser.Name)
	assert.Nil(t, result.Notifications[1].RelatedRequest)
	assert.Nil(t, result.Notifications[1].RelatedUser)
	ts.mockNotifRepo.AssertExpectations(t)
	ts.mockRequestInfo.AssertExpectations(t)
	ts.mockUsers.AssertExpectations(t)
}

func TestNotificationService_GetNotificationsForUser_EnrichmentFailureDegrades(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	requestID := uuid.New()
	query := ListQuery{Page: 1, PageSize: 10}

	mockNotifications := []Notification{
		{RecipientID: recipientID, Type: TypeStatusUpdate, Message: "Notif 1", RelatedRequestID: &requestID},
	}
	mockPagination := common.NewPagination(1, 1, 10)

	ts.mockNotifRepo.On("ListByRecipient", ctx, recipientID, query).Return(mockNotifications, mockPagination, nil)
	ts.mockNotifRepo.On("CountUnread", ctx, recipientID).Return(int64(0), nil)
	ts.mockRequestInfo.On("RequestInfo", ctx, []uuid.UUID{requestID}).Return(nil, errors.New("db down"))

	result, err := ts.service.GetNotificationsForUser(ctx, recipientID, query)

	assert.NoError(t, err, "Enrichment failure should not fail the listing")
	assert.Len(t, result.Notifications, 1)
	assert.Nil(t, result.Notifications[0].RelatedRequest)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_GetNotificationsForUser_Error(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	query := ListQuery{Page: 1, PageSize: 5}
	expectedError := common.ErrInternalServer.WithDetails("Could not retrieve notifications.")

	ts.mockNotifRepo.On("ListByRecipient", ctx, recipientID, query).Return(nil, nil, errors.New("repo error"))

	result, err := ts.service.GetNotificationsForUser(ctx, recipientID, query)

	assert.Error(t, err)
	assert.Nil(t, result)
	apiErr, ok := err.(*common.APIError)
	assert.True(t, ok)
	assert.Equal(t, expectedError.Code, apiErr.Code)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_MarkNotificationAsRead_Success(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	notificationID := uuid.New()
	now := time.Now()

	updated := &Notification{RecipientID: recipientID, Read: true, ReadAt: &now}
	updated.ID = notificationID
	ts.mockNotifRepo.On("MarkAsRead", ctx, notificationID, recipientID).Return(updated, nil)

	response, err := ts.service.MarkNotificationAsRead(ctx, notificationID, recipientID)

	assert.NoError(t, err)
	assert.NotNil(t, response)
	assert.True(t, response.Read)
	assert.NotNil(t, response.ReadAt)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_MarkNotificationAsRead_NotFound(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	notificationID := uuid.New()
	expectedError := common.ErrNotFound.WithDetails("Notification not found or not owned by user.")

	ts.mockNotifRepo.On("MarkAsRead", ctx, notificationID, recipientID).Return(nil, expectedError)

	response, err := ts.service.MarkNotificationAsRead(ctx, notificationID, recipientID)

	assert.Error(t, err)
	assert.Nil(t, response)
	apiErr, ok := err.(*common.APIError)
	assert.True(t, ok, "Error should be an APIError")
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code, "Error code should be NOT_FOUND")
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_MarkAllUserNotificationsAsRead_Success(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	expectedCount := int64(5)

	ts.mockNotifRepo.On("MarkAllAsRead", ctx, recipientID).Return(expectedCount, nil)

	count, err := ts.service.MarkAllUserNotificationsAsRead(ctx, recipientID)

	assert.NoError(t, err)
	assert.Equal(t, expectedCount, count)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_MarkAllUserNotificationsAsRead_Error(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()
	expectedError := common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")

	ts.mockNotifRepo.On("MarkAllAsRead", ctx, recipientID).Return(int64(0), errors.New("repo error"))

	count, err := ts.service.MarkAllUserNotificationsAsRead(ctx, recipientID)

	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
	apiErr, ok := err.(*common.APIError)
	assert.True(t, ok)
	assert.Equal(t, expectedError.Code, apiErr.Code)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_GetStatsForUser_Success(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()
	recipientID := uuid.New()

	mockStats := &Stats{
		Total:       7,
		TotalUnread: 3,
		ByType: []TypeStat{
			{Type: TypeAssignment, Count: 2, Unread: 1},
			{Type: TypeStatusUpdate, Count: 5, Unread: 2},
		},
	}
	ts.mockNotifRepo.On("StatsByRecipient", ctx, recipientID).Return(mockStats, nil)

	stats, err := ts.service.GetStatsForUser(ctx, recipientID)

	assert.NoError(t, err)
	assert.Equal(t, mockStats, stats)
	ts.mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_DeleteExpiredNotifications(t *testing.T) {
	ts := setupNotificationServiceTestSuite(t)
	ctx := context.Background()

	ts.mockNotifRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(12), nil)

	count, err := ts.service.DeleteExpiredNotifications(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), count)
	ts.mockNotifRepo.AssertExpectations(t)
}
