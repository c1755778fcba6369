package guide

import (
	"context"
	"testing"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockGuideRepository is a mock type for guide.Repository
type MockGuideRepository struct {
	mock.Mock
}

func (m *MockGuideRepository) ListGuides(ctx context.Context, query GuideListQuery) ([]user.User, *common.Pagination, error) {
	args := m.Called(ctx, query)
	var guides []user.User
	if args.Get(0) != nil {
		guides = args.Get(0).([]user.User)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return guides, pagination, args.Error(2)
}

func (m *MockGuideRepository) FindGuideByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockGuideRepository) FindMatching(ctx context.Context, criteria MatchCriteria) ([]user.User, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockGuideRepository) SetAvailability(ctx context.Context, guideID uuid.UUID, available bool) error {
	args := m.Called(ctx, guideID, available)
	return args.Error(0)
}

func (m *MockGuideRepository) ReserveForAssignment(ctx context.Context, guideID uuid.UUID) (bool, error) {
	args := m.Called(ctx, guideID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuideRepository) ReleaseFromAssignment(ctx context.Context, guideID uuid.UUID) error {
	args := m.Called(ctx, guideID)
	return args.Error(0)
}

func (m *MockGuideRepository) CompleteTrip(ctx context.Context, guideID uuid.UUID) error {
	args := m.Called(ctx, guideID)
	return args.Error(0)
}

func (m *MockGuideRepository) UpdateRating(ctx context.Context, guideID uuid.UUID, rating float64, totalReviews int) error {
	args := m.Called(ctx, guideID, rating, totalReviews)
	return args.Error(0)
}

// MockTripStatsProvider is a mock type for guide.TripStatsProvider
type MockTripStatsProvider struct {
	mock.Mock
}

func (m *MockTripStatsProvider) StatusCountsForGuide(ctx context.Context, guideID uuid.UUID) (map[string]int64, error) {
	args := m.Called(ctx, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockTripStatsProvider) MonthlyStatsForGuide(ctx context.Context, guideID uuid.UUID, since time.Time) ([]MonthlyStat, error) {
	args := m.Called(ctx, guideID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MonthlyStat), args.Error(1)
}

func (m *MockTripStatsProvider) ReviewsForGuide(ctx context.Context, guideID uuid.UUID, limit int) ([]TripReview, error) {
	args := m.Called(ctx, guideID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TripReview), args.Error(1)
}

// MockRequestCriteriaProvider is a mock type for guide.RequestCriteriaProvider
type MockRequestCriteriaProvider struct {
	mock.Mock
}

func (m *MockRequestCriteriaProvider) MatchCriteriaForRequest(ctx context.Context, requestID uuid.UUID) (*MatchCriteria, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MatchCriteria), args.Error(1)
}

func setupGuideServiceTest(t *testing.T) (Service, *MockGuideRepository, *MockTripStatsProvider, *MockRequestCriteriaProvider) {
	t.Helper()
	mockRepo := new(MockGuideRepository)
	mockStats := new(MockTripStatsProvider)
	mockCriteria := new(MockRequestCriteriaProvider)
	service := NewService(mockRepo, mockStats, mockCriteria, zap.NewNop())
	return service, mockRepo, mockStats, mockCriteria
}

func verifiedGuide(name string) user.User {
	g := user.User{
		Name:               name,
		Email:              name + "@example.com",
		Role:               common.RoleGuide,
		IsActive:           true,
		Available:          true,
		VerificationStatus: user.VerificationVerified,
		Rating:             4.5,
		TotalReviews:       12,
	}
	g.ID = uuid.New()
	return g
}

func TestListGuides_ReturnsResponses(t *testing.T) {
	service, mockRepo, _, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guides := []user.User{verifiedGuide("tigist"), verifiedGuide("dawit")}
	pagination := common.NewPagination(2, 1, 10)
	query := GuideListQuery{Page: 1, PageSize: 10}

	mockRepo.On("ListGuides", ctx, query).Return(guides, pagination, nil)

	result, resultPagination, err := service.ListGuides(ctx, query)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, guides[0].ID, result[0].ID)
	assert.Equal(t, "tigist", result[0].Name)
	assert.Equal(t, pagination, resultPagination)
	mockRepo.AssertExpectations(t)
}

func TestGetGuideProfile_IncludesRecentReviews(t *testing.T) {
	service, mockRepo, mockStats, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guide := verifiedGuide("tigist")
	reviews := []TripReview{
		{RequestID: uuid.New(), TouristName: "Alemu Kebede", Rating: 5, TourType: "Historical Tour"},
	}

	mockRepo.On("FindGuideByID", ctx, guide.ID).Return(&guide, nil)
	mockStats.On("ReviewsForGuide", ctx, guide.ID, profileReviewLimit).Return(reviews, nil)

	profile, err := service.GetGuideProfile(ctx, guide.ID)

	assert.NoError(t, err)
	assert.Equal(t, guide.ID, profile.Guide.ID)
	assert.Len(t, profile.Reviews, 1)
	assert.Equal(t, "Alemu Kebede", profile.Reviews[0].TouristName)
	mockRepo.AssertExpectations(t)
	mockStats.AssertExpectations(t)
}

func TestGetGuideProfile_ReviewFailureDegradesGracefully(t *testing.T) {
	service, mockRepo, mockStats, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guide := verifiedGuide("tigist")

	mockRepo.On("FindGuideByID", ctx, guide.ID).Return(&guide, nil)
	mockStats.On("ReviewsForGuide", ctx, guide.ID, profileReviewLimit).
		Return(nil, assert.AnError)

	profile, err := service.GetGuideProfile(ctx, guide.ID)

	assert.NoError(t, err, "Profile should still load when reviews are unavailable")
	assert.Equal(t, guide.ID, profile.Guide.ID)
	assert.Empty(t, profile.Reviews)
}

func TestGetGuideProfile_NotFound(t *testing.T) {
	service, mockRepo, _, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	unknownID := uuid.New()
	mockRepo.On("FindGuideByID", ctx, unknownID).Return(nil, common.ErrNotFound)

	_, err := service.GetGuideProfile(ctx, unknownID)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
}

func TestSetAvailability_GuideTogglesOwn(t *testing.T) {
	service, mockRepo, _, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guide := verifiedGuide("tigist")
	guide.Available = false

	mockRepo.On("SetAvailability", ctx, guide.ID, false).Return(nil)
	mockRepo.On("FindGuideByID", ctx, guide.ID).Return(&guide, nil)

	response, err := service.SetAvailability(ctx, guide.ID, guide.ID, common.RoleGuide, false)

	assert.NoError(t, err)
	assert.False(t, response.Available)
	mockRepo.AssertExpectations(t)
}

func TestSetAvailability_AdminTogglesAnyGuide(t *testing.T) {
	service, mockRepo, _, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guide := verifiedGuide("tigist")
	adminID := uuid.New()

	mockRepo.On("SetAvailability", ctx, guide.ID, true).Return(nil)
	mockRepo.On("FindGuideByID", ctx, guide.ID).Return(&guide, nil)

	_, err := service.SetAvailability(ctx, guide.ID, adminID, common.RoleAdmin, true)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSetAvailability_OtherUserForbidden(t *testing.T) {
	service, mockRepo, _, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guideID := uuid.New()
	strangerID := uuid.New()

	_, err := service.SetAvailability(ctx, guideID, strangerID, common.RoleTourist, false)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrForbidden.Code, apiErr.Code)
	mockRepo.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStats_Success(t *testing.T) {
	service, mockRepo, mockStats, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	guide := verifiedGuide("tigist")
	counts := map[string]int64{"assigned": 1, "in-progress": 1, "completed": 7}
	monthly := []MonthlyStat{
		{Year: 2024, Month: 4, Trips: 3, Revenue: 1500},
		{Year: 2024, Month: 5, Trips: 4, Revenue: 2100},
	}

	mockRepo.On("FindGuideByID", ctx, guide.ID).Return(&guide, nil)
	mockStats.On("StatusCountsForGuide", ctx, guide.ID).Return(counts, nil)
	mockStats.On("MonthlyStatsForGuide", ctx, guide.ID, mock.AnythingOfType("time.Time")).Return(monthly, nil)

	stats, err := service.GetStats(ctx, guide.ID, guide.ID, common.RoleGuide)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), stats.StatusCounts["completed"])
	assert.Len(t, stats.Monthly, 2)
	mockStats.AssertExpectations(t)
}

func TestGetStats_OtherGuideForbidden(t *testing.T) {
	service, _, mockStats, _ := setupGuideServiceTest(t)
	ctx := context.Background()

	_, err := service.GetStats(ctx, uuid.New(), uuid.New(), common.RoleGuide)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrForbidden.Code, apiErr.Code)
	mockStats.AssertNotCalled(t, "StatusCountsForGuide", mock.Anything, mock.Anything)
}

func TestMatchGuidesForRequest_Success(t *testing.T) {
	service, mockRepo, _, mockCriteria := setupGuideServiceTest(t)
	ctx := context.Background()

	requestID := uuid.New()
	criteria := &MatchCriteria{
		PreferredLanguage: "Amharic",
		TourType:          "Historical Tour",
		SpecialInterests:  []string{"Architecture"},
	}
	matches := []user.User{verifiedGuide("tigist")}

	mockCriteria.On("MatchCriteriaForRequest", ctx, requestID).Return(criteria, nil)
	mockRepo.On("FindMatching", ctx, *criteria).Return(matches, nil)

	result, err := service.MatchGuidesForRequest(ctx, requestID)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, matches[0].ID, result[0].ID)
	mockCriteria.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestMatchGuidesForRequest_NonPendingRequest(t *testing.T) {
	service, mockRepo, _, mockCriteria := setupGuideServiceTest(t)
	ctx := context.Background()

	requestID := uuid.New()
	mockCriteria.On("MatchCriteriaForRequest", ctx, requestID).
		Return(nil, common.ErrConflict.WithDetails("Guides can only be matched for pending requests."))

	_, err := service.MatchGuidesForRequest(ctx, requestID)

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	mockRepo.AssertNotCalled(t, "FindMatching", mock.Anything, mock.Anything)
}
