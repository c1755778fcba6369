package destination

import (
	"context"
	"testing"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockDestinationRepository is a mock type for destination.Repository
type MockDestinationRepository struct {
	mock.Mock
}

func (m *MockDestinationRepository) Create(ctx context.Context, dest *Destination) error {
	args := m.Called(ctx, dest)
	if args.Error(0) == nil && dest.ID == uuid.Nil {
		dest.ID = uuid.New() // Simulate DB generating ID
	}
	return args.Error(0)
}

func (m *MockDestinationRepository) Update(ctx context.Context, dest *Destination) error {
	args := m.Called(ctx, dest)
	return args.Error(0)
}

func (m *MockDestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Destination), args.Error(1)
}

func (m *MockDestinationRepository) FindBySlug(ctx context.Context, slug string) (*Destination, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Destination), args.Error(1)
}

func (m *MockDestinationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Destination, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Destination), args.Error(1)
}

func (m *MockDestinationRepository) List(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error) {
	args := m.Called(ctx, query)
	var destinations []Destination
	if args.Get(0) != nil {
		destinations = args.Get(0).([]Destination)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return destinations, pagination, args.Error(2)
}

func (m *MockDestinationRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDestinationRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Destination, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Destination), args.Error(1)
}

// setupDestinationServiceTest builds the service without an Elasticsearch
// backend so search falls back to the database path.
func setupDestinationServiceTest(t *testing.T) (*ServiceImplementation, *MockDestinationRepository) {
	t.Helper()
	mockRepo := new(MockDestinationRepository)
	service := NewService(mockRepo, nil, zap.NewNop())
	return service, mockRepo
}

func TestCreateDestination_SlugAndDefaults(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*destination.Destination")).Return(nil)

	dest, err := service.Create(ctx, CreateDestinationRequest{
		Name:        "Simien Mountains National Park",
		Description: "Dramatic escarpments and gelada monkeys.",
		Category:    "mountains",
	})

	assert.NoError(t, err)
	assert.Equal(t, "simien-mountains-national-park", dest.Slug)
	assert.Equal(t, "moderate", dest.Difficulty, "Difficulty should default to moderate")
	assert.Equal(t, 1, dest.MinDays)
	assert.Equal(t, 1, dest.MaxDays, "MaxDays is clamped up to MinDays")
	assert.True(t, dest.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestCreateDestination_DuplicateName(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*destination.Destination")).
		Return(common.ErrConflict.WithDetails("A destination with this name already exists."))

	_, err := service.Create(ctx, CreateDestinationRequest{
		Name:        "Lalibela",
		Description: "Rock-hewn churches.",
		Category:    "historical-sites",
	})

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestList_WithoutSearchUsesRepository(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	query := ListQuery{Category: "historical-sites", Page: 1, PageSize: 10}
	expected := []Destination{{Name: "Lalibela", Category: "historical-sites", IsActive: true}}
	pagination := common.NewPagination(1, 1, 10)

	mockRepo.On("List", ctx, query).Return(expected, pagination, nil)

	result, resultPagination, err := service.List(ctx, query)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "Lalibela", result[0].Name)
	assert.Equal(t, pagination, resultPagination)
}

func TestList_SearchWithoutElasticsearchFallsBack(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	query := ListQuery{Search: "churches", Page: 1, PageSize: 10}
	mockRepo.On("List", ctx, query).Return([]Destination{}, common.NewPagination(0, 1, 10), nil)

	_, _, err := service.List(ctx, query)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGetByID_HidesInactiveFromPublic(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	inactive := &Destination{Name: "Closed Site", IsActive: false}
	inactive.ID = uuid.New()

	mockRepo.On("FindByID", ctx, inactive.ID).Return(inactive, nil)

	_, err := service.GetByID(ctx, inactive.ID, false)
	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)

	dest, err := service.GetByID(ctx, inactive.ID, true)
	assert.NoError(t, err)
	assert.Equal(t, inactive.ID, dest.ID)
}

func TestUpdate_NameChangeRegeneratesSlug(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	dest := &Destination{
		Name:       "Danakil",
		Slug:       "danakil",
		Category:   "adventure",
		Difficulty: "challenging",
		MinDays:    3,
		MaxDays:    5,
		IsActive:   true,
	}
	dest.ID = uuid.New()

	newName := "Danakil Depression"
	mockRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
	mockRepo.On("Update", ctx, dest).Return(nil)

	updated, err := service.Update(ctx, dest.ID, UpdateDestinationRequest{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "Danakil Depression", updated.Name)
	assert.Equal(t, "danakil-depression", updated.Slug)
	assert.Equal(t, "challenging", updated.Difficulty, "Unset fields stay unchanged")
	mockRepo.AssertExpectations(t)
}

func TestDelete_DeactivatesInsteadOfRemoving(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	dest := &Destination{Name: "Lalibela", IsActive: true}
	dest.ID = uuid.New()

	mockRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
	mockRepo.On("Update", ctx, dest).Return(nil)

	err := service.Delete(ctx, dest.ID)

	assert.NoError(t, err)
	assert.False(t, dest.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestDelete_AlreadyInactiveIsIdempotent(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	dest := &Destination{Name: "Lalibela", IsActive: false}
	dest.ID = uuid.New()

	mockRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)

	err := service.Delete(ctx, dest.ID)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategories(t *testing.T) {
	service, mockRepo := setupDestinationServiceTest(t)
	ctx := context.Background()

	mockRepo.On("DistinctCategories", ctx).Return([]string{"historical-sites", "mountains"}, nil)

	categories, err := service.Categories(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{"historical-sites", "mountains"}, categories)
}
