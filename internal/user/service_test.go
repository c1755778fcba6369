package user

import (
	"context"
	"testing"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockUserRepository is a mock type for user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New() // Simulate DB generating ID
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindActiveAdmins(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

// MockTokenService is a mock type for shared.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func (m *MockTokenService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	args := m.Called(refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func setupUserServiceTest(t *testing.T) (*ServiceImplementation, *MockUserRepository, *MockTokenService) {
	t.Helper()
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	cfg := &config.Config{}
	service := NewService(mockRepo, mockTokens, cfg, zap.NewNop())
	return service, mockRepo, mockTokens
}

func expectTokenPair(mockTokens *MockTokenService) {
	expiry := time.Now().Add(15 * time.Minute)
	mockTokens.On("GenerateAccessToken", mock.Anything).Return("access-token", expiry, nil)
	mockTokens.On("GenerateRefreshToken", mock.Anything).Return("refresh-token", expiry.Add(24*time.Hour), nil)
}

func TestRegister_Success(t *testing.T) {
	service, mockRepo, mockTokens := setupUserServiceTest(t)
	ctx := context.Background()

	req := RegisterRequest{
		Name:     "Alemu Kebede",
		Email:    "alemu@example.com",
		Password: "password123",
	}

	mockRepo.On("FindByEmail", ctx, req.Email).Return(nil, common.ErrNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	expectTokenPair(mockTokens)

	createdUser, tokens, err := service.Register(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, createdUser)
	assert.Equal(t, common.RoleTourist, createdUser.Role, "Role should default to tourist")
	assert.True(t, createdUser.IsActive)
	assert.NotEqual(t, req.Password, createdUser.PasswordHash, "Password must be stored hashed")
	assert.True(t, common.CheckPasswordHash(req.Password, createdUser.PasswordHash))
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.Equal(t, "refresh-token", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

func TestRegister_GuideStartsUnverified(t *testing.T) {
	service, mockRepo, mockTokens := setupUserServiceTest(t)
	ctx := context.Background()

	req := RegisterRequest{
		Name:     "Tigist Haile",
		Email:    "tigist@example.com",
		Password: "password123",
		Role:     common.RoleGuide,
	}

	mockRepo.On("FindByEmail", ctx, req.Email).Return(nil, common.ErrNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	expectTokenPair(mockTokens)

	createdUser, _, err := service.Register(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, common.RoleGuide, createdUser.Role)
	assert.Equal(t, VerificationPending, createdUser.VerificationStatus)
	assert.True(t, createdUser.Available)
	assert.False(t, createdUser.IsVerifiedGuide(), "Fresh guides must not be matchable")
	mockRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	existing := &User{Email: "taken@example.com"}
	existing.ID = uuid.New()
	mockRepo.On("FindByEmail", ctx, "taken@example.com").Return(existing, nil)

	_, _, err := service.Register(ctx, RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	service, mockRepo, mockTokens := setupUserServiceTest(t)
	ctx := context.Background()

	hash, err := common.HashPassword("password123")
	assert.NoError(t, err)

	dbUser := &User{
		Name:         "Alemu Kebede",
		Email:        "alemu@example.com",
		PasswordHash: hash,
		Role:         common.RoleTourist,
		IsActive:     true,
	}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByEmail", ctx, dbUser.Email).Return(dbUser, nil)
	mockRepo.On("Update", ctx, dbUser).Return(nil)
	expectTokenPair(mockTokens)

	loggedIn, tokens, err := service.Login(ctx, dbUser.Email, "password123")

	assert.NoError(t, err)
	assert.Equal(t, dbUser.ID, loggedIn.ID)
	assert.NotNil(t, loggedIn.LastLoginAt, "Login should stamp last login time")
	assert.Equal(t, "access-token", tokens.AccessToken)
	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	hash, _ := common.HashPassword("password123")
	dbUser := &User{Email: "alemu@example.com", PasswordHash: hash, IsActive: true}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByEmail", ctx, dbUser.Email).Return(dbUser, nil)

	_, _, err := service.Login(ctx, dbUser.Email, "not-the-password")

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, common.ErrNotFound)

	_, _, err := service.Login(ctx, "ghost@example.com", "password123")

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	// Unknown email and bad password must be indistinguishable to the caller.
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}

func TestLogin_InactiveAccount(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	hash, _ := common.HashPassword("password123")
	dbUser := &User{Email: "gone@example.com", PasswordHash: hash, IsActive: false}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByEmail", ctx, dbUser.Email).Return(dbUser, nil)

	_, _, err := service.Login(ctx, dbUser.Email, "password123")

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	bio := "Historian and coffee ceremony host."
	dbUser := &User{
		Name:  "Tigist Haile",
		Email: "tigist@example.com",
		Role:  common.RoleGuide,
	}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByID", ctx, dbUser.ID).Return(dbUser, nil)
	mockRepo.On("Update", ctx, dbUser).Return(nil)

	updated, err := service.UpdateProfile(ctx, dbUser.ID, UpdateProfileRequest{
		Bio:         &bio,
		Languages:   []string{"Amharic", "English"},
		Specialties: []string{"Historical Tours"},
	})

	assert.NoError(t, err)
	assert.Equal(t, bio, *updated.Bio)
	assert.Equal(t, []string{"Amharic", "English"}, []string(updated.Languages))
	assert.Equal(t, "Tigist Haile", updated.Name, "Unset fields stay unchanged")
	assert.Equal(t, "tigist@example.com", updated.Email)
	mockRepo.AssertExpectations(t)
}

func TestChangePassword_Success(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	hash, _ := common.HashPassword("old-password")
	dbUser := &User{Email: "alemu@example.com", PasswordHash: hash, IsActive: true}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByID", ctx, dbUser.ID).Return(dbUser, nil)
	mockRepo.On("Update", ctx, dbUser).Return(nil)

	err := service.ChangePassword(ctx, dbUser.ID, "old-password", "new-password")

	assert.NoError(t, err)
	assert.True(t, common.CheckPasswordHash("new-password", dbUser.PasswordHash))
	assert.False(t, common.CheckPasswordHash("old-password", dbUser.PasswordHash))
	mockRepo.AssertExpectations(t)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	service, mockRepo, _ := setupUserServiceTest(t)
	ctx := context.Background()

	hash, _ := common.HashPassword("old-password")
	dbUser := &User{Email: "alemu@example.com", PasswordHash: hash, IsActive: true}
	dbUser.ID = uuid.New()

	mockRepo.On("FindByID", ctx, dbUser.ID).Return(dbUser, nil)

	err := service.ChangePassword(ctx, dbUser.ID, "wrong-guess", "new-password")

	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
	assert.True(t, common.CheckPasswordHash("old-password", dbUser.PasswordHash), "Hash must be untouched")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
