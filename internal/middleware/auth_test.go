package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

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

// MockTokenBlocklist is a mock type for TokenBlocklist
type MockTokenBlocklist struct {
	mock.Mock
}

func (m *MockTokenBlocklist) IsBlocklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func adminClaims(jti string) *shared.Claims {
	return &shared.Claims{
		UserID: uuid.New(),
		Email:  "admin@example.com",
		Role:   common.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: jti,
		},
	}
}

func performOptionalAuthRequest(t *testing.T, tokenService *MockTokenService, blocklist *MockTokenBlocklist, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var capturedRole string
	router := gin.New()
	router.GET("/resource",
		OptionalAuthMiddleware(tokenService, blocklist, zap.NewNop()),
		func(c *gin.Context) {
			capturedRole = GetUserRoleFromContext(c)
			c.Status(http.StatusOK)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if authHeader != "" {
		req.Header.Set(common.AuthorizationHeader, authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, capturedRole
}

func TestOptionalAuthMiddleware_AnonymousRequestPassesThrough(t *testing.T) {
	tokenService := new(MockTokenService)
	blocklist := new(MockTokenBlocklist)

	w, role := performOptionalAuthRequest(t, tokenService, blocklist, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, role)
	tokenService.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestOptionalAuthMiddleware_ValidTokenSetsIdentity(t *testing.T) {
	tokenService := new(MockTokenService)
	blocklist := new(MockTokenBlocklist)

	claims := adminClaims("jti-123")
	tokenService.On("ValidateToken", "valid-token").Return(claims, nil)
	blocklist.On("IsBlocklisted", mock.Anything, "jti-123").Return(false, nil)

	w, role := performOptionalAuthRequest(t, tokenService, blocklist, "Bearer valid-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.RoleAdmin, role)
}

func TestOptionalAuthMiddleware_InvalidTokenRejected(t *testing.T) {
	tokenService := new(MockTokenService)
	blocklist := new(MockTokenBlocklist)

	tokenService.On("ValidateToken", "bad-token").Return(nil, errors.New("token is malformed"))

	w, _ := performOptionalAuthRequest(t, tokenService, blocklist, "Bearer bad-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware_RevokedTokenRejected(t *testing.T) {
	tokenService := new(MockTokenService)
	blocklist := new(MockTokenBlocklist)

	claims := adminClaims("jti-revoked")
	tokenService.On("ValidateToken", "revoked-token").Return(claims, nil)
	blocklist.On("IsBlocklisted", mock.Anything, "jti-revoked").Return(true, nil)

	w, _ := performOptionalAuthRequest(t, tokenService, blocklist, "Bearer revoked-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
