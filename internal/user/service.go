// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines account operations consumed by the auth handlers.
type Service interface {
	shared.Service
	Register(ctx context.Context, req RegisterRequest) (*User, *shared.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*User, *shared.TokenResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	cfg          *config.Config
	logger       *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)
var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(
	repo Repository,
	tokenService shared.TokenService,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		cfg:          cfg,
		logger:       logger,
	}
}

// Register creates a new account and returns it with a fresh token pair.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*User, *shared.TokenResponse, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, common.ErrConflict.WithDetails("User with this email already exists.")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}

	hashedPassword, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = common.RoleTourist
	}

	dbUser := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Phone:        req.Phone,
		Country:      req.Country,
		IsActive:     true,
	}
	// New guides start unverified and stay out of matching until an admin
	// flips them to verified.
	if role == common.RoleGuide {
		dbUser.VerificationStatus = VerificationPending
		dbUser.Available = true
	}

	if err := s.repo.Create(ctx, dbUser); err != nil {
		s.logger.Error("Failed to create user in repository", zap.Error(err), zap.String("email", req.Email))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, nil, apiErr
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokenResponse, err := s.issueTokens(dbUser)
	if err != nil {
		s.logger.Error("Failed to generate tokens after registration", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User registered successfully", zap.String("userID", dbUser.ID.String()), zap.String("role", dbUser.Role))
	return dbUser, tokenResponse, nil
}

// Login verifies credentials and returns the account with a fresh token pair.
func (s *ServiceImplementation) Login(ctx context.Context, email, password string) (*User, *shared.TokenResponse, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found during login", zap.String("email", email))
			return nil, nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		s.logger.Error("Error finding user by email during login", zap.Error(err), zap.String("email", email))
		return nil, nil, common.ErrInternalServer.WithDetails("Login failed due to an internal error.")
	}

	if !common.CheckPasswordHash(password, dbUser.PasswordHash) {
		s.logger.Warn("Invalid password attempt", zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	if !dbUser.IsActive {
		s.logger.Warn("Inactive account login attempt", zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrUnauthorized.WithDetails("This account has been deactivated.")
	}

	now := time.Now()
	dbUser.LastLoginAt = &now
	if err := s.repo.Update(ctx, dbUser); err != nil {
		// Not critical for auth, proceed with login.
		s.logger.Error("Failed to update last login time", zap.Error(err), zap.String("userID", dbUser.ID.String()))
	}

	tokenResponse, err := s.issueTokens(dbUser)
	if err != nil {
		s.logger.Error("Failed to generate tokens on login", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}

	s.logger.Info("User logged in successfully", zap.String("userID", dbUser.ID.String()))
	return dbUser, tokenResponse, nil
}

func (s *ServiceImplementation) issueTokens(dbUser *User) (*shared.TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.tokenService.GenerateAccessToken(dbUser)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokenService.GenerateRefreshToken(dbUser)
	if err != nil {
		// Proceed without a refresh token, the access token alone is usable.
		s.logger.Error("Failed to generate refresh token", zap.Error(err), zap.String("userID", dbUser.ID.String()))
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt,
	}, nil
}

// GetProfile returns the full account record for the given ID.
func (s *ServiceImplementation) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a partial update to the caller's own profile.
// Role, email and verification status are not touched here.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dbUser.Name = *req.Name
	}
	if req.Phone != nil {
		dbUser.Phone = req.Phone
	}
	if req.Country != nil {
		dbUser.Country = req.Country
	}
	if req.ProfileImage != nil {
		dbUser.ProfileImage = req.ProfileImage
	}
	if req.Bio != nil {
		dbUser.Bio = req.Bio
	}
	if req.Location != nil {
		dbUser.Location = req.Location
	}
	if req.Languages != nil {
		dbUser.Languages = req.Languages
	}
	if req.Specialties != nil {
		dbUser.Specialties = req.Specialties
	}
	if req.Experience != nil {
		dbUser.Experience = *req.Experience
	}

	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.String("userID", id.String()))
		return nil, err
	}
	return dbUser, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *ServiceImplementation) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !common.CheckPasswordHash(currentPassword, dbUser.PasswordHash) {
		return common.ErrUnauthorized.WithDetails("Current password is incorrect.")
	}

	hashed, err := common.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err), zap.String("userID", id.String()))
		return common.ErrInternalServer
	}

	dbUser.PasswordHash = hashed
	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to persist new password", zap.Error(err), zap.String("userID", id.String()))
		return err
	}
	s.logger.Info("Password changed", zap.String("userID", id.String()))
	return nil
}

// GetUserByID implements shared.Service.
func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// GetUserByEmail implements shared.Service.
func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}
