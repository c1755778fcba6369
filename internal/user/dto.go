// File: internal/user/dto.go
package user

import (
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
)

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Country  *string `json:"country,omitempty" binding:"omitempty,max=100"`
	Role     string  `json:"role,omitempty" binding:"omitempty,oneof=tourist guide"`
}

// LoginRequest defines the payload for email/password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest defines the payload for a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,max=50"`
	Phone        *string  `json:"phone,omitempty" binding:"omitempty,max=30"`
	Country      *string  `json:"country,omitempty" binding:"omitempty,max=100"`
	ProfileImage *string  `json:"profileImage,omitempty"`
	Bio          *string  `json:"bio,omitempty" binding:"omitempty,max=500"`
	Location     *string  `json:"location,omitempty" binding:"omitempty,max=255"`
	Languages    []string `json:"languages,omitempty"`
	Specialties  []string `json:"specialties,omitempty"`
	Experience   *int     `json:"experience,omitempty" binding:"omitempty,gte=0"`
}

// ChangePasswordRequest defines the payload for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// ProfileResponse is the owner's view of their own account, including the
// guide profile fields.
type ProfileResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	Phone              *string    `json:"phone,omitempty"`
	Country            *string    `json:"country,omitempty"`
	ProfileImage       *string    `json:"profileImage,omitempty"`
	IsActive           bool       `json:"isActive"`
	Bio                *string    `json:"bio,omitempty"`
	Languages          []string   `json:"languages,omitempty"`
	Specialties        []string   `json:"specialties,omitempty"`
	Experience         int        `json:"experience"`
	Rating             float64    `json:"rating"`
	TotalReviews       int        `json:"totalReviews"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
	Available          bool       `json:"available"`
	CompletedTrips     int        `json:"completedTrips"`
	Location           *string    `json:"location,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
}

// ToProfileResponse converts a User model to the owner profile DTO.
func ToProfileResponse(u *User) ProfileResponse {
	resp := ProfileResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Phone:        u.Phone,
		Country:      u.Country,
		ProfileImage: u.ProfileImage,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
	if u.Role == common.RoleGuide {
		resp.Bio = u.Bio
		resp.Languages = u.Languages
		resp.Specialties = u.Specialties
		resp.Experience = u.Experience
		resp.Rating = u.Rating
		resp.TotalReviews = u.TotalReviews
		resp.VerificationStatus = u.VerificationStatus
		resp.Available = u.Available
		resp.CompletedTrips = u.CompletedTrips
		resp.Location = u.Location
	}
	return resp
}
