// File: internal/shared/user_response.go
package shared

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse defines the structure for account data sent in API responses.
// The password hash never appears here.
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Phone        *string    `json:"phone,omitempty"`
	Country      *string    `json:"country,omitempty"`
	ProfileImage *string    `json:"profileImage,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(svUser *User) UserResponse {
	return UserResponse{
		ID:           svUser.ID,
		Name:         svUser.Name,
		Email:        svUser.Email,
		Role:         svUser.Role,
		Phone:        svUser.Phone,
		Country:      svUser.Country,
		ProfileImage: svUser.ProfileImage,
		IsActive:     svUser.IsActive,
		CreatedAt:    svUser.CreatedAt,
		UpdatedAt:    svUser.UpdatedAt,
		LastLoginAt:  svUser.LastLoginAt,
	}
}
