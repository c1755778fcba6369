// File: internal/user/adapter.go
package user

import (
	"tourguide_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
// The password hash never crosses this boundary.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:           dbUser.ID,
		Name:         dbUser.Name,
		Email:        dbUser.Email,
		Role:         dbUser.Role,
		Phone:        dbUser.Phone,
		Country:      dbUser.Country,
		ProfileImage: dbUser.ProfileImage,
		IsActive:     dbUser.IsActive,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
		LastLoginAt:  dbUser.LastLoginAt,
	}
}
