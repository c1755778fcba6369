// File: internal/user/model.go
package user

import (
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User represents an account in the database. Guides are users with
// role=guide; the guide-specific columns stay null/zero for tourists and
// admins.
type User struct {
	common.BaseModel
	Name         string  `gorm:"type:varchar(50);not null"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'tourist';index"`
	Phone        *string `gorm:"type:varchar(30)"`
	Country      *string `gorm:"type:varchar(100)"`
	ProfileImage *string `gorm:"type:text"`
	IsActive     bool    `gorm:"not null;default:true"`
	LastLoginAt  *time.Time

	// Guide profile
	Bio                *string        `gorm:"type:varchar(500)"`
	Languages          pq.StringArray `gorm:"type:text[]"`
	Specialties        pq.StringArray `gorm:"type:text[]"`
	Experience         int            `gorm:"not null;default:0"`
	Rating             float64        `gorm:"not null;default:0"`
	TotalReviews       int            `gorm:"not null;default:0"`
	VerificationStatus string         `gorm:"type:varchar(20);not null;default:'pending'"`
	Available          bool           `gorm:"not null;default:true"`
	CompletedTrips     int            `gorm:"not null;default:0"`
	Location           *string        `gorm:"type:varchar(255)"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Guide verification states.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) GetEmail() string {
	return u.Email
}

func (u *User) GetRole() string {
	return u.Role
}

// IsVerifiedGuide reports whether the account is an active, verified guide.
func (u *User) IsVerifiedGuide() bool {
	return u.Role == common.RoleGuide && u.IsActive && u.VerificationStatus == VerificationVerified
}

// --- DTOs for API requests/responses ---

// GuideResponse is the public view of a guide profile.
type GuideResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Country            *string   `json:"country,omitempty"`
	ProfileImage       *string   `json:"profileImage,omitempty"`
	Bio                *string   `json:"bio,omitempty"`
	Languages          []string  `json:"languages"`
	Specialties        []string  `json:"specialties"`
	Experience         int       `json:"experience"`
	Rating             float64   `json:"rating"`
	TotalReviews       int       `json:"totalReviews"`
	VerificationStatus string    `json:"verificationStatus"`
	Available          bool      `json:"available"`
	CompletedTrips     int       `json:"completedTrips"`
	Location           *string   `json:"location,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ToGuideResponse converts a User model to the public guide DTO.
func ToGuideResponse(u *User) GuideResponse {
	return GuideResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Country:            u.Country,
		ProfileImage:       u.ProfileImage,
		Bio:                u.Bio,
		Languages:          u.Languages,
		Specialties:        u.Specialties,
		Experience:         u.Experience,
		Rating:             u.Rating,
		TotalReviews:       u.TotalReviews,
		VerificationStatus: u.VerificationStatus,
		Available:          u.Available,
		CompletedTrips:     u.CompletedTrips,
		Location:           u.Location,
		CreatedAt:          u.CreatedAt,
	}
}

// ToGuideResponses maps a slice of users to guide DTOs.
func ToGuideResponses(users []User) []GuideResponse {
	responses := make([]GuideResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToGuideResponse(&users[i]))
	}
	return responses
}
