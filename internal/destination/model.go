// File: internal/destination/model.go
package destination

import (
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Destination categories accepted by the catalog.
var ValidCategories = []string{
	"beaches", "mountains", "historical-sites", "religious-sites",
	"wildlife", "adventure", "cultural",
}

// Destination represents a catalog entry in the database.
// Soft deletion flips IsActive; rows are never removed by the API.
type Destination struct {
	common.BaseModel
	Name         string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug         string         `gorm:"type:varchar(120);uniqueIndex;not null"`
	Description  string         `gorm:"type:varchar(1000);not null"`
	Image        *string        `gorm:"type:text"`
	Category     string         `gorm:"type:varchar(50);not null;index"`
	Difficulty   string         `gorm:"type:varchar(20);not null;default:'moderate'"`
	Location     *string        `gorm:"type:varchar(255)"`
	Altitude     *string        `gorm:"type:varchar(50)"`
	BestSeason   pq.StringArray `gorm:"type:text[]"`
	MinDays      int            `gorm:"not null;default:1"`
	MaxDays      int            `gorm:"not null;default:1"`
	Highlights   pq.StringArray `gorm:"type:text[]"`
	Requirements pq.StringArray `gorm:"type:text[]"`
	IsActive     bool           `gorm:"not null;default:true;index"`
	Rating       float64        `gorm:"not null;default:0"`
	ReviewCount  int            `gorm:"not null;default:0"`
}

// TableName specifies the table name for the Destination model.
func (Destination) TableName() string {
	return "destinations"
}

// --- DTOs ---

// CreateDestinationRequest defines the payload for creating a destination.
type CreateDestinationRequest struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Description  string   `json:"description" binding:"required,max=1000"`
	Image        *string  `json:"image,omitempty"`
	Category     string   `json:"category" binding:"required,oneof=beaches mountains historical-sites religious-sites wildlife adventure cultural"`
	Difficulty   string   `json:"difficulty,omitempty" binding:"omitempty,oneof=easy moderate challenging difficult"`
	Location     *string  `json:"location,omitempty" binding:"omitempty,max=255"`
	Altitude     *string  `json:"altitude,omitempty" binding:"omitempty,max=50"`
	BestSeason   []string `json:"bestSeason,omitempty"`
	MinDays      int      `json:"minDays,omitempty" binding:"omitempty,gte=1"`
	MaxDays      int      `json:"maxDays,omitempty" binding:"omitempty,gte=1"`
	Highlights   []string `json:"highlights,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// UpdateDestinationRequest defines the payload for a partial update.
// Nil fields are left unchanged.
type UpdateDestinationRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,max=100"`
	Description  *string  `json:"description,omitempty" binding:"omitempty,max=1000"`
	Image        *string  `json:"image,omitempty"`
	Category     *string  `json:"category,omitempty" binding:"omitempty,oneof=beaches mountains historical-sites religious-sites wildlife adventure cultural"`
	Difficulty   *string  `json:"difficulty,omitempty" binding:"omitempty,oneof=easy moderate challenging difficult"`
	Location     *string  `json:"location,omitempty" binding:"omitempty,max=255"`
	Altitude     *string  `json:"altitude,omitempty" binding:"omitempty,max=50"`
	BestSeason   []string `json:"bestSeason,omitempty"`
	MinDays      *int     `json:"minDays,omitempty" binding:"omitempty,gte=1"`
	MaxDays      *int     `json:"maxDays,omitempty" binding:"omitempty,gte=1"`
	Highlights   []string `json:"highlights,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

// ListQuery holds the supported filters for destination listing.
type ListQuery struct {
	Category   string
	Difficulty string
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
	// IncludeInactive is only honored for admin callers.
	IncludeInactive bool
}

// DestinationResponse is the API view of a destination.
type DestinationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Image        *string   `json:"image,omitempty"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Location     *string   `json:"location,omitempty"`
	Altitude     *string   `json:"altitude,omitempty"`
	BestSeason   []string  `json:"bestSeason"`
	MinDays      int       `json:"minDays"`
	MaxDays      int       `json:"maxDays"`
	Highlights   []string  `json:"highlights"`
	Requirements []string  `json:"requirements"`
	IsActive     bool      `json:"isActive"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToDestinationResponse converts a model to its API representation.
func ToDestinationResponse(d *Destination) DestinationResponse {
	return DestinationResponse{
		ID:           d.ID,
		Name:         d.Name,
		Slug:         d.Slug,
		Description:  d.Description,
		Image:        d.Image,
		Category:     d.Category,
		Difficulty:   d.Difficulty,
		Location:     d.Location,
		Altitude:     d.Altitude,
		BestSeason:   d.BestSeason,
		MinDays:      d.MinDays,
		MaxDays:      d.MaxDays,
		Highlights:   d.Highlights,
		Requirements: d.Requirements,
		IsActive:     d.IsActive,
		Rating:       d.Rating,
		ReviewCount:  d.ReviewCount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDestinationResponses maps a slice of models to API DTOs.
func ToDestinationResponses(destinations []Destination) []DestinationResponse {
	responses := make([]DestinationResponse, 0, len(destinations))
	for i := range destinations {
		responses = append(responses, ToDestinationResponse(&destinations[i]))
	}
	return responses
}
