// File: internal/guide/model.go
package guide

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GuideListQuery holds the supported filters for browsing guides.
// Specialties and Languages match a guide when any one value overlaps.
type GuideListQuery struct {
	Available   *bool
	Specialties []string
	Languages   []string
	Location    string
	MinRating   *float64
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

// MatchCriteria describes what to look for when matching guides to a trip
// request. A guide matches when any one of the criteria overlaps.
type MatchCriteria struct {
	PreferredLanguage string
	TourType          string
	SpecialInterests  []string
}

// TripReview is a review left by a tourist on a completed trip, shown on a
// guide's public profile.
type TripReview struct {
	RequestID   uuid.UUID  `json:"requestId"`
	TouristName string     `json:"touristName"`
	Rating      int        `json:"rating"`
	Review      *string    `json:"review,omitempty"`
	TourType    string     `json:"tourType"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MonthlyStat is one month of a guide's completed trip activity.
type MonthlyStat struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Trips   int64   `json:"trips"`
	Revenue float64 `json:"revenue"`
}

// Stats summarizes a guide's workload and earnings.
type Stats struct {
	StatusCounts map[string]int64 `json:"statusCounts"`
	Monthly      []MonthlyStat    `json:"monthly"`
}

// TripStatsProvider supplies trip request aggregates for guide profiles and
// statistics. Implemented by the request repository.
type TripStatsProvider interface {
	StatusCountsForGuide(ctx context.Context, guideID uuid.UUID) (map[string]int64, error)
	MonthlyStatsForGuide(ctx context.Context, guideID uuid.UUID, since time.Time) ([]MonthlyStat, error)
	ReviewsForGuide(ctx context.Context, guideID uuid.UUID, limit int) ([]TripReview, error)
}

// RequestCriteriaProvider resolves the matching criteria of a pending trip
// request. Implemented by the request repository.
type RequestCriteriaProvider interface {
	MatchCriteriaForRequest(ctx context.Context, requestID uuid.UUID) (*MatchCriteria, error)
}

// UpdateAvailabilityRequest toggles whether a guide accepts new assignments.
type UpdateAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}
