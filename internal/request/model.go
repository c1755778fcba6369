// File: internal/request/model.go
package request

import (
	"time"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status is the lifecycle state of a trip request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Payment states for a trip request.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// validTransitions maps each status to the states it may move to.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the status may move to the target state.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// durationDays maps the duration labels tourists pick from to trip length in
// days. Unknown labels fall back to one week.
var durationDays = map[string]int{
	"1-2 days": 2,
	"3-5 days": 5,
	"1 week":   7,
	"2 weeks":  14,
	"1 month":  30,
}

const defaultDurationDays = 7

// DurationToDays resolves a duration label to a number of days.
func DurationToDays(duration string) int {
	if days, ok := durationDays[duration]; ok {
		return days
	}
	return defaultDurationDays
}

// Budget tiers and fitness levels accepted on a trip request.
var (
	ValidBudgets       = []string{"budget", "moderate", "premium", "luxury"}
	ValidFitnessLevels = []string{"beginner", "moderate", "advanced", "expert"}
)

// TripRequest represents a tourist's request for a guided trip. Destination
// names and the tourist's name/email are snapshotted at creation time so the
// request stays readable even if the catalog or the account changes later.
type TripRequest struct {
	common.BaseModel
	TouristID              uuid.UUID      `gorm:"type:uuid;not null;index"`
	TouristName            string         `gorm:"type:varchar(50);not null"`
	TouristEmail           string         `gorm:"type:varchar(255);not null"`
	DestinationIDs         pq.StringArray `gorm:"type:text[];not null"`
	DestinationNames       pq.StringArray `gorm:"type:text[];not null"`
	TourType               string         `gorm:"type:varchar(50);not null"`
	PreferredLanguage      string         `gorm:"type:varchar(50);not null"`
	SpecialInterests       pq.StringArray `gorm:"type:text[]"`
	SpecialRequests        *string        `gorm:"type:varchar(1000)"`
	Budget                 string         `gorm:"type:varchar(20);not null"`
	FitnessLevel           string         `gorm:"type:varchar(20);not null"`
	EmergencyContact       string         `gorm:"type:varchar(255);not null"`
	AdditionalRequirements *string        `gorm:"type:varchar(1000)"`
	StartDate              time.Time      `gorm:"not null"`
	EndDate                time.Time      `gorm:"not null"`
	Duration               string         `gorm:"type:varchar(20);not null"`
	GroupSize              int            `gorm:"not null;default:1"`
	TotalCost              float64        `gorm:"not null;default:0"`
	PaymentStatus          string         `gorm:"type:varchar(20);not null;default:'pending'"`
	Status                 Status         `gorm:"type:varchar(20);not null;default:'pending';index"`
	AssignedGuideID        *uuid.UUID     `gorm:"type:uuid;index"`
	AssignedAt             *time.Time
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	Rating                 *int    `gorm:"check:rating >= 1 AND rating <= 5"`
	Review                 *string `gorm:"type:varchar(1000)"`
	ReviewedAt             *time.Time
}

// TableName specifies the table name for GORM.
func (TripRequest) TableName() string {
	return "trip_requests"
}

// --- DTOs for API requests/responses ---

// CreateRequestRequest is the payload for submitting a trip request.
type CreateRequestRequest struct {
	DestinationIDs         []string `json:"destinationIds" binding:"required,min=1,dive,uuid"`
	TourType               string   `json:"tourType" binding:"required,max=50"`
	PreferredLanguage      string   `json:"preferredLanguage" binding:"required,max=50"`
	SpecialInterests       []string `json:"specialInterests" binding:"omitempty,dive,max=50"`
	SpecialRequests        *string  `json:"specialRequests" binding:"omitempty,max=1000"`
	Budget                 string   `json:"budget" binding:"required,oneof=budget moderate premium luxury"`
	FitnessLevel           string   `json:"fitnessLevel" binding:"required,oneof=beginner moderate advanced expert"`
	EmergencyContact       string   `json:"emergencyContact" binding:"required,max=255"`
	AdditionalRequirements *string  `json:"additionalRequirements" binding:"omitempty,max=1000"`
	StartDate              string   `json:"startDate" binding:"required,datetime=2006-01-02"`
	Duration               string   `json:"duration" binding:"required,max=20"`
	GroupSize              int      `json:"groupSize" binding:"required,gte=1,lte=50"`
	TotalCost              *float64 `json:"totalCost" binding:"omitempty,gte=0"`
}

// AssignGuideRequest is the admin payload for assigning a guide.
type AssignGuideRequest struct {
	GuideID uuid.UUID `json:"guideId" binding:"required"`
}

// UpdateStatusRequest moves a trip request through its lifecycle.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=assigned in-progress completed cancelled"`
}

// SubmitReviewRequest is the tourist payload for reviewing a completed trip.
type SubmitReviewRequest struct {
	Rating int     `json:"rating" binding:"required,gte=1,lte=5"`
	Review *string `json:"review" binding:"omitempty,max=1000"`
}

// ListQuery holds the supported filters for listing trip requests.
type ListQuery struct {
	TouristID *uuid.UUID
	GuideID   *uuid.UUID
	Status    Status
	TourType  string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// GuideSummary is the assigned guide as embedded in request responses.
type GuideSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	Rating       float64   `json:"rating"`
	Languages    []string  `json:"languages"`
}

// TouristSummary is the requesting tourist as embedded in request responses.
type TouristSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Country      *string   `json:"country,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
}

// RequestResponse is the API view of a trip request.
type RequestResponse struct {
	ID                     uuid.UUID       `json:"id"`
	TouristName            string          `json:"touristName"`
	TouristEmail           string          `json:"touristEmail"`
	Tourist                *TouristSummary `json:"tourist,omitempty"`
	DestinationIDs         []string        `json:"destinationIds"`
	DestinationNames       []string        `json:"destinationNames"`
	TourType               string          `json:"tourType"`
	PreferredLanguage      string          `json:"preferredLanguage"`
	SpecialInterests       []string        `json:"specialInterests"`
	SpecialRequests        *string         `json:"specialRequests,omitempty"`
	Budget                 string          `json:"budget"`
	FitnessLevel           string          `json:"fitnessLevel"`
	EmergencyContact       string          `json:"emergencyContact,omitempty"`
	AdditionalRequirements *string         `json:"additionalRequirements,omitempty"`
	StartDate              time.Time       `json:"startDate"`
	EndDate                time.Time       `json:"endDate"`
	Duration               string          `json:"duration"`
	GroupSize              int             `json:"groupSize"`
	TotalCost              float64         `json:"totalCost"`
	PaymentStatus          string          `json:"paymentStatus"`
	Status                 Status          `json:"status"`
	AssignedGuide          *GuideSummary   `json:"assignedGuide,omitempty"`
	AssignedAt             *time.Time      `json:"assignedAt,omitempty"`
	CompletedAt            *time.Time      `json:"completedAt,omitempty"`
	CancelledAt            *time.Time      `json:"cancelledAt,omitempty"`
	Rating                 *int            `json:"rating,omitempty"`
	Review                 *string         `json:"review,omitempty"`
	ReviewedAt             *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// ToRequestResponse converts a TripRequest model to its API view. Tourist and
// guide summaries are attached by the service when loaded.
func ToRequestResponse(r *TripRequest) RequestResponse {
	return RequestResponse{
		ID:                     r.ID,
		TouristName:            r.TouristName,
		TouristEmail:           r.TouristEmail,
		DestinationIDs:         r.DestinationIDs,
		DestinationNames:       r.DestinationNames,
		TourType:               r.TourType,
		PreferredLanguage:      r.PreferredLanguage,
		SpecialInterests:       r.SpecialInterests,
		SpecialRequests:        r.SpecialRequests,
		Budget:                 r.Budget,
		FitnessLevel:           r.FitnessLevel,
		EmergencyContact:       r.EmergencyContact,
		AdditionalRequirements: r.AdditionalRequirements,
		StartDate:              r.StartDate,
		EndDate:                r.EndDate,
		Duration:               r.Duration,
		GroupSize:              r.GroupSize,
		TotalCost:              r.TotalCost,
		PaymentStatus:          r.PaymentStatus,
		Status:                 r.Status,
		AssignedAt:             r.AssignedAt,
		CompletedAt:            r.CompletedAt,
		CancelledAt:            r.CancelledAt,
		Rating:                 r.Rating,
		Review:                 r.Review,
		ReviewedAt:             r.ReviewedAt,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}
