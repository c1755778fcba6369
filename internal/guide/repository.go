// File: internal/guide/repository.go
package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository defines guide-side queries over the users table.
type Repository interface {
	ListGuides(ctx context.Context, query GuideListQuery) ([]user.User, *common.Pagination, error)
	FindGuideByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindMatching(ctx context.Context, criteria MatchCriteria) ([]user.User, error)
	SetAvailability(ctx context.Context, guideID uuid.UUID, available bool) error
	ReserveForAssignment(ctx context.Context, guideID uuid.UUID) (bool, error)
	ReleaseFromAssignment(ctx context.Context, guideID uuid.UUID) error
	CompleteTrip(ctx context.Context, guideID uuid.UUID) error
	UpdateRating(ctx context.Context, guideID uuid.UUID, rating float64, totalReviews int) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM guide repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// guideSortFields whitelists sortable columns for guide listings.
var guideSortFields = map[string]string{
	"rating":         "rating",
	"experience":     "experience",
	"completedTrips": "completed_trips",
	"createdAt":      "created_at",
}

// ListGuides retrieves a page of verified active guides matching the filters.
func (r *gormRepository) ListGuides(ctx context.Context, query GuideListQuery) ([]user.User, *common.Pagination, error) {
	var guides []user.User
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&user.User{}).
		Where("role = ?", common.RoleGuide).
		Where("is_active = ?", true).
		Where("verification_status = ?", user.VerificationVerified)

	if query.Available != nil {
		dbQuery = dbQuery.Where("available = ?", *query.Available)
	}
	if len(query.Specialties) > 0 {
		dbQuery = dbQuery.Where("specialties && ?", pq.Array(query.Specialties))
	}
	if len(query.Languages) > 0 {
		dbQuery = dbQuery.Where("languages && ?", pq.Array(query.Languages))
	}
	if query.Location != "" {
		dbQuery = dbQuery.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(query.Location)+"%")
	}
	if query.MinRating != nil {
		dbQuery = dbQuery.Where("rating >= ?", *query.MinRating)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count guides: %w", err)
	}

	sortField, ok := guideSortFields[query.SortBy]
	if !ok {
		sortField = "rating"
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Order("created_at DESC")

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	offset := (query.Page - 1) * query.PageSize
	if query.Page <= 0 {
		offset = 0
	}

	if err := dbQuery.Offset(offset).Limit(query.PageSize).Find(&guides).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list guides: %w", err)
	}
	return guides, pagination, nil
}

// FindGuideByID retrieves a guide account by ID.
func (r *gormRepository) FindGuideByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var guide user.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, common.RoleGuide).
		First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Guide not found.")
		}
		return nil, fmt.Errorf("failed to find guide %s: %w", id, err)
	}
	return &guide, nil
}

// FindMatching retrieves available verified guides whose profile overlaps the
// criteria, best rated first. A guide qualifies when their languages cover the
// preferred language, their specialties cover the tour type, or their
// specialties overlap the special interests.
func (r *gormRepository) FindMatching(ctx context.Context, criteria MatchCriteria) ([]user.User, error) {
	var guides []user.User

	dbQuery := r.db.WithContext(ctx).Model(&user.User{}).
		Where("role = ?", common.RoleGuide).
		Where("is_active = ?", true).
		Where("verification_status = ?", user.VerificationVerified).
		Where("available = ?", true)

	overlap := r.db.Where("1 = 0")
	if criteria.PreferredLanguage != "" {
		overlap = overlap.Or("languages @> ?", pq.Array([]string{criteria.PreferredLanguage}))
	}
	if criteria.TourType != "" {
		overlap = overlap.Or("specialties @> ?", pq.Array([]string{criteria.TourType}))
	}
	if len(criteria.SpecialInterests) > 0 {
		overlap = overlap.Or("specialties && ?", pq.Array(criteria.SpecialInterests))
	}
	dbQuery = dbQuery.Where(overlap)

	err := dbQuery.Order("rating DESC").Order("completed_trips DESC").Find(&guides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match guides: %w", err)
	}
	return guides, nil
}

// SetAvailability updates whether a guide accepts new assignments.
func (r *gormRepository) SetAvailability(ctx context.Context, guideID uuid.UUID, available bool) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ?", guideID, common.RoleGuide).
		Update("available", available)
	if result.Error != nil {
		return fmt.Errorf("failed to update guide availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Guide not found.")
	}
	return nil
}

// ReserveForAssignment atomically claims an available verified guide for an
// assignment. Returns false when the guide was already taken or does not
// qualify, so concurrent assignments cannot double-book a guide.
func (r *gormRepository) ReserveForAssignment(ctx context.Context, guideID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ? AND available = ? AND is_active = ? AND verification_status = ?",
			guideID, common.RoleGuide, true, true, user.VerificationVerified).
		Update("available", false)
	if result.Error != nil {
		return false, fmt.Errorf("failed to reserve guide %s: %w", guideID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReleaseFromAssignment frees a guide after a cancelled assignment.
func (r *gormRepository) ReleaseFromAssignment(ctx context.Context, guideID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ?", guideID, common.RoleGuide).
		Update("available", true)
	if result.Error != nil {
		return fmt.Errorf("failed to release guide %s: %w", guideID, result.Error)
	}
	return nil
}

// CompleteTrip frees the guide and increments their completed trip counter.
func (r *gormRepository) CompleteTrip(ctx context.Context, guideID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ?", guideID, common.RoleGuide).
		Updates(map[string]interface{}{
			"available":       true,
			"completed_trips": gorm.Expr("completed_trips + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record completed trip for guide %s: %w", guideID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Guide not found.")
	}
	return nil
}

// UpdateRating stores a guide's recomputed aggregate rating.
func (r *gormRepository) UpdateRating(ctx context.Context, guideID uuid.UUID, rating float64, totalReviews int) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ?", guideID, common.RoleGuide).
		Updates(map[string]interface{}{
			"rating":        rating,
			"total_reviews": totalReviews,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update rating for guide %s: %w", guideID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Guide not found.")
	}
	return nil
}
