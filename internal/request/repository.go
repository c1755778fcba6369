// File: internal/request/repository.go
package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/guide"
	"tourguide_backend/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for trip request data operations. It also
// backs the enrichment and statistics providers of the notification and guide
// packages.
type Repository interface {
	Create(ctx context.Context, request *TripRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*TripRequest, error)
	Update(ctx context.Context, request *TripRequest) error
	List(ctx context.Context, query ListQuery) ([]TripRequest, *common.Pagination, error)
	AverageRatingForGuide(ctx context.Context, guideID uuid.UUID) (float64, int64, error)

	notification.RequestInfoProvider
	guide.TripStatsProvider
	guide.RequestCriteriaProvider
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM trip request repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new trip request into the database.
func (r *gormRepository) Create(ctx context.Context, request *TripRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create trip request: %w", err)
	}
	return nil
}

// FindByID retrieves a trip request by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*TripRequest, error) {
	var request TripRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Trip request not found.")
		}
		return nil, fmt.Errorf("failed to find trip request %s: %w", id, err)
	}
	return &request, nil
}

// Update persists changes to a trip request.
func (r *gormRepository) Update(ctx context.Context, request *TripRequest) error {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		return fmt.Errorf("failed to update trip request %s: %w", request.ID, err)
	}
	return nil
}

// requestSortFields whitelists sortable columns for trip request listings.
var requestSortFields = map[string]string{
	"createdAt": "created_at",
	"startDate": "start_date",
	"status":    "status",
}

// List retrieves a page of trip requests scoped by tourist, guide, status,
// and tour type.
func (r *gormRepository) List(ctx context.Context, query ListQuery) ([]TripRequest, *common.Pagination, error) {
	var requests []TripRequest
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&TripRequest{})
	if query.TouristID != nil {
		dbQuery = dbQuery.Where("tourist_id = ?", *query.TouristID)
	}
	if query.GuideID != nil {
		dbQuery = dbQuery.Where("assigned_guide_id = ?", *query.GuideID)
	}
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}
	if query.TourType != "" {
		dbQuery = dbQuery.Where("tour_type = ?", query.TourType)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count trip requests: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	offset := (query.Page - 1) * query.PageSize
	if query.Page <= 0 {
		offset = 0
	}

	sortField, ok := requestSortFields[query.SortBy]
	if !ok {
		sortField = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		direction = "ASC"
	}

	err := dbQuery.Order(sortField + " " + direction).
		Offset(offset).
		Limit(query.PageSize).
		Find(&requests).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list trip requests: %w", err)
	}
	return requests, pagination, nil
}

// AverageRatingForGuide returns the mean rating and review count across a
// guide's rated trips.
func (r *gormRepository) AverageRatingForGuide(ctx context.Context, guideID uuid.UUID) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&TripRequest{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(rating) AS count").
		Where("assigned_guide_id = ? AND rating IS NOT NULL", guideID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to average ratings for guide %s: %w", guideID, err)
	}
	return row.Avg, row.Count, nil
}

// RequestInfo resolves trip request summaries for notification enrichment.
func (r *gormRepository) RequestInfo(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]notification.RelatedRequest, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]notification.RelatedRequest{}, nil
	}

	var rows []struct {
		ID        uuid.UUID
		TourType  string
		Status    string
		StartDate time.Time
	}
	err := r.db.WithContext(ctx).Model(&TripRequest{}).
		Select("id, tour_type, status, start_date").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trip request summaries: %w", err)
	}

	info := make(map[uuid.UUID]notification.RelatedRequest, len(rows))
	for _, row := range rows {
		info[row.ID] = notification.RelatedRequest{
			ID:        row.ID,
			TourType:  row.TourType,
			Status:    row.Status,
			StartDate: row.StartDate,
		}
	}
	return info, nil
}

// StatusCountsForGuide counts a guide's trip requests per lifecycle status.
func (r *gormRepository) StatusCountsForGuide(ctx context.Context, guideID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&TripRequest{}).
		Select("status, COUNT(*) AS count").
		Where("assigned_guide_id = ?", guideID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count trips by status for guide %s: %w", guideID, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// MonthlyStatsForGuide aggregates a guide's completed trips and revenue per
// calendar month since the given time.
func (r *gormRepository) MonthlyStatsForGuide(ctx context.Context, guideID uuid.UUID, since time.Time) ([]guide.MonthlyStat, error) {
	var stats []guide.MonthlyStat
	err := r.db.WithContext(ctx).Model(&TripRequest{}).
		Select("CAST(EXTRACT(YEAR FROM completed_at) AS int) AS year, CAST(EXTRACT(MONTH FROM completed_at) AS int) AS month, COUNT(*) AS trips, COALESCE(SUM(total_cost), 0) AS revenue").
		Where("assigned_guide_id = ? AND status = ? AND completed_at >= ?", guideID, StatusCompleted, since).
		Group("1, 2").
		Order("1, 2").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly stats for guide %s: %w", guideID, err)
	}
	return stats, nil
}

// ReviewsForGuide retrieves the most recent reviews left on a guide's
// completed trips, with the reviewing tourist's name.
func (r *gormRepository) ReviewsForGuide(ctx context.Context, guideID uuid.UUID, limit int) ([]guide.TripReview, error) {
	var reviews []guide.TripReview
	err := r.db.WithContext(ctx).Model(&TripRequest{}).
		Select("trip_requests.id AS request_id, users.name AS tourist_name, trip_requests.rating, trip_requests.review, trip_requests.tour_type, trip_requests.completed_at").
		Joins("JOIN users ON users.id = trip_requests.tourist_id").
		Where("trip_requests.assigned_guide_id = ? AND trip_requests.status = ? AND trip_requests.rating IS NOT NULL", guideID, StatusCompleted).
		Order("trip_requests.reviewed_at DESC").
		Limit(limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews for guide %s: %w", guideID, err)
	}
	return reviews, nil
}

// MatchCriteriaForRequest resolves the guide matching criteria of a pending
// trip request.
func (r *gormRepository) MatchCriteriaForRequest(ctx context.Context, requestID uuid.UUID) (*guide.MatchCriteria, error) {
	request, err := r.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != StatusPending {
		return nil, common.ErrConflict.WithDetails("Guides can only be matched for pending trip requests.")
	}
	return &guide.MatchCriteria{
		PreferredLanguage: request.PreferredLanguage,
		TourType:          request.TourType,
		SpecialInterests:  request.SpecialInterests,
	}, nil
}
