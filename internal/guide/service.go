// File: internal/guide/service.go
package guide

import (
	"context"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GuideProfile is a guide's public profile with recent trip reviews.
type GuideProfile struct {
	Guide   user.GuideResponse `json:"guide"`
	Reviews []TripReview       `json:"reviews"`
}

// Service defines the interface for guide-related business logic.
type Service interface {
	ListGuides(ctx context.Context, query GuideListQuery) ([]user.GuideResponse, *common.Pagination, error)
	GetGuideProfile(ctx context.Context, guideID uuid.UUID) (*GuideProfile, error)
	SetAvailability(ctx context.Context, guideID uuid.UUID, actorID uuid.UUID, actorRole string, available bool) (*user.GuideResponse, error)
	GetStats(ctx context.Context, guideID uuid.UUID, actorID uuid.UUID, actorRole string) (*Stats, error)
	MatchGuidesForRequest(ctx context.Context, requestID uuid.UUID) ([]user.GuideResponse, error)
}

// ServiceImplementation implements the guide Service interface.
type ServiceImplementation struct {
	repo      Repository
	tripStats TripStatsProvider
	criteria  RequestCriteriaProvider
	logger    *zap.Logger
}

// NewService creates a new guide service.
func NewService(
	repo Repository,
	tripStats TripStatsProvider,
	criteria RequestCriteriaProvider,
	logger *zap.Logger,
) Service {
	return &ServiceImplementation{
		repo:      repo,
		tripStats: tripStats,
		criteria:  criteria,
		logger:    logger.Named("GuideService"),
	}
}

const profileReviewLimit = 10

// ListGuides retrieves a page of verified guides matching the filters.
func (s *ServiceImplementation) ListGuides(ctx context.Context, query GuideListQuery) ([]user.GuideResponse, *common.Pagination, error) {
	guides, pagination, err := s.repo.ListGuides(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list guides", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve guides.")
	}
	return user.ToGuideResponses(guides), pagination, nil
}

// GetGuideProfile retrieves a guide's public profile together with their most
// recent trip reviews.
func (s *ServiceImplementation) GetGuideProfile(ctx context.Context, guideID uuid.UUID) (*GuideProfile, error) {
	guide, err := s.repo.FindGuideByID(ctx, guideID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.tripStats.ReviewsForGuide(ctx, guideID, profileReviewLimit)
	if err != nil {
		s.logger.Warn("Failed to load reviews for guide profile", zap.String("guideID", guideID.String()), zap.Error(err))
		reviews = []TripReview{}
	}

	return &GuideProfile{Guide: user.ToGuideResponse(guide), Reviews: reviews}, nil
}

// SetAvailability toggles whether a guide accepts new assignments. Only the
// guide themselves or an admin may change it.
func (s *ServiceImplementation) SetAvailability(ctx context.Context, guideID uuid.UUID, actorID uuid.UUID, actorRole string, available bool) (*user.GuideResponse, error) {
	if actorRole != common.RoleAdmin && actorID != guideID {
		return nil, common.ErrForbidden.WithDetails("You may only change your own availability.")
	}

	if err := s.repo.SetAvailability(ctx, guideID, available); err != nil {
		return nil, err
	}

	guide, err := s.repo.FindGuideByID(ctx, guideID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Guide availability updated",
		zap.String("guideID", guideID.String()),
		zap.Bool("available", available))
	response := user.ToGuideResponse(guide)
	return &response, nil
}

// GetStats returns a guide's trip counts per status and their monthly
// completed trip activity over the last twelve months. Restricted to the
// guide themselves or an admin.
func (s *ServiceImplementation) GetStats(ctx context.Context, guideID uuid.UUID, actorID uuid.UUID, actorRole string) (*Stats, error) {
	if actorRole != common.RoleAdmin && actorID != guideID {
		return nil, common.ErrForbidden.WithDetails("You may only view your own statistics.")
	}

	if _, err := s.repo.FindGuideByID(ctx, guideID); err != nil {
		return nil, err
	}

	counts, err := s.tripStats.StatusCountsForGuide(ctx, guideID)
	if err != nil {
		s.logger.Error("Failed to aggregate guide status counts", zap.String("guideID", guideID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve guide statistics.")
	}

	since := time.Now().AddDate(0, -12, 0)
	monthly, err := s.tripStats.MonthlyStatsForGuide(ctx, guideID, since)
	if err != nil {
		s.logger.Error("Failed to aggregate guide monthly stats", zap.String("guideID", guideID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve guide statistics.")
	}

	return &Stats{StatusCounts: counts, Monthly: monthly}, nil
}

// MatchGuidesForRequest finds available verified guides suited to a pending
// trip request, best rated first.
func (s *ServiceImplementation) MatchGuidesForRequest(ctx context.Context, requestID uuid.UUID) ([]user.GuideResponse, error) {
	criteria, err := s.criteria.MatchCriteriaForRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	guides, err := s.repo.FindMatching(ctx, *criteria)
	if err != nil {
		s.logger.Error("Failed to match guides for request", zap.String("requestID", requestID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not match guides for this request.")
	}
	return user.ToGuideResponses(guides), nil
}
