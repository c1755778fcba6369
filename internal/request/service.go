// File: internal/request/service.go
package request

import (
	"context"
	"fmt"
	"math"
	"time"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/destination"
	"tourguide_backend/internal/guide"
	"tourguide_backend/internal/notification"
	"tourguide_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for trip request business logic.
type Service interface {
	CreateRequest(ctx context.Context, touristID uuid.UUID, req CreateRequestRequest) (*RequestResponse, error)
	ListRequests(ctx context.Context, actorID uuid.UUID, actorRole string, query ListQuery) ([]RequestResponse, *common.Pagination, error)
	GetRequestByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole string) (*RequestResponse, error)
	AssignGuide(ctx context.Context, requestID uuid.UUID, guideID uuid.UUID) (*RequestResponse, error)
	UpdateStatus(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID, actorRole string, newStatus Status) (*RequestResponse, error)
	SubmitReview(ctx context.Context, requestID uuid.UUID, touristID uuid.UUID, req SubmitReviewRequest) (*RequestResponse, error)
}

// ServiceImplementation implements the trip request Service interface.
type ServiceImplementation struct {
	repo                Repository
	guideRepo           guide.Repository
	destinationRepo     destination.Repository
	userRepo            user.Repository
	notificationService notification.Service
	logger              *zap.Logger
}

// NewService creates a new trip request service.
func NewService(
	repo Repository,
	guideRepo guide.Repository,
	destinationRepo destination.Repository,
	userRepo user.Repository,
	notificationService notification.Service,
	logger *zap.Logger,
) Service {
	return &ServiceImplementation{
		repo:                repo,
		guideRepo:           guideRepo,
		destinationRepo:     destinationRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		logger:              logger.Named("RequestService"),
	}
}

// CreateRequest handles the business logic for submitting a trip request.
// Destination names are snapshotted onto the request, the end date is derived
// from the duration label, and active admins are notified.
func (s *ServiceImplementation) CreateRequest(ctx context.Context, touristID uuid.UUID, req CreateRequestRequest) (*RequestResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid start date format. Use YYYY-MM-DD.")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if startDate.Before(today) {
		return nil, common.ErrBadRequest.WithDetails("Start date cannot be in the past.")
	}

	destinationIDs := make([]uuid.UUID, 0, len(req.DestinationIDs))
	for _, idStr := range req.DestinationIDs {
		id, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			return nil, common.ErrBadRequest.WithDetails("Invalid destination ID: " + idStr)
		}
		destinationIDs = append(destinationIDs, id)
	}

	tourist, err := s.userRepo.FindByID(ctx, touristID)
	if err != nil {
		s.logger.Error("Failed to load tourist for trip request", zap.Error(err), zap.String("touristID", touristID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create trip request.")
	}

	destinations, err := s.destinationRepo.FindByIDs(ctx, destinationIDs)
	if err != nil {
		s.logger.Error("Failed to load destinations for trip request", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not verify destinations.")
	}
	byID := make(map[uuid.UUID]destination.Destination, len(destinations))
	for _, d := range destinations {
		byID[d.ID] = d
	}

	names := make([]string, 0, len(destinationIDs))
	ids := make([]string, 0, len(destinationIDs))
	for _, id := range destinationIDs {
		d, ok := byID[id]
		if !ok || !d.IsActive {
			return nil, common.ErrBadRequest.WithDetails("One or more destinations do not exist or are no longer available.")
		}
		ids = append(ids, id.String())
		names = append(names, d.Name)
	}

	// Tourist name and email are snapshotted alongside the destination names
	// so the request reads the same even after the account changes.
	newRequest := &TripRequest{
		TouristID:              touristID,
		TouristName:            tourist.Name,
		TouristEmail:           tourist.Email,
		DestinationIDs:         ids,
		DestinationNames:       names,
		TourType:               req.TourType,
		PreferredLanguage:      req.PreferredLanguage,
		SpecialInterests:       req.SpecialInterests,
		SpecialRequests:        req.SpecialRequests,
		Budget:                 req.Budget,
		FitnessLevel:           req.FitnessLevel,
		EmergencyContact:       req.EmergencyContact,
		AdditionalRequirements: req.AdditionalRequirements,
		StartDate:              startDate,
		EndDate:                startDate.AddDate(0, 0, DurationToDays(req.Duration)),
		Duration:               req.Duration,
		GroupSize:              req.GroupSize,
		PaymentStatus:          PaymentPending,
		Status:                 StatusPending,
	}
	if req.TotalCost != nil {
		newRequest.TotalCost = *req.TotalCost
	}

	if err := s.repo.Create(ctx, newRequest); err != nil {
		s.logger.Error("Failed to create trip request", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create trip request.")
	}

	s.logger.Info("Trip request created",
		zap.String("requestID", newRequest.ID.String()),
		zap.String("touristID", touristID.String()))

	s.notifyAdminsOfNewRequest(ctx, newRequest)

	return s.toResponse(ctx, newRequest, true), nil
}

// ListRequests retrieves trip requests scoped by role. Tourists see their own
// requests, guides see their assignments, and admins see everything.
func (s *ServiceImplementation) ListRequests(ctx context.Context, actorID uuid.UUID, actorRole string, query ListQuery) ([]RequestResponse, *common.Pagination, error) {
	query.TouristID = nil
	query.GuideID = nil
	switch actorRole {
	case common.RoleAdmin:
		// No scoping.
	case common.RoleGuide:
		query.GuideID = &actorID
	default:
		query.TouristID = &actorID
	}

	requests, pagination, err := s.repo.List(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list trip requests", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve trip requests.")
	}

	includeTourist := actorRole != common.RoleTourist
	responses := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, *s.toResponse(ctx, &requests[i], includeTourist))
	}
	return responses, pagination, nil
}

// GetRequestByID retrieves a single trip request, restricted to the owning
// tourist, the assigned guide, or an admin.
func (s *ServiceImplementation) GetRequestByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole string) (*RequestResponse, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canView(request, actorID, actorRole) {
		s.logger.Warn("Attempt to view trip request without access",
			zap.String("requestID", id.String()),
			zap.String("actorID", actorID.String()))
		return nil, common.ErrForbidden.WithDetails("You do not have access to this trip request.")
	}

	includeTourist := actorRole != common.RoleTourist
	return s.toResponse(ctx, request, includeTourist), nil
}

// AssignGuide assigns a verified available guide to a pending trip request.
// The guide's availability flag is claimed atomically so two concurrent
// assignments cannot book the same guide.
func (s *ServiceImplementation) AssignGuide(ctx context.Context, requestID uuid.UUID, guideID uuid.UUID) (*RequestResponse, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != StatusPending {
		return nil, common.ErrConflict.WithDetails("Only pending trip requests can be assigned a guide.")
	}

	assignedGuide, err := s.guideRepo.FindGuideByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if !assignedGuide.IsVerifiedGuide() {
		return nil, common.ErrBadRequest.WithDetails("Guide is not verified or not active.")
	}

	reserved, err := s.guideRepo.ReserveForAssignment(ctx, guideID)
	if err != nil {
		s.logger.Error("Failed to reserve guide for assignment", zap.String("guideID", guideID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not assign guide.")
	}
	if !reserved {
		return nil, common.ErrConflict.WithDetails("Guide is no longer available for assignment.")
	}

	now := time.Now()
	request.Status = StatusAssigned
	request.AssignedGuideID = &guideID
	request.AssignedAt = &now

	if err := s.repo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to persist guide assignment", zap.String("requestID", requestID.String()), zap.Error(err))
		// Free the guide again so the failed assignment does not block them.
		if releaseErr := s.guideRepo.ReleaseFromAssignment(ctx, guideID); releaseErr != nil {
			s.logger.Error("Failed to release guide after assignment failure", zap.String("guideID", guideID.String()), zap.Error(releaseErr))
		}
		return nil, common.ErrInternalServer.WithDetails("Could not assign guide.")
	}

	s.logger.Info("Guide assigned to trip request",
		zap.String("requestID", requestID.String()),
		zap.String("guideID", guideID.String()))

	s.notify(ctx, notification.CreateParams{
		RecipientID:      guideID,
		Type:             notification.TypeAssignment,
		Title:            "New trip assignment",
		Message:          fmt.Sprintf("You have been assigned a %s trip starting %s.", request.TourType, request.StartDate.Format("January 2, 2006")),
		RelatedRequestID: &request.ID,
		RelatedUserID:    &request.TouristID,
		Priority:         notification.PriorityHigh,
	})
	s.notify(ctx, notification.CreateParams{
		RecipientID:      request.TouristID,
		Type:             notification.TypeStatusUpdate,
		Title:            "Guide assigned to your trip",
		Message:          fmt.Sprintf("%s has been assigned as your guide for the trip starting %s.", assignedGuide.Name, request.StartDate.Format("January 2, 2006")),
		RelatedRequestID: &request.ID,
		RelatedUserID:    &guideID,
	})

	return s.toResponse(ctx, request, true), nil
}

// UpdateStatus moves a trip request through its lifecycle, enforcing valid
// transitions and role permissions. Completing a trip frees the guide and
// increments their trip counter; cancelling frees the guide if one was
// assigned.
func (s *ServiceImplementation) UpdateStatus(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID, actorRole string, newStatus Status) (*RequestResponse, error) {
	if newStatus == StatusAssigned {
		return nil, common.ErrBadRequest.WithDetails("Guides are assigned through the assignment operation, not a status update.")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !request.Status.CanTransitionTo(newStatus) {
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("A %s trip request cannot move to %s.", request.Status, newStatus))
	}
	if err := s.checkStatusPermission(request, actorID, actorRole, newStatus); err != nil {
		return nil, err
	}

	now := time.Now()
	request.Status = newStatus
	switch newStatus {
	case StatusCompleted:
		request.CompletedAt = &now
	case StatusCancelled:
		request.CancelledAt = &now
	}

	if err := s.repo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to update trip request status", zap.String("requestID", requestID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not update trip request status.")
	}

	if request.AssignedGuideID != nil {
		switch newStatus {
		case StatusCompleted:
			if err := s.guideRepo.CompleteTrip(ctx, *request.AssignedGuideID); err != nil {
				s.logger.Error("Failed to record completed trip for guide",
					zap.String("guideID", request.AssignedGuideID.String()), zap.Error(err))
			}
		case StatusCancelled:
			if err := s.guideRepo.ReleaseFromAssignment(ctx, *request.AssignedGuideID); err != nil {
				s.logger.Error("Failed to release guide after cancellation",
					zap.String("guideID", request.AssignedGuideID.String()), zap.Error(err))
			}
		}
	}

	s.logger.Info("Trip request status updated",
		zap.String("requestID", requestID.String()),
		zap.String("newStatus", string(newStatus)),
		zap.String("actorID", actorID.String()))

	s.notifyStatusChange(ctx, request, actorID, newStatus)

	return s.toResponse(ctx, request, actorRole != common.RoleTourist), nil
}

// SubmitReview records the tourist's one-time review of a completed trip and
// recomputes the guide's aggregate rating.
func (s *ServiceImplementation) SubmitReview(ctx context.Context, requestID uuid.UUID, touristID uuid.UUID, req SubmitReviewRequest) (*RequestResponse, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TouristID != touristID {
		return nil, common.ErrForbidden.WithDetails("Only the requesting tourist can review this trip.")
	}
	if request.Status != StatusCompleted {
		return nil, common.ErrConflict.WithDetails("Only completed trips can be reviewed.")
	}
	if request.Rating != nil {
		return nil, common.ErrConflict.WithDetails("This trip has already been reviewed.")
	}

	now := time.Now()
	request.Rating = &req.Rating
	request.Review = req.Review
	request.ReviewedAt = &now

	if err := s.repo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to persist trip review", zap.String("requestID", requestID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not submit review.")
	}

	if request.AssignedGuideID != nil {
		s.recomputeGuideRating(ctx, *request.AssignedGuideID)
		s.notify(ctx, notification.CreateParams{
			RecipientID:      *request.AssignedGuideID,
			Type:             notification.TypeMessage,
			Title:            "New review received",
			Message:          fmt.Sprintf("A tourist rated your %s trip %d out of 5.", request.TourType, req.Rating),
			RelatedRequestID: &request.ID,
			RelatedUserID:    &request.TouristID,
		})
	}

	s.logger.Info("Trip review submitted",
		zap.String("requestID", requestID.String()),
		zap.Int("rating", req.Rating))

	return s.toResponse(ctx, request, false), nil
}

func (s *ServiceImplementation) canView(request *TripRequest, actorID uuid.UUID, actorRole string) bool {
	if actorRole == common.RoleAdmin {
		return true
	}
	if request.TouristID == actorID {
		return true
	}
	return request.AssignedGuideID != nil && *request.AssignedGuideID == actorID
}

func (s *ServiceImplementation) checkStatusPermission(request *TripRequest, actorID uuid.UUID, actorRole string, newStatus Status) error {
	switch actorRole {
	case common.RoleAdmin:
		return nil
	case common.RoleGuide:
		if request.AssignedGuideID == nil || *request.AssignedGuideID != actorID {
			return common.ErrForbidden.WithDetails("You are not assigned to this trip request.")
		}
		if newStatus != StatusInProgress && newStatus != StatusCompleted && newStatus != StatusCancelled {
			return common.ErrForbidden.WithDetails("Guides may only start, complete, or cancel their assigned trips.")
		}
		return nil
	default:
		if request.TouristID != actorID {
			return common.ErrForbidden.WithDetails("You do not have access to this trip request.")
		}
		if newStatus != StatusCancelled {
			return common.ErrForbidden.WithDetails("Tourists may only cancel their trip requests.")
		}
		return nil
	}
}

// recomputeGuideRating stores the mean of all ratings on the guide's trips,
// rounded to one decimal place. Failures are logged but do not undo the
// review itself.
func (s *ServiceImplementation) recomputeGuideRating(ctx context.Context, guideID uuid.UUID) {
	avg, count, err := s.repo.AverageRatingForGuide(ctx, guideID)
	if err != nil {
		s.logger.Error("Failed to average guide ratings", zap.String("guideID", guideID.String()), zap.Error(err))
		return
	}
	rounded := math.Round(avg*10) / 10
	if err := s.guideRepo.UpdateRating(ctx, guideID, rounded, int(count)); err != nil {
		s.logger.Error("Failed to store recomputed guide rating", zap.String("guideID", guideID.String()), zap.Error(err))
	}
}

func (s *ServiceImplementation) notifyAdminsOfNewRequest(ctx context.Context, request *TripRequest) {
	admins, err := s.userRepo.FindActiveAdmins(ctx)
	if err != nil {
		s.logger.Error("Failed to load admins for new request notification", zap.Error(err))
		return
	}
	for i := range admins {
		s.notify(ctx, notification.CreateParams{
			RecipientID:      admins[i].ID,
			Type:             notification.TypeSystem,
			Title:            "New trip request",
			Message:          fmt.Sprintf("A new %s trip request is waiting for a guide assignment.", request.TourType),
			RelatedRequestID: &request.ID,
			RelatedUserID:    &request.TouristID,
			Priority:         notification.PriorityHigh,
		})
	}
}

func (s *ServiceImplementation) notifyStatusChange(ctx context.Context, request *TripRequest, actorID uuid.UUID, newStatus Status) {
	message := fmt.Sprintf("Your trip starting %s is now %s.", request.StartDate.Format("January 2, 2006"), newStatus)

	// Notify whichever party did not perform the change.
	if request.TouristID != actorID {
		s.notify(ctx, notification.CreateParams{
			RecipientID:      request.TouristID,
			Type:             notification.TypeStatusUpdate,
			Title:            "Trip status updated",
			Message:          message,
			RelatedRequestID: &request.ID,
		})
	}
	if request.AssignedGuideID != nil && *request.AssignedGuideID != actorID {
		s.notify(ctx, notification.CreateParams{
			RecipientID:      *request.AssignedGuideID,
			Type:             notification.TypeStatusUpdate,
			Title:            "Trip status updated",
			Message:          fmt.Sprintf("The trip starting %s is now %s.", request.StartDate.Format("January 2, 2006"), newStatus),
			RelatedRequestID: &request.ID,
		})
	}
}

// notify sends a notification without failing the surrounding operation.
func (s *ServiceImplementation) notify(ctx context.Context, params notification.CreateParams) {
	if s.notificationService == nil {
		return
	}
	if _, err := s.notificationService.CreateNotification(ctx, params); err != nil {
		s.logger.Error("Failed to send notification",
			zap.String("recipientID", params.RecipientID.String()),
			zap.String("type", string(params.Type)),
			zap.Error(err))
	}
}

// toResponse builds the API view, attaching the assigned guide summary and,
// for staff views, the tourist summary.
func (s *ServiceImplementation) toResponse(ctx context.Context, request *TripRequest, includeTourist bool) *RequestResponse {
	response := ToRequestResponse(request)

	if request.AssignedGuideID != nil {
		if g, err := s.guideRepo.FindGuideByID(ctx, *request.AssignedGuideID); err == nil {
			response.AssignedGuide = &GuideSummary{
				ID:           g.ID,
				Name:         g.Name,
				ProfileImage: g.ProfileImage,
				Rating:       g.Rating,
				Languages:    g.Languages,
			}
		} else {
			s.logger.Warn("Failed to load assigned guide for response",
				zap.String("guideID", request.AssignedGuideID.String()), zap.Error(err))
		}
	}

	if includeTourist {
		if t, err := s.userRepo.FindByID(ctx, request.TouristID); err == nil {
			response.Tourist = &TouristSummary{
				ID:           t.ID,
				Name:         t.Name,
				Country:      t.Country,
				ProfileImage: t.ProfileImage,
			}
		} else {
			s.logger.Warn("Failed to load tourist for response",
				zap.String("touristID", request.TouristID.String()), zap.Error(err))
		}
	}

	return &response
}
