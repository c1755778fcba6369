// File: internal/destination/service.go
package destination

import (
	"context"

	"tourguide_backend/internal/common"
	platformES "tourguide_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for destination business logic.
type Service interface {
	List(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error)
	GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*Destination, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, req CreateDestinationRequest) (*Destination, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateDestinationRequest) (*Destination, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceImplementation implements the destination Service interface.
type ServiceImplementation struct {
	repo   Repository
	es     *platformES.ESClientWrapper
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new destination service.
func NewService(repo Repository, es *platformES.ESClientWrapper, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, es: es, logger: logger}
}

// List returns destinations matching the query. Full-text search goes
// through Elasticsearch when configured and falls back to a database
// substring match otherwise.
func (s *ServiceImplementation) List(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error) {
	if query.Search != "" && s.es.Enabled() {
		return s.listViaSearch(ctx, query)
	}
	return s.repo.List(ctx, query)
}

// listViaSearch ranks by Elasticsearch relevance, then hydrates and filters
// from the database. The catalog is small enough to paginate in memory.
func (s *ServiceImplementation) listViaSearch(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error) {
	ids, err := searchIDs(ctx, s.es, query.Search, 500)
	if err != nil {
		s.logger.Warn("Elasticsearch search failed, falling back to database", zap.Error(err))
		return s.repo.List(ctx, query)
	}

	destinations, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*Destination, len(destinations))
	for i := range destinations {
		byID[destinations[i].ID] = &destinations[i]
	}

	filtered := make([]Destination, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			continue
		}
		if !d.IsActive && !query.IncludeInactive {
			continue
		}
		if query.Category != "" && d.Category != query.Category {
			continue
		}
		if query.Difficulty != "" && d.Difficulty != query.Difficulty {
			continue
		}
		filtered = append(filtered, *d)
	}

	page := query.Page
	if page <= 0 {
		page = common.DefaultPage
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}

	total := int64(len(filtered))
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], common.NewPagination(total, page, pageSize), nil
}

// GetByID returns a destination. Inactive destinations are hidden unless the
// caller is allowed to see them.
func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*Destination, error) {
	dest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dest.IsActive && !includeInactive {
		return nil, common.ErrNotFound.WithDetails("Destination not found.")
	}
	return dest, nil
}

// Categories returns the distinct categories of active destinations.
func (s *ServiceImplementation) Categories(ctx context.Context) ([]string, error) {
	return s.repo.DistinctCategories(ctx)
}

// Create adds a destination to the catalog and indexes it for search.
func (s *ServiceImplementation) Create(ctx context.Context, req CreateDestinationRequest) (*Destination, error) {
	dest := &Destination{
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Location:     req.Location,
		Altitude:     req.Altitude,
		BestSeason:   req.BestSeason,
		MinDays:      req.MinDays,
		MaxDays:      req.MaxDays,
		Highlights:   req.Highlights,
		Requirements: req.Requirements,
		IsActive:     true,
	}
	if dest.Difficulty == "" {
		dest.Difficulty = "moderate"
	}
	if dest.MinDays <= 0 {
		dest.MinDays = 1
	}
	if dest.MaxDays < dest.MinDays {
		dest.MaxDays = dest.MinDays
	}

	if err := s.repo.Create(ctx, dest); err != nil {
		return nil, err
	}

	if err := indexDocument(ctx, s.es, dest, s.logger); err != nil {
		// Search index lag is tolerable, the row is the source of truth.
		s.logger.Error("Failed to index new destination", zap.Error(err), zap.String("destinationID", dest.ID.String()))
	}

	s.logger.Info("Destination created", zap.String("destinationID", dest.ID.String()), zap.String("slug", dest.Slug))
	return dest, nil
}

// Update applies a partial update and reindexes the document.
func (s *ServiceImplementation) Update(ctx context.Context, id uuid.UUID, req UpdateDestinationRequest) (*Destination, error) {
	dest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != dest.Name {
		dest.Name = *req.Name
		dest.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		dest.Description = *req.Description
	}
	if req.Image != nil {
		dest.Image = req.Image
	}
	if req.Category != nil {
		dest.Category = *req.Category
	}
	if req.Difficulty != nil {
		dest.Difficulty = *req.Difficulty
	}
	if req.Location != nil {
		dest.Location = req.Location
	}
	if req.Altitude != nil {
		dest.Altitude = req.Altitude
	}
	if req.BestSeason != nil {
		dest.BestSeason = req.BestSeason
	}
	if req.MinDays != nil {
		dest.MinDays = *req.MinDays
	}
	if req.MaxDays != nil {
		dest.MaxDays = *req.MaxDays
	}
	if dest.MaxDays < dest.MinDays {
		dest.MaxDays = dest.MinDays
	}
	if req.Highlights != nil {
		dest.Highlights = req.Highlights
	}
	if req.Requirements != nil {
		dest.Requirements = req.Requirements
	}
	if req.IsActive != nil {
		dest.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, dest); err != nil {
		return nil, err
	}

	if dest.IsActive {
		if err := indexDocument(ctx, s.es, dest, s.logger); err != nil {
			s.logger.Error("Failed to reindex destination", zap.Error(err), zap.String("destinationID", dest.ID.String()))
		}
	} else {
		if err := deleteDocument(ctx, s.es, dest.ID, s.logger); err != nil {
			s.logger.Error("Failed to remove deactivated destination from index", zap.Error(err), zap.String("destinationID", dest.ID.String()))
		}
	}

	return dest, nil
}

// Delete deactivates a destination. The row stays so existing requests keep
// their snapshots resolvable.
func (s *ServiceImplementation) Delete(ctx context.Context, id uuid.UUID) error {
	dest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !dest.IsActive {
		return nil
	}

	dest.IsActive = false
	if err := s.repo.Update(ctx, dest); err != nil {
		return err
	}

	if err := deleteDocument(ctx, s.es, dest.ID, s.logger); err != nil {
		s.logger.Error("Failed to remove destination from index", zap.Error(err), zap.String("destinationID", dest.ID.String()))
	}

	s.logger.Info("Destination deactivated", zap.String("destinationID", dest.ID.String()))
	return nil
}
