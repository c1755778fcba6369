// File: internal/destination/repository.go
package destination

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourguide_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for destination data operations.
type Repository interface {
	Create(ctx context.Context, dest *Destination) error
	Update(ctx context.Context, dest *Destination) error
	FindByID(ctx context.Context, id uuid.UUID) (*Destination, error)
	FindBySlug(ctx context.Context, slug string) (*Destination, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Destination, error)
	List(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Destination, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM destination repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

var listSortFields = map[string]string{
	"name":      "name",
	"rating":    "rating",
	"createdAt": "created_at",
	"minDays":   "min_days",
}

func (r *gormRepository) Create(ctx context.Context, dest *Destination) error {
	err := r.db.WithContext(ctx).Create(dest).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A destination with this name already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, dest *Destination) error {
	err := r.db.WithContext(ctx).Save(dest).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A destination with this name already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Destination, error) {
	var dest Destination
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Destination not found.")
		}
		return nil, err
	}
	return &dest, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Destination, error) {
	var dest Destination
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Destination not found.")
		}
		return nil, err
	}
	return &dest, nil
}

// FindByIDs returns the destinations matching the given IDs. Missing IDs are
// simply absent from the result; the caller decides whether that is an error.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Destination, error) {
	var destinations []Destination
	if len(ids) == 0 {
		return destinations, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&destinations).Error
	if err != nil {
		return nil, err
	}
	return destinations, nil
}

// List returns active destinations matching the filters. The Search filter
// here is the database fallback (case-insensitive substring over name and
// description); Elasticsearch-backed search happens in the service.
func (r *gormRepository) List(ctx context.Context, query ListQuery) ([]Destination, *common.Pagination, error) {
	dbQuery := r.db.WithContext(ctx).Model(&Destination{})

	if !query.IncludeInactive {
		dbQuery = dbQuery.Where("is_active = ?", true)
	}
	if query.Category != "" {
		dbQuery = dbQuery.Where("category = ?", query.Category)
	}
	if query.Difficulty != "" {
		dbQuery = dbQuery.Where("difficulty = ?", query.Difficulty)
	}
	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		dbQuery = dbQuery.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	sortColumn, ok := listSortFields[query.SortBy]
	if !ok {
		sortColumn = "name"
	}
	sortOrder := "asc"
	if strings.EqualFold(query.SortOrder, "desc") {
		sortOrder = "desc"
	}

	page := query.Page
	if page <= 0 {
		page = common.DefaultPage
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}

	var destinations []Destination
	err := dbQuery.
		Order(fmt.Sprintf("%s %s", sortColumn, sortOrder)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&destinations).Error
	if err != nil {
		return nil, nil, err
	}

	return destinations, common.NewPagination(total, page, pageSize), nil
}

// DistinctCategories returns the categories that have at least one active
// destination.
func (r *gormRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&Destination{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindAllForSync pages through every destination for bulk reindexing.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Destination, error) {
	var destinations []Destination
	err := r.db.WithContext(ctx).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&destinations).Error
	if err != nil {
		return nil, err
	}
	return destinations, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "unique constraint") ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
