// File: internal/destination/handler.go
package destination

import (
	"errors"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for destination handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new destination handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for destination operations.
// Reads are public but accept an optional token so admins can see
// inactive destinations; writes require an authenticated admin.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	destGroup := router.Group("/destinations")
	{
		destGroup.GET("", h.list)
		destGroup.GET("/categories", h.categories)
		destGroup.GET("/:id", optionalAuthMW, h.getByID)

		adminGroup := destGroup.Group("")
		adminGroup.Use(authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
		{
			adminGroup.POST("", h.create)
			adminGroup.PUT("/:id", h.update)
			adminGroup.DELETE("/:id", h.delete)
		}
	}
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	query := ListQuery{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		SortBy:     c.DefaultQuery("sortBy", "name"),
		SortOrder:  c.DefaultQuery("sortOrder", "asc"),
		Page:       page,
		PageSize:   pageSize,
	}

	destinations, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Destinations retrieved successfully.", ToDestinationResponses(destinations), pagination)
}

func (h *Handler) categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Categories retrieved successfully.", categories)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid destination ID format."))
		return
	}

	includeInactive := middleware.GetUserRoleFromContext(c) == common.RoleAdmin
	dest, err := h.service.GetByID(c.Request.Context(), id, includeInactive)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Destination retrieved successfully.", ToDestinationResponse(dest))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create destination: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	dest, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Destination created successfully.", ToDestinationResponse(dest))
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid destination ID format."))
		return
	}

	var req UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update destination: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	dest, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Destination updated successfully.", ToDestinationResponse(dest))
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid destination ID format."))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Destination deactivated successfully.", nil)
}
