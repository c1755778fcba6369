// File: internal/request/handler.go
package request

import (
	"errors"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for trip request operations.
// All routes require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	requestGroup := router.Group("/requests")
	requestGroup.Use(authMW)
	{
		requestGroup.POST("", middleware.RoleAuthMiddleware(common.RoleTourist), h.createRequest)
		requestGroup.GET("", h.listRequests)
		requestGroup.GET("/:request_id", h.getRequestByID)
		requestGroup.PUT("/:request_id/assign", middleware.RoleAuthMiddleware(common.RoleAdmin), h.assignGuide)
		requestGroup.PUT("/:request_id/status", h.updateStatus)
		requestGroup.PUT("/:request_id/review", middleware.RoleAuthMiddleware(common.RoleTourist), h.submitReview)
	}
}

func (h *Handler) respondBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrors)))
		return
	}
	common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
}

func (h *Handler) createRequest(c *gin.Context) {
	touristID := common.GetUserIDFromContext(c)
	if touristID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	response, err := h.service.CreateRequest(c.Request.Context(), touristID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Trip request submitted successfully.", response)
}

func (h *Handler) listRequests(c *gin.Context) {
	actorID := common.GetUserIDFromContext(c)
	if actorID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}
	actorRole := common.GetUserRoleFromContext(c)

	page, pageSize := common.GetPaginationParams(c)
	query := ListQuery{
		Status:    Status(c.Query("status")),
		TourType:  c.Query("tour_type"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}

	requests, pagination, err := h.service.ListRequests(c.Request.Context(), actorID, actorRole, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Trip requests retrieved successfully.", requests, pagination)
}

func (h *Handler) getRequestByID(c *gin.Context) {
	actorID := common.GetUserIDFromContext(c)
	actorRole := common.GetUserRoleFromContext(c)

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request ID format."))
		return
	}

	response, err := h.service.GetRequestByID(c.Request.Context(), requestID, actorID, actorRole)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Trip request retrieved successfully.", response)
}

func (h *Handler) assignGuide(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request ID format."))
		return
	}

	var req AssignGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	response, err := h.service.AssignGuide(c.Request.Context(), requestID, req.GuideID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Guide assigned successfully.", response)
}

func (h *Handler) updateStatus(c *gin.Context) {
	actorID := common.GetUserIDFromContext(c)
	actorRole := common.GetUserRoleFromContext(c)

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request ID format."))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	response, err := h.service.UpdateStatus(c.Request.Context(), requestID, actorID, actorRole, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Trip request status updated successfully.", response)
}

func (h *Handler) submitReview(c *gin.Context) {
	touristID := common.GetUserIDFromContext(c)

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request ID format."))
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	response, err := h.service.SubmitReview(c.Request.Context(), requestID, touristID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Review submitted successfully.", response)
}
