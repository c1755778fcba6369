// File: internal/guide/handler.go
package guide

import (
	"strconv"
	"strings"

	"tourguide_backend/internal/common"
	"tourguide_backend/internal/middleware"

	"github.com/gin-gonic/gin"
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

// RegisterRoutes sets up the routes for guide operations. Browsing guides is
// public; availability, stats, and matching require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	guideGroup := router.Group("/guides")
	{
		guideGroup.GET("", h.listGuides)
		guideGroup.GET("/:guide_id", h.getGuideProfile)

		authed := guideGroup.Group("")
		authed.Use(authMW)
		{
			authed.PUT("/:guide_id/availability", h.updateAvailability)
			authed.GET("/:guide_id/stats", h.getStats)
		}

		adminGroup := guideGroup.Group("")
		adminGroup.Use(authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
		{
			adminGroup.GET("/available/:request_id", h.matchGuidesForRequest)
		}
	}
}

func (h *Handler) listGuides(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	query := GuideListQuery{
		Specialties: splitCSV(c.Query("specialties")),
		Languages:   splitCSV(c.Query("languages")),
		Location:    c.Query("location"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        page,
		PageSize:    pageSize,
	}

	if availableStr := c.Query("available"); availableStr != "" {
		available := availableStr == "true"
		query.Available = &available
	}
	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid min_rating value."))
			return
		}
		query.MinRating = &minRating
	}

	guides, pagination, err := h.service.ListGuides(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Guides retrieved successfully.", guides, pagination)
}

func (h *Handler) getGuideProfile(c *gin.Context) {
	guideID, err := uuid.Parse(c.Param("guide_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid guide ID format."))
		return
	}

	profile, err := h.service.GetGuideProfile(c.Request.Context(), guideID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Guide retrieved successfully.", profile)
}

func (h *Handler) updateAvailability(c *gin.Context) {
	guideID, err := uuid.Parse(c.Param("guide_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid guide ID format."))
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload. The 'available' field is required."))
		return
	}

	actorID := common.GetUserIDFromContext(c)
	actorRole := common.GetUserRoleFromContext(c)

	guide, err := h.service.SetAvailability(c.Request.Context(), guideID, actorID, actorRole, *req.Available)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Guide availability updated successfully.", guide)
}

func (h *Handler) getStats(c *gin.Context) {
	guideID, err := uuid.Parse(c.Param("guide_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid guide ID format."))
		return
	}

	actorID := common.GetUserIDFromContext(c)
	actorRole := common.GetUserRoleFromContext(c)

	stats, err := h.service.GetStats(c.Request.Context(), guideID, actorID, actorRole)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Guide statistics retrieved successfully.", stats)
}

func (h *Handler) matchGuidesForRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request ID format."))
		return
	}

	guides, err := h.service.MatchGuidesForRequest(c.Request.Context(), requestID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Matching guides retrieved successfully.", guides)
}

// splitCSV parses a comma-separated query value into trimmed non-empty parts.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
