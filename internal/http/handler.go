package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"guias-service/internal/http/middleware"
	"guias-service/internal/model"
	"guias-service/internal/service"
)

type Handler struct {
	bootstrapService    *service.BootstrapService
	distributionService *service.DistributionService
	recordService       *service.RecordService
	log                 zerolog.Logger
}

func NewHandler(
	bootstrapService *service.BootstrapService,
	distributionService *service.DistributionService,
	recordService *service.RecordService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		bootstrapService:    bootstrapService,
		distributionService: distributionService,
		recordService:       recordService,
		log:                 log,
	}
}

func (h *Handler) bootstrapWeek(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	report, err := h.bootstrapService.Run(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) listGuides(c *gin.Context) {
	_, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	loads, err := h.distributionService.GuideLoads(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": loads}))
}

func (h *Handler) listRecords(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseRecordQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	views, err := h.recordService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": views}))
}

func (h *Handler) setCallDate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid record id"))
		return
	}

	var req struct {
		CallDate *string `json:"call_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var callDate *time.Time
	if req.CallDate != nil && strings.TrimSpace(*req.CallDate) != "" {
		ts, err := time.Parse(time.RFC3339, *req.CallDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid call_date"))
			return
		}
		callDate = &ts
	}

	if err := h.recordService.SetCallDate(c.Request.Context(), principal, id, callDate); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "updated"}))
}

func (h *Handler) setAction(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid record id"))
		return
	}

	var req struct {
		ActionID string `json:"action_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	actionID, err := uuid.Parse(strings.TrimSpace(req.ActionID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid action_id"))
		return
	}

	if err := h.recordService.SetAction(c.Request.Context(), principal, id, actionID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "updated"}))
}

func (h *Handler) setTier(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid record id"))
		return
	}

	var req struct {
		Tier *string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var tier *model.TrackingTier
	if req.Tier != nil && strings.TrimSpace(*req.Tier) != "" {
		t := model.TrackingTier(strings.ToUpper(strings.TrimSpace(*req.Tier)))
		tier = &t
	}

	if err := h.recordService.SetTierOverride(c.Request.Context(), principal, id, tier); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "updated"}))
}

func (h *Handler) addAnnotation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid record id"))
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.recordService.Annotate(c.Request.Context(), principal, id, req.Text); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(gin.H{"status": "annotated"}))
}

func parseRecordQuery(c *gin.Context) (service.ListRecordsOptions, error) {
	var opts service.ListRecordsOptions

	opts.Week = strings.TrimSpace(c.Query("week"))
	if guideID := strings.TrimSpace(c.Query("guide_id")); guideID != "" {
		id, err := uuid.Parse(guideID)
		if err != nil {
			return opts, err
		}
		opts.GuideID = &id
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := strings.TrimSpace(c.Query("offset")); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}
	opts.Search = strings.TrimSpace(c.Query("search"))

	return opts, nil
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch err {
	case service.ErrPermissionDenied:
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case service.ErrConflict:
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
