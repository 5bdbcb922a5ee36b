package handler

import (
	"net/http"

	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QualityHandler struct {
	authService    service.AuthService
	qualityService service.QualityService
}

func NewQualityHandler(authService service.AuthService, qualityService service.QualityService) *QualityHandler {
	return &QualityHandler{authService: authService, qualityService: qualityService}
}

func (h *QualityHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/quality")
	{
		group.POST("/standards", h.CreateStandard)
		group.GET("/standards", h.ListStandards)
		group.POST("/standards/:id/indicators", h.AddIndicator)
		group.POST("/measurements", h.RecordMeasurement)
		group.POST("/measurements/:id/verify", h.VerifyMeasurement)
		group.GET("/indicators/:id/measurements", h.ListMeasurements)
	}
}

// CreateStandard handles POST /api/quality/standards
// @Summary      Create quality standard
// @Tags         quality
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQualityStandardRequest  true  "Standard"
// @Success      201      {object}  response.Response{data=model.QualityStandard}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/quality/standards [post]
func (h *QualityHandler) CreateStandard(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageQuality)
	if !ok {
		return
	}

	var req service.CreateQualityStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	standard, err := h.qualityService.CreateStandard(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, standard))
}

// ListStandards handles GET /api/quality/standards
// @Summary      List quality standards
// @Tags         quality
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/quality/standards [get]
func (h *QualityHandler) ListStandards(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewQuality); !ok {
		return
	}

	params := pagination.Parse(c)
	standards, total, err := h.qualityService.ListStandards(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch quality standards"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"standards": standards,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// AddIndicator handles POST /api/quality/standards/:id/indicators
// @Summary      Add quality indicator
// @Tags         quality
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                 true  "Standard ID"
// @Param        payload  body      service.CreateQualityIndicatorRequest  true  "Indicator"
// @Success      201      {object}  response.Response{data=model.QualityIndicator}
// @Failure      400      {object}  response.Response
// @Router       /api/quality/standards/{id}/indicators [post]
func (h *QualityHandler) AddIndicator(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageQuality)
	if !ok {
		return
	}

	standardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid standard id"))
		return
	}

	var req service.CreateQualityIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	indicator, err := h.qualityService.AddIndicator(c.Request.Context(), actor, standardID, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, indicator))
}

// RecordMeasurement handles POST /api/quality/measurements
// @Summary      Record measurement
// @Tags         quality
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RecordMeasurementRequest  true  "Measurement"
// @Success      201      {object}  response.Response{data=model.QualityMeasurement}
// @Failure      400      {object}  response.Response
// @Router       /api/quality/measurements [post]
func (h *QualityHandler) RecordMeasurement(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageQuality)
	if !ok {
		return
	}

	var req service.RecordMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	measurement, err := h.qualityService.RecordMeasurement(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, measurement))
}

// VerifyMeasurement handles POST /api/quality/measurements/:id/verify
// @Summary      Verify measurement
// @Tags         quality
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Measurement ID"
// @Success      200  {object}  response.Response{data=model.QualityMeasurement}
// @Failure      400  {object}  response.Response
// @Router       /api/quality/measurements/{id}/verify [post]
func (h *QualityHandler) VerifyMeasurement(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageQuality)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid measurement id"))
		return
	}

	measurement, err := h.qualityService.VerifyMeasurement(c.Request.Context(), actor, id, clientMeta(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, measurement))
}

// ListMeasurements handles GET /api/quality/indicators/:id/measurements
// @Summary      List measurements for an indicator
// @Tags         quality
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Indicator ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/quality/indicators/{id}/measurements [get]
func (h *QualityHandler) ListMeasurements(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewQuality); !ok {
		return
	}

	indicatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid indicator id"))
		return
	}

	params := pagination.Parse(c)
	measurements, total, err := h.qualityService.ListMeasurements(c.Request.Context(), indicatorID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch measurements"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"measurements": measurements,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}
