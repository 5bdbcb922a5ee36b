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

type SurveyHandler struct {
	authService   service.AuthService
	surveyService service.SurveyService
}

func NewSurveyHandler(authService service.AuthService, surveyService service.SurveyService) *SurveyHandler {
	return &SurveyHandler{authService: authService, surveyService: surveyService}
}

func (h *SurveyHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/surveys")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("/:id/responses", h.SubmitResponse)
	}
}

// Create handles POST /api/surveys
// @Summary      Create survey
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSurveyRequest  true  "Survey with questions"
// @Success      201      {object}  response.Response{data=model.Survey}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/surveys [post]
func (h *SurveyHandler) Create(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageSurveys)
	if !ok {
		return
	}

	var req service.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, survey))
}

// List handles GET /api/surveys
// @Summary      List surveys
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/surveys [get]
func (h *SurveyHandler) List(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewSurveys); !ok {
		return
	}

	params := pagination.Parse(c)
	surveys, total, err := h.surveyService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch surveys"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"surveys": surveys,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// Get handles GET /api/surveys/:id
// @Summary      Get survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Survey ID"
// @Success      200  {object}  response.Response{data=model.Survey}
// @Failure      404  {object}  response.Response
// @Router       /api/surveys/{id} [get]
func (h *SurveyHandler) Get(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewSurveys); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid survey id"))
		return
	}

	survey, err := h.surveyService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Survey not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, survey))
}

// SubmitResponse handles POST /api/surveys/:id/responses. Any signed-in user
// may answer an active survey.
// @Summary      Submit survey response
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Survey ID"
// @Param        payload  body      service.SubmitResponseRequest  true  "Answers"
// @Success      201      {object}  response.Response{data=model.SurveyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/surveys/{id}/responses [post]
func (h *SurveyHandler) SubmitResponse(c *gin.Context) {
	actor, ok := authenticateRequest(c, h.authService)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid survey id"))
		return
	}

	var req service.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.surveyService.SubmitResponse(c.Request.Context(), actor, id, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}
