package handler

import (
	"net/http"

	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BehaviorHandler struct {
	authService     service.AuthService
	behaviorService service.BehaviorService
}

func NewBehaviorHandler(authService service.AuthService, behaviorService service.BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{authService: authService, behaviorService: behaviorService}
}

func (h *BehaviorHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/behavior-records")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
	}
}

// Create handles POST /api/behavior-records
// @Summary      Record trainee behavior
// @Tags         behavior
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBehaviorRecordRequest  true  "Behavior Record"
// @Success      201      {object}  response.Response{data=service.BehaviorRecordResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/behavior-records [post]
func (h *BehaviorHandler) Create(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageTraineeBehavior)
	if !ok {
		return
	}

	var req service.CreateBehaviorRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.behaviorService.Create(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// List handles GET /api/behavior-records filtered by trainee
// @Summary      List behavior records
// @Tags         behavior
// @Produce      json
// @Security     BearerAuth
// @Param        trainee_id  query     string  false  "Filter by trainee"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Router       /api/behavior-records [get]
func (h *BehaviorHandler) List(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewTraineeBehavior); !ok {
		return
	}

	params := pagination.Parse(c)
	records, total, err := h.behaviorService.List(c.Request.Context(), c.Query("trainee_id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch behavior records"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}
