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

type InitiativeHandler struct {
	authService       service.AuthService
	initiativeService service.InitiativeService
}

func NewInitiativeHandler(authService service.AuthService, initiativeService service.InitiativeService) *InitiativeHandler {
	return &InitiativeHandler{authService: authService, initiativeService: initiativeService}
}

func (h *InitiativeHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/initiatives")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /api/initiatives
// @Summary      Create initiative
// @Tags         initiatives
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInitiativeRequest  true  "Initiative"
// @Success      201      {object}  response.Response{data=service.InitiativeResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/initiatives [post]
func (h *InitiativeHandler) Create(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageInitiatives)
	if !ok {
		return
	}

	var req service.CreateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.initiativeService.Create(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// List handles GET /api/initiatives with category/status filters
// @Summary      List initiatives
// @Tags         initiatives
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        status    query     string  false  "Filter by status"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /api/initiatives [get]
func (h *InitiativeHandler) List(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewInitiatives); !ok {
		return
	}

	params := pagination.Parse(c)
	items, total, err := h.initiativeService.List(c.Request.Context(), c.Query("category"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch initiatives"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"initiatives": items,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// Get handles GET /api/initiatives/:id
// @Summary      Get initiative
// @Tags         initiatives
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Initiative ID"
// @Success      200  {object}  response.Response{data=service.InitiativeResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/initiatives/{id} [get]
func (h *InitiativeHandler) Get(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewInitiatives); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid initiative id"))
		return
	}

	res, err := h.initiativeService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Initiative not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Update handles PUT /api/initiatives/:id
// @Summary      Update initiative
// @Tags         initiatives
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Initiative ID"
// @Param        payload  body      service.UpdateInitiativeRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.InitiativeResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/initiatives/{id} [put]
func (h *InitiativeHandler) Update(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageInitiatives)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid initiative id"))
		return
	}

	var req service.UpdateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.initiativeService.Update(c.Request.Context(), actor, id, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Delete handles DELETE /api/initiatives/:id
// @Summary      Delete initiative
// @Tags         initiatives
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Initiative ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/initiatives/{id} [delete]
func (h *InitiativeHandler) Delete(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageInitiatives)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid initiative id"))
		return
	}

	if err := h.initiativeService.Delete(c.Request.Context(), actor, id, clientMeta(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Initiative deleted successfully"))
}
