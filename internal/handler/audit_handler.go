package handler

import (
	"net/http"
	"time"

	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	authService  service.AuthService
	auditService service.AuditService
}

func NewAuditHandler(authService service.AuthService, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{authService: authService, auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", h.List)
}

// List handles GET /api/audit-logs with optional filters
// @Summary      List audit logs
// @Description  Returns audit entries newest first, filtered by user, action, resource or time window
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query     string  false  "Filter by acting user ID"
// @Param        action    query     string  false  "Filter by action, e.g. LOGIN_FAILED"
// @Param        resource  query     string  false  "Filter by resource type"
// @Param        from      query     string  false  "RFC3339 lower bound"
// @Param        to        query     string  false  "RFC3339 upper bound"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      403       {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewReports); !ok {
		return
	}

	params := pagination.Parse(c)
	q := service.AuditQuery{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Page:     params.Page,
		Limit:    params.Limit,
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.From = &t
		} else {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "'from' must be RFC3339"))
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.To = &t
		} else {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "'to' must be RFC3339"))
			return
		}
	}

	logs, total, err := h.auditService.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch audit logs"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
