package handler

import (
	"errors"
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// bearerToken extracts the caller's token: cookie first, then the
// Authorization header.
func bearerToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// authorizeRequest runs the explicit authorization step at the top of a
// protected operation and writes the rejection response itself on failure.
func authorizeRequest(c *gin.Context, svc service.AuthService, perm model.Permission) (*model.User, bool) {
	actor, err := svc.Authorize(c.Request.Context(), bearerToken(c), perm, clientMeta(c))
	if err != nil {
		respondAuthError(c, err)
		return nil, false
	}
	return actor, true
}

// authenticateRequest verifies the token and account standing only, for
// operations any signed-in user may perform.
func authenticateRequest(c *gin.Context, svc service.AuthService) (*model.User, bool) {
	actor, err := svc.AuthorizeToken(c.Request.Context(), bearerToken(c), clientMeta(c))
	if err != nil {
		respondAuthError(c, err)
		return nil, false
	}
	return actor, true
}

// respondAuthError maps authorization failures onto HTTP statuses. Credential
// and token failures share one opaque 401 body; only an authenticated but
// unauthorized actor sees a 403.
func respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrPermissionDenied) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "You do not have permission to access this resource"))
		return
	}
	c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unauthorized"))
}

// respondServiceError distinguishes caller mistakes from server faults.
func respondServiceError(c *gin.Context, err error) {
	var vErr *auth.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, auth.ErrDuplicateIdentity):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}
