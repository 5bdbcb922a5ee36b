package handler

import (
	"errors"
	"net/http"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
	rbacService service.RBACService
}

// NewAuthHandler sets up the routing dependencies for identity endpoints
func NewAuthHandler(authService service.AuthService, rbacService service.RBACService) *AuthHandler {
	return &AuthHandler{authService: authService, rbacService: rbacService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/init-system", h.InitSystem)
		group.POST("/register", h.Register)
		group.GET("/profile", h.GetProfile)
		group.PUT("/profile", h.UpdateProfile)
		group.POST("/change-password", h.ChangePassword)
		group.GET("/users", h.ListUsers)
		group.POST("/users/:id/deactivate", h.Deactivate)
		group.POST("/users/:id/reactivate", h.Reactivate)
		group.POST("/roles", h.AssignRole)
		group.DELETE("/roles/:id", h.RevokeRole)
		group.POST("/permissions", h.GrantPermission)
		group.DELETE("/permissions/:id", h.RevokePermission)
	}
}

// Login handles POST /api/auth/login to authenticate and return a token
// @Summary      Login
// @Description  Authenticates a user by username and password, returning a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Username and password are required"))
		return
	}

	res, err := h.authService.Authenticate(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// InitSystem handles the one-time bootstrap creating the first department head
// @Summary      Initialize system
// @Description  Seeds default role permissions and creates the first department head. Fails once any user exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.InitSystemRequest  true  "First Administrator"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/auth/init-system [post]
func (h *AuthHandler) InitSystem(c *gin.Context) {
	var req service.InitSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.authService.InitSystem(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Register handles POST /api/auth/register creating a user with initial roles
// @Summary      Register user
// @Description  Creates a new user with optional initial roles and direct permission grants
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RegisterUserRequest  true  "New User"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// GetProfile returns the authenticated user's own record
// @Summary      Get profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := authenticateRequest(c, h.authService)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "User not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateProfile lets the authenticated user edit their own contact fields
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateProfileRequest  true  "Profile Fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := authenticateRequest(c, h.authService)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ChangePassword verifies the current secret before accepting a new one
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := authenticateRequest(c, h.authService)
	if !ok {
		return
	}

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Current and new passwords are required"))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), actor, req, clientMeta(c)); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Current password is incorrect"))
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Password changed successfully"))
}

// ListUsers handles GET /api/auth/users with search and pagination
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Match against username, full name, email or national id"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      403     {object}  response.Response
// @Router       /api/auth/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	if _, ok := authorizeRequest(c, h.authService, model.PermViewUsers); !ok {
		return
	}

	params := pagination.Parse(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// Deactivate soft-disables an account; outstanding tokens die on next use
// @Summary      Deactivate user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/users/{id}/deactivate [post]
func (h *AuthHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate re-enables a previously deactivated account
// @Summary      Reactivate user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/users/{id}/reactivate [post]
func (h *AuthHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AuthHandler) setActive(c *gin.Context, active bool) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}

	if err := h.authService.SetActive(c.Request.Context(), actor, targetID, active, clientMeta(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "User updated successfully"))
}

// AssignRole binds a role to a user, optionally time-bounded
// @Summary      Assign role
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AssignRoleRequest  true  "Assignment"
// @Success      201      {object}  response.Response{data=service.GrantResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/auth/roles [post]
func (h *AuthHandler) AssignRole(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.rbacService.AssignRole(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// RevokeRole deactivates a role assignment; it cannot be reactivated
// @Summary      Revoke role assignment
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/roles/{id} [delete]
func (h *AuthHandler) RevokeRole(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid assignment id"))
		return
	}

	if err := h.rbacService.RevokeRoleAssignment(c.Request.Context(), actor, id, clientMeta(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Role assignment revoked"))
}

// GrantPermission binds a direct permission to a user, optionally time-bounded
// @Summary      Grant permission
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GrantPermissionRequest  true  "Grant"
// @Success      201      {object}  response.Response{data=service.GrantResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/auth/permissions [post]
func (h *AuthHandler) GrantPermission(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	var req service.GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.rbacService.GrantPermission(c.Request.Context(), actor, req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// RevokePermission deactivates a direct grant; it cannot be reactivated
// @Summary      Revoke permission grant
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Grant ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/permissions/{id} [delete]
func (h *AuthHandler) RevokePermission(c *gin.Context) {
	actor, ok := authorizeRequest(c, h.authService, model.PermManageUsers)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid grant id"))
		return
	}

	if err := h.rbacService.RevokePermissionGrant(c.Request.Context(), actor, id, clientMeta(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Permission grant revoked"))
}
