package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
)

// AdminHandler serves user, admin and tenant management.
type AdminHandler struct {
	users   service.UserUseCase
	tenants service.TenantUseCase
}

func NewAdminHandler(users service.UserUseCase, tenants service.TenantUseCase) *AdminHandler {
	return &AdminHandler{users: users, tenants: tenants}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	users, total, err := h.users.List(currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(users, total, filter))
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateRole(currentSession(c), id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	admins, total, err := h.users.ListAdmins(currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(admins, total, filter))
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.users.CreateAdmin(currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": admin})
}

func (h *AdminHandler) CreateTenant(c *gin.Context) {
	var req models.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenants.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

func (h *AdminHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenants.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *AdminHandler) GetTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenants.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

func (h *AdminHandler) RegenerateTenantToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenants.RegenerateToken(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

func (h *AdminHandler) DeleteTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.tenants.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tenant deleted"})
}
