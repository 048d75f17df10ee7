package handler

import (
	"strconv"

	apptenant "github.com/facturo/backend/internal/application/tenant"
	"github.com/gin-gonic/gin"
)

// TenantHandler serves the back-office onboarding surface
type TenantHandler struct {
	BaseHandler
	onboarding *apptenant.OnboardingService
}

// NewTenantHandler creates a TenantHandler
func NewTenantHandler(onboarding *apptenant.OnboardingService) *TenantHandler {
	return &TenantHandler{onboarding: onboarding}
}

// RegisterTenantRequest is the tenant onboarding payload
type RegisterTenantRequest struct {
	Name          string `json:"nombre" binding:"required"`
	RIF           string `json:"rif" binding:"required"`
	AdminName     string `json:"admin_nombre"`
	AdminEmail    string `json:"admin_email" binding:"omitempty,email"`
	AdminPassword string `json:"admin_password" binding:"required_with=AdminEmail,omitempty,min=8"`
}

// Register handles POST /api/v1/clientes
func (h *TenantHandler) Register(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid tenant payload: "+err.Error())
		return
	}

	result, err := h.onboarding.Register(c.Request.Context(), apptenant.RegisterTenantInput{
		Name:          req.Name,
		RIF:           req.RIF,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Deactivate handles DELETE /api/v1/clientes/:id
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Tenant id must be a positive integer")
		return
	}

	if err := h.onboarding.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id, "activo": false})
}
