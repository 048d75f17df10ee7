package handler

import (
	appledger "github.com/facturo/backend/internal/application/ledger"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// VerificationHandler serves the read-only integrity surface
type VerificationHandler struct {
	BaseHandler
	verification *appledger.VerificationService
}

// NewVerificationHandler creates a VerificationHandler
func NewVerificationHandler(verification *appledger.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// VerifyChain handles GET /api/v1/facturas/verificar
func (h *VerificationHandler) VerifyChain(c *gin.Context) {
	t := middleware.GetTenant(c)
	report, err := h.verification.VerifyChain(c.Request.Context(), t.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// VerifyInvoice handles GET /api/v1/facturas/verificar/:numero
func (h *VerificationHandler) VerifyInvoice(c *gin.Context) {
	t := middleware.GetTenant(c)
	origin, userAgent := requestOrigin(c)
	result, err := h.verification.VerifyInvoice(c.Request.Context(), t.ID,
		c.Param("numero"), c.Query("operador"), origin, userAgent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
