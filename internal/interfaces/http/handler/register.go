package handler

import (
	appledger "github.com/facturo/backend/internal/application/ledger"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterHandler serves the caja session surface
type RegisterHandler struct {
	BaseHandler
	registers *appledger.RegisterService
}

// NewRegisterHandler creates a RegisterHandler
func NewRegisterHandler(registers *appledger.RegisterService) *RegisterHandler {
	return &RegisterHandler{registers: registers}
}

// OpenRegisterRequest is the register open payload
type OpenRegisterRequest struct {
	RegisterID string `json:"caja_id" binding:"required"`
	PrinterID  string `json:"impresora_fiscal" binding:"required"`
	Operator   string `json:"operador"`
}

// CloseRegisterRequest is the register close payload
type CloseRegisterRequest struct {
	Operator string `json:"operador"`
}

// Open handles POST /api/v1/caja/abrir
func (h *RegisterHandler) Open(c *gin.Context) {
	var req OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid register payload: "+err.Error())
		return
	}

	origin, userAgent := requestOrigin(c)
	session, err := h.registers.Open(c.Request.Context(), middleware.GetTenant(c), appledger.OpenRegisterInput{
		RegisterID: req.RegisterID,
		PrinterID:  req.PrinterID,
		Operator:   req.Operator,
		Origin:     origin,
		UserAgent:  userAgent,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// Close handles POST /api/v1/caja/cerrar
func (h *RegisterHandler) Close(c *gin.Context) {
	var req CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid register payload: "+err.Error())
		return
	}

	origin, userAgent := requestOrigin(c)
	if err := h.registers.Close(c.Request.Context(), middleware.GetTenant(c), req.Operator, origin, userAgent); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"estado": "cerrada"})
}

// Status handles GET /api/v1/caja/estado
func (h *RegisterHandler) Status(c *gin.Context) {
	t := middleware.GetTenant(c)
	session, err := h.registers.Status(c.Request.Context(), t.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if session == nil {
		h.Success(c, gin.H{"abierta": false})
		return
	}
	h.Success(c, gin.H{"abierta": true, "sesion": session})
}
