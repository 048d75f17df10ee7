package handler

import (
	appledger "github.com/facturo/backend/internal/application/ledger"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// NoteHandler serves credit/debit note issuance
type NoteHandler struct {
	BaseHandler
	notes *appledger.NoteService
}

// NewNoteHandler creates a NoteHandler
func NewNoteHandler(notes *appledger.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// IssueNoteRequest is the note issuance payload
type IssueNoteRequest struct {
	InvoiceID int64   `json:"factura_id" binding:"required,gt=0"`
	Reason    string  `json:"motivo" binding:"required"`
	Amount    float64 `json:"monto_afectado" binding:"required,gt=0"`
	Operator  string  `json:"operador"`
}

// Issue handles POST /api/v1/notas
func (h *NoteHandler) Issue(c *gin.Context) {
	var req IssueNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid note payload: "+err.Error())
		return
	}

	origin, userAgent := requestOrigin(c)
	result, err := h.notes.IssueNote(c.Request.Context(), middleware.GetTenant(c), appledger.IssueNoteInput{
		InvoiceID: req.InvoiceID,
		Reason:    req.Reason,
		Amount:    decimal.NewFromFloat(req.Amount),
		Actor:     req.Operator,
		Origin:    origin,
		UserAgent: userAgent,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
