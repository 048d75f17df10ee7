package handler

import (
	appledger "github.com/facturo/backend/internal/application/ledger"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvoiceHandler serves invoice issuance and lookup for authenticated tenants
type InvoiceHandler struct {
	BaseHandler
	issuance *appledger.IssuanceService
}

// NewInvoiceHandler creates an InvoiceHandler
func NewInvoiceHandler(issuance *appledger.IssuanceService) *InvoiceHandler {
	return &InvoiceHandler{issuance: issuance}
}

// LineItemRequest is one requested invoice line
type LineItemRequest struct {
	Description string  `json:"descripcion" binding:"required"`
	Quantity    float64 `json:"cantidad" binding:"required,gt=0"`
	UnitPrice   float64 `json:"precio_unitario" binding:"min=0"`
}

// IssueInvoiceRequest is the invoice issuance payload
type IssueInvoiceRequest struct {
	RecipientRIF  string            `json:"rif_receptor" binding:"required"`
	RecipientName string            `json:"razon_social_receptor" binding:"required"`
	Items         []LineItemRequest `json:"detalles" binding:"required,min=1,dive"`
	Operator      string            `json:"operador"`
}

// Issue handles POST /api/v1/facturas
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid invoice payload: "+err.Error())
		return
	}

	items := make([]appledger.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, appledger.LineItemInput{
			Description: item.Description,
			Quantity:    decimal.NewFromFloat(item.Quantity),
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
		})
	}

	origin, userAgent := requestOrigin(c)
	invoice, err := h.issuance.IssueInvoice(c.Request.Context(), middleware.GetTenant(c), appledger.IssueInvoiceInput{
		RecipientRIF:  req.RecipientRIF,
		RecipientName: req.RecipientName,
		Items:         items,
		Actor:         req.Operator,
		Origin:        origin,
		UserAgent:     userAgent,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List handles GET /api/v1/facturas
func (h *InvoiceHandler) List(c *gin.Context) {
	t := middleware.GetTenant(c)
	invoices, err := h.issuance.ListInvoices(c.Request.Context(), t.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Get handles GET /api/v1/facturas/:numero
func (h *InvoiceHandler) Get(c *gin.Context) {
	t := middleware.GetTenant(c)
	invoice, err := h.issuance.GetInvoice(c.Request.Context(), t.ID, c.Param("numero"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
