package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	// InvoiceStatusRegistered is the status of a normally issued invoice
	InvoiceStatusRegistered InvoiceStatus = "registrada"
	// InvoiceStatusVoided is set when a credit note fully offsets the invoice
	InvoiceStatusVoided InvoiceStatus = "anulada"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusRegistered || s == InvoiceStatusVoided
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// LineItem is one billed line of an invoice
type LineItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// NewLineItem validates and builds a line item. The line total is the
// quantity times unit price rounded to two decimals, which keeps the
// subtotal equal to the sum of the persisted line totals.
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	if strings.TrimSpace(description) == "" {
		return LineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item unit price cannot be negative")
	}
	return LineItem{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       quantity.Mul(unitPrice).Round(2),
	}, nil
}

// Invoice is a sequentially numbered, hash-chained fiscal document owned by
// one tenant partition. Once persisted it is immutable except for the
// transition to InvoiceStatusVoided; tampering is detected by the chain
// verifier, not prevented at the storage layer.
type Invoice struct {
	ID            int64           `json:"id"`
	Number        string          `json:"numero_factura"`
	ControlNumber string          `json:"numero_control"`
	IssuerRIF     string          `json:"rif_emisor"`
	IssuerName    string          `json:"razon_social_emisor"`
	RecipientRIF  string          `json:"rif_receptor"`
	RecipientName string          `json:"razon_social_receptor"`
	IssueDate     time.Time       `json:"fecha_emision"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"iva"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"estado"`
	RegisterID    string          `json:"caja_id"`
	PrinterID     string          `json:"impresora_fiscal"`
	PreviousHash  *string         `json:"hash_anterior"`
	Hash          string          `json:"hash"`
	CreatedAt     time.Time       `json:"fecha_creacion"`
	Items         []LineItem      `json:"detalles"`
}

// IsEditable reports whether notes may still be applied to the invoice
func (i *Invoice) IsEditable() bool {
	return i.Status == InvoiceStatusRegistered
}

// FormatInvoiceNumber renders a reserved invoice sequence value, e.g. F00000042
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("F%08d", n)
}

// FormatControlNumber renders a reserved control sequence value, e.g. NC00000042
func FormatControlNumber(n int64) string {
	return fmt.Sprintf("NC%08d", n)
}

// ComputeTotals derives subtotal, tax and total from validated line items.
// All arithmetic is decimal; the tax is rounded to two decimals before the
// final addition so repeated runs never drift.
func ComputeTotals(items []LineItem, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}
	tax = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}
