package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoteType distinguishes credit notes from debit notes
type NoteType string

const (
	// NoteTypeCredit reduces the invoice's settled balance
	NoteTypeCredit NoteType = "credito"
	// NoteTypeDebit increases the receivable beyond the invoice total
	NoteTypeDebit NoteType = "debito"
)

// String returns the string representation of NoteType
func (t NoteType) String() string {
	return string(t)
}

// NoteStatus represents the lifecycle status of a note
type NoteStatus string

const (
	// NoteStatusIssued is the status of a normally issued note
	NoteStatusIssued NoteStatus = "emitida"
	// NoteStatusVoided excludes a note from balance accounting
	NoteStatusVoided NoteStatus = "anulada"
)

// InvoiceDisposition describes what a note did to its invoice
type InvoiceDisposition string

const (
	// DispositionVoided - a credit note equal to the invoice total voided it
	DispositionVoided InvoiceDisposition = "factura_anulada"
	// DispositionPartial - a partial credit note, the invoice stays active
	DispositionPartial InvoiceDisposition = "ajuste_parcial_no_anulado"
	// DispositionDebit - a debit note, invoice status untouched
	DispositionDebit InvoiceDisposition = "nota_debito"
)

// Note is a credit or debit adjustment referencing one invoice
type Note struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"factura_id"`
	Type          NoteType        `json:"tipo"`
	Reason        string          `json:"motivo"`
	Amount        decimal.Decimal `json:"monto_afectado"`
	ControlNumber string          `json:"numero_control"`
	IssueDate     time.Time       `json:"fecha_emision"`
	Status        NoteStatus      `json:"estado"`
	CreatedBy     string          `json:"creado_por"`
	CreatedAt     time.Time       `json:"fecha_creacion"`
}

// ClassifyNote determines the note type from the affected amount and the
// invoice total: amounts above the total are debit notes, everything else is
// a credit note subject to the remaining-balance invariant.
func ClassifyNote(amount, invoiceTotal decimal.Decimal) NoteType {
	if amount.GreaterThan(invoiceTotal) {
		return NoteTypeDebit
	}
	return NoteTypeCredit
}
