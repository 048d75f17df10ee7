package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the persistence contract for one tenant's ledger partition.
// Multi-step mutations run through InTransaction; any error returned from fn
// rolls back every statement issued inside it.
type Repository interface {
	// InTransaction runs fn against a transaction-bound TxRepository
	InTransaction(ctx context.Context, tenantID int64, fn func(tx TxRepository) error) error

	// ListInvoices returns all invoices with their line items ordered by
	// insertion (primary key ascending). Read-only snapshot; takes no locks.
	ListInvoices(ctx context.Context, tenantID int64) ([]*Invoice, error)

	// FindInvoiceByNumber returns one invoice with its line items
	FindInvoiceByNumber(ctx context.Context, tenantID int64, number string) (*Invoice, error)

	// AppendAudit writes an audit event outside any caller transaction,
	// for read-path actions such as verification and register changes.
	AppendAudit(ctx context.Context, tenantID int64, event *AuditEvent) error
}

// TxRepository exposes the ledger operations that must share one database
// transaction. The counter row lock taken by the Reserve methods is held
// until the owning transaction commits or rolls back.
type TxRepository interface {
	// ReserveNext locks the tenant's counter row, increments both sequences
	// and returns the reserved pair. A missing row is a fatal
	// shared.ErrCounterMissing, never an auto-create.
	ReserveNext() (invoiceNumber, controlNumber int64, err error)

	// ReserveControl advances only the control sequence
	ReserveControl() (controlNumber int64, err error)

	// LastHash returns the hash of the most recently inserted invoice, or
	// nil when the partition has no invoices yet.
	LastHash() (*string, error)

	// CreateInvoice inserts the invoice row and all line item rows,
	// populating inv.ID and item IDs.
	CreateInvoice(inv *Invoice) error

	// FindInvoiceForUpdate loads an invoice by id under an exclusive row
	// lock, serializing balance accounting across concurrent notes.
	FindInvoiceForUpdate(invoiceID int64) (*Invoice, error)

	// SumActiveCredits totals the affected amounts of non-voided credit
	// notes already applied to the invoice.
	SumActiveCredits(invoiceID int64) (decimal.Decimal, error)

	// CreateNote inserts the note row, populating note.ID
	CreateNote(note *Note) error

	// MarkInvoiceVoided transitions the invoice to InvoiceStatusVoided
	MarkInvoiceVoided(invoiceID int64) error

	// AppendAudit writes an audit event inside the transaction
	AppendAudit(event *AuditEvent) error
}
