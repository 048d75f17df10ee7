package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/facturo/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LineItemInput is one requested invoice line
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// IssueInvoiceInput carries an issuance request for an authenticated tenant
type IssueInvoiceInput struct {
	RecipientRIF  string
	RecipientName string
	Items         []LineItemInput
	Actor         string
	Origin        string
	UserAgent     string
}

// IssuanceService issues sequentially numbered, hash-chained invoices.
// Issuance for one tenant is serialized by the exclusive lock the repository
// takes on the counter row; the lock is released when the surrounding
// transaction ends.
type IssuanceService struct {
	repo     ledger.Repository
	sessions ledger.SessionStore
	taxRate  decimal.Decimal
	logger   *zap.Logger
}

// NewIssuanceService creates an IssuanceService
func NewIssuanceService(repo ledger.Repository, sessions ledger.SessionStore, taxRate decimal.Decimal, logger *zap.Logger) *IssuanceService {
	return &IssuanceService{
		repo:     repo,
		sessions: sessions,
		taxRate:  taxRate,
		logger:   logger,
	}
}

// IssueInvoice validates the request, reserves the next invoice and control
// numbers, links the invoice to its predecessor's hash and persists invoice,
// line items and audit event as one transaction. A failure at any step rolls
// the whole procedure back; sequence numbers reserved by a rolled-back
// attempt are gone for good and never reused.
func (s *IssuanceService) IssueInvoice(ctx context.Context, t *tenant.Tenant, input IssueInvoiceInput) (*ledger.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "issue",
		attribute.Int64("tenant.id", t.ID),
	)
	defer span.End()

	if input.RecipientRIF == "" || input.RecipientName == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient RIF and name are required")
	}
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_LINE_ITEMS", "An invoice requires at least one line item")
	}

	items := make([]ledger.LineItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := ledger.NewLineItem(in.Description, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	session, err := s.sessions.Get(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.ErrRegisterClosed
	}

	subtotal, tax, total := ledger.ComputeTotals(items, s.taxRate)
	now := time.Now()

	var invoice *ledger.Invoice
	err = s.repo.InTransaction(ctx, t.ID, func(tx ledger.TxRepository) error {
		invoiceSeq, controlSeq, err := tx.ReserveNext()
		if err != nil {
			return err
		}

		previousHash, err := tx.LastHash()
		if err != nil {
			return err
		}

		invoice = &ledger.Invoice{
			Number:        ledger.FormatInvoiceNumber(invoiceSeq),
			ControlNumber: ledger.FormatControlNumber(controlSeq),
			IssuerRIF:     t.RIF,
			IssuerName:    t.Name,
			RecipientRIF:  input.RecipientRIF,
			RecipientName: input.RecipientName,
			IssueDate:     now,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         total,
			Status:        ledger.InvoiceStatusRegistered,
			RegisterID:    session.RegisterID,
			PrinterID:     session.PrinterID,
			PreviousHash:  previousHash,
			Items:         items,
		}
		invoice.Hash = ledger.ComputeHash(invoice)

		if err := tx.CreateInvoice(invoice); err != nil {
			return err
		}

		return tx.AppendAudit(&ledger.AuditEvent{
			Action:    ledger.ActionCreateInvoice,
			Entity:    ledger.EntityInvoice,
			EntityID:  &invoice.ID,
			Detail:    fmt.Sprintf("Factura %s registrada, monto: %s", invoice.Number, invoice.Total.StringFixed(2)),
			Actor:     input.Actor,
			Origin:    input.Origin,
			UserAgent: input.UserAgent,
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("invoice.number", invoice.Number),
		attribute.String("invoice.control_number", invoice.ControlNumber),
	)
	s.logger.Info("invoice issued",
		zap.Int64("tenant_id", t.ID),
		zap.String("numero_factura", invoice.Number),
		zap.String("numero_control", invoice.ControlNumber),
		zap.String("total", invoice.Total.StringFixed(2)),
	)
	return invoice, nil
}

// GetInvoice returns one invoice with its line items
func (s *IssuanceService) GetInvoice(ctx context.Context, tenantID int64, number string) (*ledger.Invoice, error) {
	return s.repo.FindInvoiceByNumber(ctx, tenantID, number)
}

// ListInvoices returns the tenant's full invoice history in issue order
func (s *IssuanceService) ListInvoices(ctx context.Context, tenantID int64) ([]*ledger.Invoice, error) {
	return s.repo.ListInvoices(ctx, tenantID)
}
