package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IssueNoteInput carries a credit/debit note request
type IssueNoteInput struct {
	InvoiceID int64
	Reason    string
	Amount    decimal.Decimal
	Actor     string
	Origin    string
	UserAgent string
}

// NoteResult is the persisted note plus what it did to the invoice
type NoteResult struct {
	Note        *ledger.Note              `json:"nota"`
	Invoice     string                    `json:"factura_afectada"`
	Disposition ledger.InvoiceDisposition `json:"accion"`
}

// NoteService issues credit and debit notes against registered invoices,
// tracking the credited balance per invoice so the sum of credit notes never
// exceeds the invoice total.
type NoteService struct {
	repo   ledger.Repository
	logger *zap.Logger
}

// NewNoteService creates a NoteService
func NewNoteService(repo ledger.Repository, logger *zap.Logger) *NoteService {
	return &NoteService{repo: repo, logger: logger}
}

// IssueNote classifies and persists a note in one transaction. Amounts above
// the invoice total become debit notes, which are always permitted and never
// touch invoice status. Amounts at or below the total are credit notes
// bounded by the remaining balance; a credit note for exactly the full total
// voids the invoice. The invoice row is locked while the balance is
// computed, serializing concurrent notes on the same invoice.
func (s *NoteService) IssueNote(ctx context.Context, t *tenant.Tenant, input IssueNoteInput) (*NoteResult, error) {
	if input.Reason == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_REASON", "Note reason cannot be empty")
	}
	if !input.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_NOTE_AMOUNT", "Affected amount must be greater than zero")
	}

	amount := input.Amount.Round(2)
	var result *NoteResult

	err := s.repo.InTransaction(ctx, t.ID, func(tx ledger.TxRepository) error {
		invoice, err := tx.FindInvoiceForUpdate(input.InvoiceID)
		if err != nil {
			return err
		}
		if !invoice.IsEditable() {
			return shared.ErrInvoiceNotEditable
		}

		noteType := ledger.ClassifyNote(amount, invoice.Total)
		disposition := ledger.DispositionDebit
		action := ledger.ActionDebitNote

		if noteType == ledger.NoteTypeCredit {
			credited, err := tx.SumActiveCredits(invoice.ID)
			if err != nil {
				return err
			}
			remaining := invoice.Total.Sub(credited)
			if !remaining.IsPositive() {
				return shared.ErrBalanceExhausted
			}
			if amount.GreaterThan(remaining) {
				return shared.NewDomainError("BALANCE_EXCEEDED",
					fmt.Sprintf("Amount %s exceeds remaining balance of %s",
						amount.StringFixed(2), remaining.StringFixed(2)))
			}
			if amount.Equal(invoice.Total) {
				disposition = ledger.DispositionVoided
				action = ledger.ActionCreditVoid
			} else {
				disposition = ledger.DispositionPartial
				action = ledger.ActionCreditPartial
			}
		}

		controlSeq, err := tx.ReserveControl()
		if err != nil {
			return err
		}

		note := &ledger.Note{
			InvoiceID:     invoice.ID,
			Type:          noteType,
			Reason:        input.Reason,
			Amount:        amount,
			ControlNumber: ledger.FormatControlNumber(controlSeq),
			IssueDate:     time.Now(),
			Status:        ledger.NoteStatusIssued,
			CreatedBy:     input.Actor,
		}
		if err := tx.CreateNote(note); err != nil {
			return err
		}

		if disposition == ledger.DispositionVoided {
			if err := tx.MarkInvoiceVoided(invoice.ID); err != nil {
				return err
			}
		}

		if err := tx.AppendAudit(&ledger.AuditEvent{
			Action:   action,
			Entity:   ledger.EntityNote,
			EntityID: &note.ID,
			Detail: fmt.Sprintf("Nota de %s por %s, monto: %s, afecta factura %s",
				noteType, input.Reason, amount.StringFixed(2), invoice.Number),
			Actor:     input.Actor,
			Origin:    input.Origin,
			UserAgent: input.UserAgent,
		}); err != nil {
			return err
		}

		result = &NoteResult{
			Note:        note,
			Invoice:     invoice.Number,
			Disposition: disposition,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("note issued",
		zap.Int64("tenant_id", t.ID),
		zap.String("tipo", result.Note.Type.String()),
		zap.String("numero_control", result.Note.ControlNumber),
		zap.String("accion", string(result.Disposition)),
	)
	return result, nil
}
