package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/facturo/backend/internal/infrastructure/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepository is an in-memory ledger.Repository with transactional
// semantics: changes made inside InTransaction are staged and only become
// visible when fn returns nil.
type fakeRepository struct {
	mu             sync.Mutex
	counterMissing bool
	invoiceSeq     int64
	controlSeq     int64
	nextInvoiceID  int64
	nextNoteID     int64
	invoices       []*ledger.Invoice
	notes          []*ledger.Note
	events         []*ledger.AuditEvent
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{}
}

func (r *fakeRepository) InTransaction(ctx context.Context, tenantID int64, fn func(tx ledger.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &fakeTx{
		repo:       r,
		invoiceSeq: r.invoiceSeq,
		controlSeq: r.controlSeq,
		voided:     make(map[int64]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	r.invoiceSeq = tx.invoiceSeq
	r.controlSeq = tx.controlSeq
	r.invoices = append(r.invoices, tx.pendingInvoices...)
	r.notes = append(r.notes, tx.pendingNotes...)
	r.events = append(r.events, tx.pendingEvents...)
	for _, inv := range r.invoices {
		if tx.voided[inv.ID] {
			inv.Status = ledger.InvoiceStatusVoided
		}
	}
	return nil
}

func (r *fakeRepository) ListInvoices(ctx context.Context, tenantID int64) ([]*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ledger.Invoice, len(r.invoices))
	copy(out, r.invoices)
	return out, nil
}

func (r *fakeRepository) FindInvoiceByNumber(ctx context.Context, tenantID int64, number string) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.Number == number {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepository) AppendAudit(ctx context.Context, tenantID int64, event *ledger.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fakeTx struct {
	repo            *fakeRepository
	invoiceSeq      int64
	controlSeq      int64
	pendingInvoices []*ledger.Invoice
	pendingNotes    []*ledger.Note
	pendingEvents   []*ledger.AuditEvent
	voided          map[int64]bool
}

func (t *fakeTx) ReserveNext() (int64, int64, error) {
	if t.repo.counterMissing {
		return 0, 0, shared.ErrCounterMissing
	}
	t.invoiceSeq++
	t.controlSeq++
	return t.invoiceSeq, t.controlSeq, nil
}

func (t *fakeTx) ReserveControl() (int64, error) {
	if t.repo.counterMissing {
		return 0, shared.ErrCounterMissing
	}
	t.controlSeq++
	return t.controlSeq, nil
}

func (t *fakeTx) LastHash() (*string, error) {
	if n := len(t.pendingInvoices); n > 0 {
		h := t.pendingInvoices[n-1].Hash
		return &h, nil
	}
	if n := len(t.repo.invoices); n > 0 {
		h := t.repo.invoices[n-1].Hash
		return &h, nil
	}
	return nil, nil
}

func (t *fakeTx) CreateInvoice(inv *ledger.Invoice) error {
	t.repo.nextInvoiceID++
	inv.ID = t.repo.nextInvoiceID
	t.pendingInvoices = append(t.pendingInvoices, inv)
	return nil
}

func (t *fakeTx) FindInvoiceForUpdate(invoiceID int64) (*ledger.Invoice, error) {
	for _, inv := range t.repo.invoices {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (t *fakeTx) SumActiveCredits(invoiceID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	all := append(append([]*ledger.Note{}, t.repo.notes...), t.pendingNotes...)
	for _, note := range all {
		if note.InvoiceID == invoiceID && note.Type == ledger.NoteTypeCredit && note.Status != ledger.NoteStatusVoided {
			sum = sum.Add(note.Amount)
		}
	}
	return sum, nil
}

func (t *fakeTx) CreateNote(note *ledger.Note) error {
	t.repo.nextNoteID++
	note.ID = t.repo.nextNoteID
	t.pendingNotes = append(t.pendingNotes, note)
	return nil
}

func (t *fakeTx) MarkInvoiceVoided(invoiceID int64) error {
	for _, inv := range t.repo.invoices {
		if inv.ID == invoiceID {
			t.voided[invoiceID] = true
			return nil
		}
	}
	return shared.ErrNotFound
}

func (t *fakeTx) AppendAudit(event *ledger.AuditEvent) error {
	t.pendingEvents = append(t.pendingEvents, event)
	return nil
}

var (
	_ ledger.Repository   = (*fakeRepository)(nil)
	_ ledger.TxRepository = (*fakeTx)(nil)
)

// ledgerFixture wires the ledger services against the fake repository and an
// in-memory session store.
type ledgerFixture struct {
	repo         *fakeRepository
	sessions     *session.MemoryStore
	tenant       *tenant.Tenant
	issuance     *IssuanceService
	notes        *NoteService
	registers    *RegisterService
	verification *VerificationService
}

func newLedgerFixture(t *testing.T, taxRate decimal.Decimal) *ledgerFixture {
	t.Helper()
	repo := newFakeRepository()
	sessions := session.NewMemoryStore(time.Hour)
	logger := zap.NewNop()

	return &ledgerFixture{
		repo:     repo,
		sessions: sessions,
		tenant: &tenant.Tenant{
			ID:     1,
			Name:   "Comercial Demo C.A.",
			RIF:    "J-12345678-9",
			APIKey: "key-1",
			Active: true,
		},
		issuance:     NewIssuanceService(repo, sessions, taxRate, logger),
		notes:        NewNoteService(repo, logger),
		registers:    NewRegisterService(sessions, repo, logger),
		verification: NewVerificationService(repo, logger),
	}
}

func (f *ledgerFixture) openRegister(t *testing.T) {
	t.Helper()
	_, err := f.registers.Open(context.Background(), f.tenant, OpenRegisterInput{
		RegisterID: "CAJA1",
		PrinterID:  "Z1B2345678",
		Operator:   "operador1",
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) issue(t *testing.T, qty, price float64) *ledger.Invoice {
	t.Helper()
	inv, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
		RecipientRIF:  "V-98765432-1",
		RecipientName: "Cliente Final",
		Items: []LineItemInput{
			{Description: "Producto", Quantity: decimal.NewFromFloat(qty), UnitPrice: decimal.NewFromFloat(price)},
		},
		Actor: "operador1",
	})
	require.NoError(t, err)
	return inv
}
