package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueInvoice(t *testing.T) {
	taxRate := decimal.NewFromFloat(0.16)

	t.Run("fails when register is closed", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)

		_, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
			RecipientRIF:  "V-98765432-1",
			RecipientName: "Cliente Final",
			Items:         []LineItemInput{{Description: "Producto", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		})
		assert.ErrorIs(t, err, shared.ErrRegisterClosed)
		assert.Empty(t, f.repo.invoices)
	})

	t.Run("first invoice has no previous hash", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)

		inv := f.issue(t, 1, 100.00)

		assert.Equal(t, "F00000001", inv.Number)
		assert.Equal(t, "NC00000001", inv.ControlNumber)
		assert.Nil(t, inv.PreviousHash)
		assert.Len(t, inv.Hash, 64)
		assert.Equal(t, ledger.InvoiceStatusRegistered, inv.Status)
		assert.Equal(t, "J-12345678-9", inv.IssuerRIF)
		assert.Equal(t, "CAJA1", inv.RegisterID)
		assert.Equal(t, "Z1B2345678", inv.PrinterID)
		assert.Equal(t, "116.00", inv.Total.StringFixed(2))
	})

	t.Run("second invoice links to the first", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)

		first := f.issue(t, 1, 100.00)
		second := f.issue(t, 2, 50.00)

		assert.Equal(t, "F00000002", second.Number)
		assert.Equal(t, "NC00000002", second.ControlNumber)
		require.NotNil(t, second.PreviousHash)
		assert.Equal(t, first.Hash, *second.PreviousHash)
		assert.NotEqual(t, first.Hash, second.Hash)
	})

	t.Run("records an audit event in the same transaction", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)
		f.repo.events = nil // drop the register-open event

		inv := f.issue(t, 1, 100.00)

		require.Len(t, f.repo.events, 1)
		event := f.repo.events[0]
		assert.Equal(t, ledger.ActionCreateInvoice, event.Action)
		assert.Equal(t, ledger.EntityInvoice, event.Entity)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, inv.ID, *event.EntityID)
		assert.Equal(t, "Factura F00000001 registrada, monto: 116.00", event.Detail)
	})

	t.Run("rejects missing recipient", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)

		_, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
			Items: []LineItemInput{{Description: "Producto", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_RECIPIENT", domainErr.Code)
	})

	t.Run("rejects empty line items", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)

		_, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
			RecipientRIF:  "V-98765432-1",
			RecipientName: "Cliente Final",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_LINE_ITEMS", domainErr.Code)
	})

	t.Run("rejects invalid line item", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)

		_, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
			RecipientRIF:  "V-98765432-1",
			RecipientName: "Cliente Final",
			Items:         []LineItemInput{{Description: "Producto", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(10)}},
		})
		assert.Error(t, err)
		assert.Empty(t, f.repo.invoices)
	})

	t.Run("missing counter row aborts the transaction", func(t *testing.T) {
		f := newLedgerFixture(t, taxRate)
		f.openRegister(t)
		f.repo.counterMissing = true

		_, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
			RecipientRIF:  "V-98765432-1",
			RecipientName: "Cliente Final",
			Items:         []LineItemInput{{Description: "Producto", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		})
		assert.True(t, errors.Is(err, shared.ErrCounterMissing))
		assert.Empty(t, f.repo.invoices)
	})
}

func TestIssueInvoiceConcurrent(t *testing.T) {
	f := newLedgerFixture(t, decimal.NewFromFloat(0.16))
	f.openRegister(t)

	const workers = 20
	type result struct {
		number string
		err    error
	}
	results := make(chan result, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			inv, err := f.issuance.IssueInvoice(context.Background(), f.tenant, IssueInvoiceInput{
				RecipientRIF:  "V-98765432-1",
				RecipientName: "Cliente Final",
				Items:         []LineItemInput{{Description: "Producto", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
				Actor:         "operador1",
			})
			if err != nil {
				results <- result{err: err}
				return
			}
			results <- result{number: inv.Number}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for r := range results {
		require.NoError(t, r.err)
		assert.False(t, seen[r.number], "number %s issued twice", r.number)
		seen[r.number] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, int64(workers), f.repo.invoiceSeq)

	invoices, err := f.issuance.ListInvoices(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, workers)
}

func TestGetAndListInvoices(t *testing.T) {
	f := newLedgerFixture(t, decimal.NewFromFloat(0.16))
	f.openRegister(t)
	first := f.issue(t, 1, 100.00)
	f.issue(t, 2, 50.00)

	t.Run("get by number", func(t *testing.T) {
		inv, err := f.issuance.GetInvoice(context.Background(), f.tenant.ID, first.Number)
		require.NoError(t, err)
		assert.Equal(t, first.Number, inv.Number)
	})

	t.Run("get unknown number", func(t *testing.T) {
		_, err := f.issuance.GetInvoice(context.Background(), f.tenant.ID, "F99999999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list returns issue order", func(t *testing.T) {
		invoices, err := f.issuance.ListInvoices(context.Background(), f.tenant.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, "F00000001", invoices[0].Number)
		assert.Equal(t, "F00000002", invoices[1].Number)
	})
}
