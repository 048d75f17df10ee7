package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLedgerRepository creates a GormLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerRepository(&Database{DB: gormDB}), mock, mockDB
}

var invoiceColumns = []string{
	"id", "numero_factura", "numero_control", "rif_emisor", "razon_social_emisor",
	"rif_receptor", "razon_social_receptor", "fecha_emision", "subtotal", "iva",
	"total", "estado", "caja_id", "impresora_fiscal", "hash_anterior", "hash",
	"fecha_creacion",
}

func addInvoiceRow(rows *sqlmock.Rows, id int64, number string) *sqlmock.Rows {
	return rows.AddRow(
		id, number, "NC00000001", "J-12345678-9", "Comercial Demo C.A.",
		"V-98765432-1", "Cliente Final", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		"100.00", "16.00", "116.00", "registrada", "CAJA1", "Z1B2345678",
		nil, "ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34",
		time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC),
	)
}

func TestGormLedgerRepository_FindInvoiceByNumber(t *testing.T) {
	t.Run("finds invoice with line items", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rows := addInvoiceRow(sqlmock.NewRows(invoiceColumns), 10, "F00000001")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."facturas" WHERE numero_factura = $1`)).
			WithArgs("F00000001", 1).
			WillReturnRows(rows)

		itemRows := sqlmock.NewRows([]string{"id", "factura_id", "descripcion", "cantidad", "precio_unitario", "monto_total"}).
			AddRow(1, 10, "Producto A", "2.00", "50.00", "100.00")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."detalles_factura" WHERE factura_id = $1`)).
			WithArgs(10).
			WillReturnRows(itemRows)

		inv, err := repo.FindInvoiceByNumber(context.Background(), 7, "F00000001")
		require.NoError(t, err)

		assert.Equal(t, "F00000001", inv.Number)
		assert.Equal(t, ledger.InvoiceStatusRegistered, inv.Status)
		assert.Nil(t, inv.PreviousHash)
		assert.Equal(t, "116.00", inv.Total.StringFixed(2))
		require.Len(t, inv.Items, 1)
		assert.Equal(t, "Producto A", inv.Items[0].Description)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown number maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."facturas" WHERE numero_factura = $1`)).
			WithArgs("F99999999", 1).
			WillReturnRows(sqlmock.NewRows(invoiceColumns))

		_, err := repo.FindInvoiceByNumber(context.Background(), 7, "F99999999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_ListInvoices(t *testing.T) {
	t.Run("returns invoices oldest first with batched line items", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows(invoiceColumns)
		addInvoiceRow(rows, 10, "F00000001")
		addInvoiceRow(rows, 11, "F00000002")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."facturas" ORDER BY id ASC`)).
			WillReturnRows(rows)

		itemRows := sqlmock.NewRows([]string{"id", "factura_id", "descripcion", "cantidad", "precio_unitario", "monto_total"}).
			AddRow(1, 10, "Producto A", "1.00", "100.00", "100.00").
			AddRow(2, 11, "Producto B", "1.00", "100.00", "100.00")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."detalles_factura" WHERE factura_id IN ($1,$2)`)).
			WithArgs(10, 11).
			WillReturnRows(itemRows)

		invoices, err := repo.ListInvoices(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, "F00000001", invoices[0].Number)
		assert.Equal(t, "F00000002", invoices[1].Number)
		require.Len(t, invoices[0].Items, 1)
		require.Len(t, invoices[1].Items, 1)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty partition skips the line item query", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."facturas" ORDER BY id ASC`)).
			WillReturnRows(sqlmock.NewRows(invoiceColumns))

		invoices, err := repo.ListInvoices(context.Background(), 7)
		require.NoError(t, err)
		assert.Empty(t, invoices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTxLedgerRepository_ReserveNext(t *testing.T) {
	t.Run("locks the counter row and advances both sequences", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."contador" WHERE id = $1`) + `.*FOR UPDATE`).
			WithArgs(counterRowID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "ultimo_numero_factura", "ultimo_numero_control", "fecha_actualizacion"}).
				AddRow(1, 5, 7, time.Now()))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cliente_7"."contador" SET`)).
			WithArgs(sqlmock.AnyArg(), int64(8), int64(6), counterRowID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			invoiceNumber, controlNumber, err := tx.ReserveNext()
			require.NoError(t, err)
			assert.Equal(t, int64(6), invoiceNumber)
			assert.Equal(t, int64(8), controlNumber)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing counter row is fatal", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cliente_7"."contador" WHERE id = $1`) + `.*FOR UPDATE`).
			WithArgs(counterRowID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "ultimo_numero_factura", "ultimo_numero_control", "fecha_actualizacion"}))
		mock.ExpectRollback()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			_, _, err := tx.ReserveNext()
			return err
		})
		assert.ErrorIs(t, err, shared.ErrCounterMissing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTxLedgerRepository_LastHash(t *testing.T) {
	t.Run("returns the newest invoice hash", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT hash FROM "cliente_7"."facturas" ORDER BY id DESC`)).
			WillReturnRows(sqlmock.NewRows([]string{"hash"}).AddRow("cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001"))
		mock.ExpectCommit()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			hash, err := tx.LastHash()
			require.NoError(t, err)
			require.NotNil(t, hash)
			assert.Equal(t, "cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001cafe0001", *hash)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty partition yields nil", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT hash FROM "cliente_7"."facturas" ORDER BY id DESC`)).
			WillReturnRows(sqlmock.NewRows([]string{"hash"}))
		mock.ExpectCommit()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			hash, err := tx.LastHash()
			require.NoError(t, err)
			assert.Nil(t, hash)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTxLedgerRepository_SumActiveCredits(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(monto_afectado), 0) AS total FROM "cliente_7"."notas_credito_debito" WHERE factura_id = $1 AND tipo = $2 AND estado <> $3`)).
		WithArgs(int64(10), "credito", "anulada", 1).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("40.00"))
	mock.ExpectCommit()

	err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
		credited, err := tx.SumActiveCredits(10)
		require.NoError(t, err)
		assert.True(t, credited.Equal(decimal.NewFromFloat(40.00)))
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxLedgerRepository_MarkInvoiceVoided(t *testing.T) {
	t.Run("updates the invoice status", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cliente_7"."facturas" SET "estado"=$1 WHERE id = $2`)).
			WithArgs("anulada", int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			return tx.MarkInvoiceVoided(10)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing invoice maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cliente_7"."facturas" SET "estado"=$1 WHERE id = $2`)).
			WithArgs("anulada", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.InTransaction(context.Background(), 7, func(tx ledger.TxRepository) error {
			return tx.MarkInvoiceVoided(99)
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
