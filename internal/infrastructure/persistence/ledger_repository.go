package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements ledger.Repository against tenant partition
// schemas. Every statement is qualified with the tenant's schema; the
// repository never relies on search_path.
type GormLedgerRepository struct {
	db *Database
}

// NewGormLedgerRepository creates a new ledger repository
func NewGormLedgerRepository(db *Database) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// InTransaction runs fn against a transaction-bound TxRepository
func (r *GormLedgerRepository) InTransaction(ctx context.Context, tenantID int64, fn func(tx ledger.TxRepository) error) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txLedgerRepository{tx: tx, tenantID: tenantID})
	})
}

// ListInvoices returns all invoices with line items, oldest first
func (r *GormLedgerRepository) ListInvoices(ctx context.Context, tenantID int64) ([]*ledger.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.DB.WithContext(ctx).
		Table(partitionTable(tenantID, tableInvoices)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*ledger.Invoice, 0, len(rows))
	byID := make(map[int64]*ledger.Invoice, len(rows))
	ids := make([]int64, 0, len(rows))
	for i := range rows {
		inv := rows[i].ToDomain()
		invoices = append(invoices, inv)
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}
	if len(ids) == 0 {
		return invoices, nil
	}

	var itemRows []models.LineItemModel
	err = r.db.DB.WithContext(ctx).
		Table(partitionTable(tenantID, tableLineItems)).
		Where("factura_id IN ?", ids).
		Order("id ASC").
		Find(&itemRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice line items: %w", err)
	}
	for i := range itemRows {
		item := itemRows[i].ToDomain()
		if inv, ok := byID[item.InvoiceID]; ok {
			inv.Items = append(inv.Items, item)
		}
	}
	return invoices, nil
}

// FindInvoiceByNumber returns one invoice with its line items
func (r *GormLedgerRepository) FindInvoiceByNumber(ctx context.Context, tenantID int64, number string) (*ledger.Invoice, error) {
	var row models.InvoiceModel
	err := r.db.DB.WithContext(ctx).
		Table(partitionTable(tenantID, tableInvoices)).
		Where("numero_factura = ?", number).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", number, err)
	}

	inv := row.ToDomain()
	items, err := loadLineItems(r.db.DB.WithContext(ctx), tenantID, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// AppendAudit writes an audit event outside any caller transaction
func (r *GormLedgerRepository) AppendAudit(ctx context.Context, tenantID int64, event *ledger.AuditEvent) error {
	return appendAudit(r.db.DB.WithContext(ctx), tenantID, event)
}

// txLedgerRepository implements ledger.TxRepository bound to one transaction
// and one tenant partition.
type txLedgerRepository struct {
	tx       *gorm.DB
	tenantID int64
}

// ReserveNext locks the counter row and advances both sequences
func (r *txLedgerRepository) ReserveNext() (int64, int64, error) {
	row, err := r.lockCounter()
	if err != nil {
		return 0, 0, err
	}
	invoiceNumber := row.LastInvoiceNumber + 1
	controlNumber := row.LastControlNumber + 1
	err = r.tx.Table(partitionTable(r.tenantID, tableCounter)).
		Where("id = ?", counterRowID).
		Updates(map[string]any{
			"ultimo_numero_factura": invoiceNumber,
			"ultimo_numero_control": controlNumber,
			"fecha_actualizacion":   time.Now(),
		}).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to advance counter: %w", err)
	}
	return invoiceNumber, controlNumber, nil
}

// ReserveControl locks the counter row and advances only the control sequence
func (r *txLedgerRepository) ReserveControl() (int64, error) {
	row, err := r.lockCounter()
	if err != nil {
		return 0, err
	}
	controlNumber := row.LastControlNumber + 1
	err = r.tx.Table(partitionTable(r.tenantID, tableCounter)).
		Where("id = ?", counterRowID).
		Updates(map[string]any{
			"ultimo_numero_control": controlNumber,
			"fecha_actualizacion":   time.Now(),
		}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance control counter: %w", err)
	}
	return controlNumber, nil
}

// lockCounter takes the FOR UPDATE lock on the single counter row. The lock
// is released when the owning transaction ends.
func (r *txLedgerRepository) lockCounter() (*models.CounterModel, error) {
	var row models.CounterModel
	err := r.tx.Table(partitionTable(r.tenantID, tableCounter)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", counterRowID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrCounterMissing
	}
	if isLockTimeout(err) {
		return nil, shared.ErrConcurrencyTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock counter row: %w", err)
	}
	return &row, nil
}

// LastHash returns the hash of the newest invoice, nil for an empty partition
func (r *txLedgerRepository) LastHash() (*string, error) {
	var row models.InvoiceModel
	err := r.tx.Table(partitionTable(r.tenantID, tableInvoices)).
		Select("hash").
		Order("id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last invoice hash: %w", err)
	}
	hash := row.Hash
	return &hash, nil
}

// CreateInvoice inserts the invoice row and all line item rows
func (r *txLedgerRepository) CreateInvoice(inv *ledger.Invoice) error {
	var row models.InvoiceModel
	row.FromDomain(inv)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	err := r.tx.Table(partitionTable(r.tenantID, tableInvoices)).Create(&row).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	inv.ID = row.ID
	inv.CreatedAt = row.CreatedAt

	for i := range inv.Items {
		var itemRow models.LineItemModel
		itemRow.FromDomain(inv.Items[i], inv.ID)
		itemRow.ID = 0
		if err := r.tx.Table(partitionTable(r.tenantID, tableLineItems)).Create(&itemRow).Error; err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
		inv.Items[i].ID = itemRow.ID
		inv.Items[i].InvoiceID = inv.ID
	}
	return nil
}

// FindInvoiceForUpdate loads an invoice by id under an exclusive row lock
func (r *txLedgerRepository) FindInvoiceForUpdate(invoiceID int64) (*ledger.Invoice, error) {
	var row models.InvoiceModel
	err := r.tx.Table(partitionTable(r.tenantID, tableInvoices)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", invoiceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if isLockTimeout(err) {
		return nil, shared.ErrConcurrencyTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoice %d: %w", invoiceID, err)
	}

	inv := row.ToDomain()
	items, err := loadLineItems(r.tx, r.tenantID, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// SumActiveCredits totals non-voided credit notes applied to the invoice
func (r *txLedgerRepository) SumActiveCredits(invoiceID int64) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.tx.Table(partitionTable(r.tenantID, tableNotes)).
		Select("COALESCE(SUM(monto_afectado), 0) AS total").
		Where("factura_id = ? AND tipo = ? AND estado <> ?",
			invoiceID, ledger.NoteTypeCredit.String(), string(ledger.NoteStatusVoided)).
		Take(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum credit notes for invoice %d: %w", invoiceID, err)
	}
	return result.Total, nil
}

// CreateNote inserts the note row
func (r *txLedgerRepository) CreateNote(note *ledger.Note) error {
	var row models.NoteModel
	row.FromDomain(note)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := r.tx.Table(partitionTable(r.tenantID, tableNotes)).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	note.ID = row.ID
	note.CreatedAt = row.CreatedAt
	return nil
}

// MarkInvoiceVoided transitions the invoice to the voided status
func (r *txLedgerRepository) MarkInvoiceVoided(invoiceID int64) error {
	result := r.tx.Table(partitionTable(r.tenantID, tableInvoices)).
		Where("id = ?", invoiceID).
		Update("estado", ledger.InvoiceStatusVoided.String())
	if result.Error != nil {
		return fmt.Errorf("failed to void invoice %d: %w", invoiceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AppendAudit writes an audit event inside the transaction
func (r *txLedgerRepository) AppendAudit(event *ledger.AuditEvent) error {
	return appendAudit(r.tx, r.tenantID, event)
}

func appendAudit(db *gorm.DB, tenantID int64, event *ledger.AuditEvent) error {
	var row models.AuditEventModel
	row.FromDomain(event)
	if row.At.IsZero() {
		row.At = time.Now()
	}
	if err := db.Table(partitionTable(tenantID, tableAuditEvents)).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	event.ID = row.ID
	event.At = row.At
	return nil
}

func loadLineItems(db *gorm.DB, tenantID, invoiceID int64) ([]ledger.LineItem, error) {
	var rows []models.LineItemModel
	err := db.Table(partitionTable(tenantID, tableLineItems)).
		Where("factura_id = ?", invoiceID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load line items for invoice %d: %w", invoiceID, err)
	}
	items := make([]ledger.LineItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, nil
}
