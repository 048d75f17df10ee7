package models

import (
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CounterModel is the single-row sequence counter of a tenant partition.
// The CHECK constraint on id pins it to one row.
type CounterModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	LastInvoiceNumber int64     `gorm:"column:ultimo_numero_factura"`
	LastControlNumber int64     `gorm:"column:ultimo_numero_control"`
	UpdatedAt         time.Time `gorm:"column:fecha_actualizacion"`
}

// InvoiceModel is the persistence model for an invoice row
type InvoiceModel struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Number        string          `gorm:"column:numero_factura"`
	ControlNumber string          `gorm:"column:numero_control"`
	IssuerRIF     string          `gorm:"column:rif_emisor"`
	IssuerName    string          `gorm:"column:razon_social_emisor"`
	RecipientRIF  string          `gorm:"column:rif_receptor"`
	RecipientName string          `gorm:"column:razon_social_receptor"`
	IssueDate     time.Time       `gorm:"column:fecha_emision"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:decimal(15,2)"`
	Tax           decimal.Decimal `gorm:"column:iva;type:decimal(15,2)"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(15,2)"`
	Status        string          `gorm:"column:estado"`
	RegisterID    string          `gorm:"column:caja_id"`
	PrinterID     string          `gorm:"column:impresora_fiscal"`
	PreviousHash  *string         `gorm:"column:hash_anterior"`
	Hash          string          `gorm:"column:hash"`
	CreatedAt     time.Time       `gorm:"column:fecha_creacion"`
}

// LineItemModel is the persistence model for one invoice line
type LineItemModel struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	InvoiceID   int64           `gorm:"column:factura_id"`
	Description string          `gorm:"column:descripcion"`
	Quantity    decimal.Decimal `gorm:"column:cantidad;type:decimal(10,2)"`
	UnitPrice   decimal.Decimal `gorm:"column:precio_unitario;type:decimal(15,2)"`
	Total       decimal.Decimal `gorm:"column:monto_total;type:decimal(15,2)"`
}

// NoteModel is the persistence model for a credit or debit note row
type NoteModel struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	InvoiceID     int64           `gorm:"column:factura_id"`
	Type          string          `gorm:"column:tipo"`
	Reason        string          `gorm:"column:motivo"`
	Amount        decimal.Decimal `gorm:"column:monto_afectado;type:decimal(15,2)"`
	ControlNumber string          `gorm:"column:numero_control"`
	IssueDate     time.Time       `gorm:"column:fecha_emision"`
	Status        string          `gorm:"column:estado"`
	CreatedBy     string          `gorm:"column:creado_por"`
	CreatedAt     time.Time       `gorm:"column:fecha_creacion"`
}

// AuditEventModel is the persistence model for an event log row
type AuditEventModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Action    string    `gorm:"column:accion"`
	Entity    string    `gorm:"column:entidad"`
	EntityID  *int64    `gorm:"column:entidad_id"`
	Detail    string    `gorm:"column:detalle"`
	Actor     string    `gorm:"column:usuario"`
	Origin    string    `gorm:"column:ip"`
	UserAgent string    `gorm:"column:user_agent"`
	At        time.Time `gorm:"column:fecha"`
}

// AuthorizedUserModel is the persistence model for a partition-local user
type AuthorizedUserModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:nombre"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Active       bool      `gorm:"column:activo"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion"`
}

// ToDomain converts the persistence model to a domain Invoice. Line items are
// attached by the repository after loading them separately.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		ID:            m.ID,
		Number:        m.Number,
		ControlNumber: m.ControlNumber,
		IssuerRIF:     m.IssuerRIF,
		IssuerName:    m.IssuerName,
		RecipientRIF:  m.RecipientRIF,
		RecipientName: m.RecipientName,
		IssueDate:     m.IssueDate,
		Subtotal:      m.Subtotal,
		Tax:           m.Tax,
		Total:         m.Total,
		Status:        ledger.InvoiceStatus(m.Status),
		RegisterID:    m.RegisterID,
		PrinterID:     m.PrinterID,
		PreviousHash:  m.PreviousHash,
		Hash:          m.Hash,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.ID = inv.ID
	m.Number = inv.Number
	m.ControlNumber = inv.ControlNumber
	m.IssuerRIF = inv.IssuerRIF
	m.IssuerName = inv.IssuerName
	m.RecipientRIF = inv.RecipientRIF
	m.RecipientName = inv.RecipientName
	m.IssueDate = inv.IssueDate
	m.Subtotal = inv.Subtotal
	m.Tax = inv.Tax
	m.Total = inv.Total
	m.Status = inv.Status.String()
	m.RegisterID = inv.RegisterID
	m.PrinterID = inv.PrinterID
	m.PreviousHash = inv.PreviousHash
	m.Hash = inv.Hash
	m.CreatedAt = inv.CreatedAt
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain() ledger.LineItem {
	return ledger.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Total:       m.Total,
	}
}

// FromDomain populates the persistence model from a domain LineItem
func (m *LineItemModel) FromDomain(item ledger.LineItem, invoiceID int64) {
	m.ID = item.ID
	m.InvoiceID = invoiceID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Total = item.Total
}

// ToDomain converts the persistence model to a domain Note
func (m *NoteModel) ToDomain() *ledger.Note {
	return &ledger.Note{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		Type:          ledger.NoteType(m.Type),
		Reason:        m.Reason,
		Amount:        m.Amount,
		ControlNumber: m.ControlNumber,
		IssueDate:     m.IssueDate,
		Status:        ledger.NoteStatus(m.Status),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Note
func (m *NoteModel) FromDomain(note *ledger.Note) {
	m.ID = note.ID
	m.InvoiceID = note.InvoiceID
	m.Type = note.Type.String()
	m.Reason = note.Reason
	m.Amount = note.Amount
	m.ControlNumber = note.ControlNumber
	m.IssueDate = note.IssueDate
	m.Status = string(note.Status)
	m.CreatedBy = note.CreatedBy
	m.CreatedAt = note.CreatedAt
}

// ToDomain converts the persistence model to a domain AuditEvent
func (m *AuditEventModel) ToDomain() *ledger.AuditEvent {
	return &ledger.AuditEvent{
		ID:        m.ID,
		Action:    m.Action,
		Entity:    m.Entity,
		EntityID:  m.EntityID,
		Detail:    m.Detail,
		Actor:     m.Actor,
		Origin:    m.Origin,
		UserAgent: m.UserAgent,
		At:        m.At,
	}
}

// FromDomain populates the persistence model from a domain AuditEvent
func (m *AuditEventModel) FromDomain(event *ledger.AuditEvent) {
	m.ID = event.ID
	m.Action = event.Action
	m.Entity = event.Entity
	m.EntityID = event.EntityID
	m.Detail = event.Detail
	m.Actor = event.Actor
	m.Origin = event.Origin
	m.UserAgent = event.UserAgent
	m.At = event.At
}
