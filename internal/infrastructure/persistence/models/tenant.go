package models

import (
	"time"

	"github.com/facturo/backend/internal/domain/tenant"
)

// TenantModel is the persistence model for the shared tenant directory.
// It lives in the public schema; everything else is partition-scoped.
type TenantModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:nombre;type:varchar(255);not null"`
	RIF       string    `gorm:"column:rif;type:varchar(20);not null;uniqueIndex"`
	APIKey    string    `gorm:"column:api_key;type:varchar(64);not null;uniqueIndex"`
	Active    bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:fecha_creacion"`
	UpdatedAt time.Time `gorm:"column:fecha_actualizacion"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "clientes"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *tenant.Tenant {
	return &tenant.Tenant{
		ID:        m.ID,
		Name:      m.Name,
		RIF:       m.RIF,
		APIKey:    m.APIKey,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *tenant.Tenant) {
	m.ID = t.ID
	m.Name = t.Name
	m.RIF = t.RIF
	m.APIKey = t.APIKey
	m.Active = t.Active
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}
