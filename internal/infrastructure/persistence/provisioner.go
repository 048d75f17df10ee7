package persistence

import (
	"context"
	"fmt"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartitionProvisioner creates tenant partition schemas. All DDL for one
// partition runs in a single transaction and the statement set is idempotent,
// so a retried registration converges instead of failing or duplicating.
type PartitionProvisioner struct {
	db        *Database
	grantRole string
	logger    *zap.Logger
}

// NewPartitionProvisioner creates a partition provisioner. grantRole is the
// database role granted DML on the new partition; empty skips grants.
func NewPartitionProvisioner(db *Database, grantRole string, logger *zap.Logger) *PartitionProvisioner {
	return &PartitionProvisioner{
		db:        db,
		grantRole: grantRole,
		logger:    logger.Named("provisioner"),
	}
}

// Provision creates the tenant's partition in its own transaction
func (p *PartitionProvisioner) Provision(ctx context.Context, tenantID int64) error {
	err := p.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return p.provision(tx, tenantID)
	})
	if err != nil {
		return &shared.ProvisionError{TenantID: tenantID, Cause: err}
	}
	return nil
}

// ProvisionInTx creates the tenant's partition inside an existing transaction,
// so tenant registration and partition creation commit or roll back together.
func (p *PartitionProvisioner) ProvisionInTx(tx *gorm.DB, tenantID int64) error {
	if err := p.provision(tx, tenantID); err != nil {
		return &shared.ProvisionError{TenantID: tenantID, Cause: err}
	}
	return nil
}

func (p *PartitionProvisioner) provision(tx *gorm.DB, tenantID int64) error {
	for _, stmt := range p.statements(tenantID) {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("partition DDL failed: %w", err)
		}
	}
	p.logger.Info("partition provisioned",
		zap.Int64("tenant_id", tenantID),
		zap.String("schema", SchemaName(tenantID)),
	)
	return nil
}

// statements builds the ordered, idempotent DDL set for one partition. Table
// references are quoted; index names embed the tenant ID so log lines and
// pg_indexes stay unambiguous across partitions.
func (p *PartitionProvisioner) statements(tenantID int64) []string {
	schema := pq.QuoteIdentifier(SchemaName(tenantID))
	counter := partitionTable(tenantID, tableCounter)
	invoices := partitionTable(tenantID, tableInvoices)
	lineItems := partitionTable(tenantID, tableLineItems)
	notes := partitionTable(tenantID, tableNotes)
	users := partitionTable(tenantID, tableAuthorizedUsers)
	events := partitionTable(tenantID, tableAuditEvents)

	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY DEFAULT %d CHECK (id = %d),
			ultimo_numero_factura BIGINT NOT NULL DEFAULT 0,
			ultimo_numero_control BIGINT NOT NULL DEFAULT 0,
			fecha_actualizacion TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, counter, counterRowID, counterRowID),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			numero_factura VARCHAR(50) NOT NULL UNIQUE,
			numero_control VARCHAR(50) NOT NULL,
			rif_emisor VARCHAR(20) NOT NULL,
			razon_social_emisor VARCHAR(255) NOT NULL,
			rif_receptor VARCHAR(20) NOT NULL,
			razon_social_receptor VARCHAR(255) NOT NULL,
			fecha_emision DATE NOT NULL,
			subtotal DECIMAL(15,2) NOT NULL,
			iva DECIMAL(15,2) NOT NULL DEFAULT 0,
			total DECIMAL(15,2) NOT NULL,
			estado VARCHAR(20) NOT NULL DEFAULT 'registrada',
			caja_id VARCHAR(10),
			impresora_fiscal VARCHAR(50),
			hash_anterior CHAR(64),
			hash CHAR(64) NOT NULL,
			fecha_creacion TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, invoices),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			factura_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			descripcion TEXT NOT NULL,
			cantidad DECIMAL(10,2) NOT NULL,
			precio_unitario DECIMAL(15,2) NOT NULL,
			monto_total DECIMAL(15,2) NOT NULL
		)`, lineItems, invoices),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			factura_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			tipo VARCHAR(10) NOT NULL,
			motivo TEXT NOT NULL,
			monto_afectado DECIMAL(15,2) NOT NULL,
			numero_control VARCHAR(50) NOT NULL,
			fecha_emision DATE NOT NULL,
			estado VARCHAR(20) NOT NULL DEFAULT 'emitida',
			creado_por VARCHAR(100),
			fecha_creacion TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, notes, invoices),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			activo BOOLEAN NOT NULL DEFAULT TRUE,
			fecha_creacion TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, users),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			accion VARCHAR(50) NOT NULL,
			entidad VARCHAR(50) NOT NULL,
			entidad_id BIGINT,
			detalle TEXT,
			usuario VARCHAR(100),
			ip VARCHAR(45),
			user_agent TEXT,
			fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, events),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (fecha_emision)`,
			pq.QuoteIdentifier(fmt.Sprintf("idx_facturas_fecha_%d", tenantID)), invoices),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (estado)`,
			pq.QuoteIdentifier(fmt.Sprintf("idx_facturas_estado_%d", tenantID)), invoices),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (factura_id)`,
			pq.QuoteIdentifier(fmt.Sprintf("idx_detalles_factura_%d", tenantID)), lineItems),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (factura_id)`,
			pq.QuoteIdentifier(fmt.Sprintf("idx_notas_factura_%d", tenantID)), notes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (fecha)`,
			pq.QuoteIdentifier(fmt.Sprintf("idx_eventos_fecha_%d", tenantID)), events),

		// Seed exactly one counter row; reruns leave an advanced counter alone
		fmt.Sprintf(`INSERT INTO %s (id, ultimo_numero_factura, ultimo_numero_control)
			VALUES (%d, 0, 0) ON CONFLICT (id) DO NOTHING`, counter, counterRowID),
	}

	if p.grantRole != "" {
		role := pq.QuoteIdentifier(p.grantRole)
		stmts = append(stmts,
			fmt.Sprintf(`GRANT USAGE ON SCHEMA %s TO %s`, schema, role),
			fmt.Sprintf(`GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA %s TO %s`, schema, role),
			fmt.Sprintf(`GRANT USAGE, SELECT ON ALL SEQUENCES IN SCHEMA %s TO %s`, schema, role),
		)
	}
	return stmts
}
