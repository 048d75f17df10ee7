package persistence

import (
	"fmt"

	"github.com/lib/pq"
)

// Partition table names. Every tenant partition carries exactly this set.
const (
	tableCounter         = "contador"
	tableInvoices        = "facturas"
	tableLineItems       = "detalles_factura"
	tableNotes           = "notas_credito_debito"
	tableAuthorizedUsers = "usuarios_autorizados"
	tableAuditEvents     = "registro_eventos"
)

// counterRowID is the fixed primary key of the single counter row
const counterRowID = 1

// SchemaName returns the partition schema for a tenant, e.g. cliente_42
func SchemaName(tenantID int64) string {
	return fmt.Sprintf("cliente_%d", tenantID)
}

// partitionTable returns a fully qualified, quoted table reference inside the
// tenant's partition schema. Identifiers are always quoted so the tenant ID
// can never change the shape of the statement.
func partitionTable(tenantID int64, table string) string {
	return pq.QuoteIdentifier(SchemaName(tenantID)) + "." + pq.QuoteIdentifier(table)
}
