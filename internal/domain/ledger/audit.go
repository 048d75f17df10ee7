package ledger

import "time"

// Audit action names, kept identical to the values recorded in partitions
// provisioned by earlier releases.
const (
	ActionCreateInvoice = "crear_factura"
	ActionVerifyInvoice = "verificar_factura"
	ActionOpenRegister  = "apertura_caja"
	ActionCloseRegister = "cierre_caja"
	ActionCreditVoid    = "emitir_nota_credito_anulacion"
	ActionCreditPartial = "emitir_nota_credito_parcial"
	ActionDebitNote     = "emitir_nota_debito"
)

// Audited entity types
const (
	EntityInvoice  = "factura"
	EntityNote     = "nota"
	EntityRegister = "caja"
)

// AuditEvent is one append-only row in a tenant's event log. Events are
// never updated or deleted by normal operation, and inserts participate in
// the same transaction as the mutation they describe.
type AuditEvent struct {
	ID        int64     `json:"id"`
	Action    string    `json:"accion"`
	Entity    string    `json:"entidad"`
	EntityID  *int64    `json:"entidad_id"`
	Detail    string    `json:"detalle"`
	Actor     string    `json:"usuario"`
	Origin    string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	At        time.Time `json:"fecha"`
}
