package ledger

import (
	"context"
	"time"
)

// RegisterSession is the ephemeral per-tenant caja state. An invoice can
// only be issued while a session exists; absence of state means closed.
type RegisterSession struct {
	TenantID   int64     `json:"tenant_id"`
	RegisterID string    `json:"caja_id"`
	PrinterID  string    `json:"impresora_fiscal"`
	Operator   string    `json:"operador"`
	OpenedAt   time.Time `json:"fecha_apertura"`
}

// SessionStore is the external register session store. Implementations must
// provide atomic set-if-absent semantics for Open and a bounded session
// lifetime; an expired session is equivalent to an explicit close.
type SessionStore interface {
	// Open stores the session, failing with shared.ErrRegisterAlreadyOpen
	// when one already exists for the tenant.
	Open(ctx context.Context, session RegisterSession) error
	// Get returns the open session for the tenant, or nil when closed.
	Get(ctx context.Context, tenantID int64) (*RegisterSession, error)
	// Close removes the session, failing with shared.ErrRegisterNotOpen
	// when none exists.
	Close(ctx context.Context, tenantID int64) error
}
