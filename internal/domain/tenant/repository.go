package tenant

import "context"

// Repository is the persistence contract for the shared tenant directory
type Repository interface {
	// FindByID returns a tenant by its numeric identifier
	FindByID(ctx context.Context, id int64) (*Tenant, error)

	// FindByAPIKey resolves an API credential to its tenant. Used to
	// authorize every ledger operation; returns shared.ErrNotFound for
	// unknown credentials.
	FindByAPIKey(ctx context.Context, apiKey string) (*Tenant, error)

	// Deactivate sets active=false, leaving the partition untouched
	Deactivate(ctx context.Context, id int64) error
}

// Provisioner creates a tenant's isolated storage partition. Provisioning is
// idempotent and all-or-nothing; failures surface as *shared.ProvisionError
// and must abort the registration that triggered them.
type Provisioner interface {
	Provision(ctx context.Context, tenantID int64) error
}

// Registrar persists a new tenant and provisions its partition as one
// all-or-nothing unit. A tenant is never observable as registered without a
// working partition.
type Registrar interface {
	Register(ctx context.Context, t *Tenant, bootstrap *BootstrapUser) error
}
