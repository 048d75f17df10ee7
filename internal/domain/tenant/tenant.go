package tenant

import (
	"strings"
	"time"

	"github.com/facturo/backend/internal/domain/shared"
)

// Tenant is an onboarded business (cliente). It owns exactly one storage
// partition named deterministically from its numeric identifier. A tenant is
// created once at registration and never recreated; deactivation flips
// Active and leaves the partition in place.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RIF       string    `json:"rif"`
	APIKey    string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New validates and builds an unregistered tenant. The RIF format itself is
// checked by the external validator before this point; here only presence
// and length are enforced.
func New(name, rif, apiKey string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	rif = strings.ToUpper(strings.TrimSpace(rif))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant legal name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant legal name cannot exceed 255 characters")
	}
	if rif == "" {
		return nil, shared.NewDomainError("INVALID_RIF", "RIF cannot be empty")
	}
	if len(rif) > 20 {
		return nil, shared.NewDomainError("INVALID_RIF", "RIF cannot exceed 20 characters")
	}
	if apiKey == "" {
		return nil, shared.NewDomainError("INVALID_API_KEY", "API key cannot be empty")
	}
	return &Tenant{
		Name:   name,
		RIF:    rif,
		APIKey: apiKey,
		Active: true,
	}, nil
}

// Deactivate flips the active flag. The partition is retained.
func (t *Tenant) Deactivate() {
	t.Active = false
}

// RIFValidator is the external tax-ID format validator, consulted only
// during onboarding.
type RIFValidator interface {
	IsValid(rif string) bool
}

// BootstrapUser is the first authorized user written into a freshly
// provisioned partition.
type BootstrapUser struct {
	Name         string
	Email        string
	PasswordHash string
}
