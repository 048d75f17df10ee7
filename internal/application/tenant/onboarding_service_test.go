package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeDirectory implements tenant.Repository and tenant.Registrar over a map
type fakeDirectory struct {
	nextID      int64
	byAPIKey    map[string]*tenant.Tenant
	byID        map[int64]*tenant.Tenant
	bootstraps  map[int64]*tenant.BootstrapUser
	registerErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byAPIKey:   make(map[string]*tenant.Tenant),
		byID:       make(map[int64]*tenant.Tenant),
		bootstraps: make(map[int64]*tenant.BootstrapUser),
	}
}

func (d *fakeDirectory) Register(ctx context.Context, t *tenant.Tenant, bootstrap *tenant.BootstrapUser) error {
	if d.registerErr != nil {
		return d.registerErr
	}
	d.nextID++
	t.ID = d.nextID
	d.byAPIKey[t.APIKey] = t
	d.byID[t.ID] = t
	if bootstrap != nil {
		d.bootstraps[t.ID] = bootstrap
	}
	return nil
}

func (d *fakeDirectory) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	t, ok := d.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (d *fakeDirectory) FindByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	t, ok := d.byAPIKey[apiKey]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (d *fakeDirectory) Deactivate(ctx context.Context, id int64) error {
	t, ok := d.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	t.Active = false
	return nil
}

var (
	_ tenant.Repository = (*fakeDirectory)(nil)
	_ tenant.Registrar  = (*fakeDirectory)(nil)
)

func newOnboardingFixture() (*OnboardingService, *fakeDirectory) {
	dir := newFakeDirectory()
	return NewOnboardingService(dir, dir, FormatRIFValidator{}, zap.NewNop()), dir
}

func TestRegister(t *testing.T) {
	t.Run("registers tenant and returns the API key once", func(t *testing.T) {
		svc, dir := newOnboardingFixture()

		result, err := svc.Register(context.Background(), RegisterTenantInput{
			Name: "Comercial Demo C.A.",
			RIF:  "J-12345678-9",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.APIKey)
		assert.Equal(t, result.APIKey, result.Tenant.APIKey)
		assert.True(t, result.Tenant.Active)
		assert.NotZero(t, result.Tenant.ID)
		assert.Empty(t, dir.bootstraps)
	})

	t.Run("hashes the bootstrap admin password", func(t *testing.T) {
		svc, dir := newOnboardingFixture()

		result, err := svc.Register(context.Background(), RegisterTenantInput{
			Name:          "Comercial Demo C.A.",
			RIF:           "J-12345678-9",
			AdminName:     "Ana",
			AdminEmail:    "ana@demo.com",
			AdminPassword: "secreto-123",
		})
		require.NoError(t, err)

		bootstrap := dir.bootstraps[result.Tenant.ID]
		require.NotNil(t, bootstrap)
		assert.Equal(t, "ana@demo.com", bootstrap.Email)
		assert.NotEqual(t, "secreto-123", bootstrap.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(bootstrap.PasswordHash), []byte("secreto-123")))
	})

	t.Run("rejects an invalid RIF", func(t *testing.T) {
		svc, dir := newOnboardingFixture()

		_, err := svc.Register(context.Background(), RegisterTenantInput{
			Name: "Comercial Demo C.A.",
			RIF:  "X-123",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_RIF", domainErr.Code)
		assert.Empty(t, dir.byID)
	})

	t.Run("propagates registrar failure", func(t *testing.T) {
		svc, dir := newOnboardingFixture()
		dir.registerErr = shared.NewProvisionError(0, errors.New("schema creation failed"))

		_, err := svc.Register(context.Background(), RegisterTenantInput{
			Name: "Comercial Demo C.A.",
			RIF:  "J-12345678-9",
		})
		var provErr *shared.ProvisionError
		assert.ErrorAs(t, err, &provErr)
	})
}

func TestDeactivate(t *testing.T) {
	svc, dir := newOnboardingFixture()
	result, err := svc.Register(context.Background(), RegisterTenantInput{
		Name: "Comercial Demo C.A.",
		RIF:  "J-12345678-9",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), result.Tenant.ID))
	assert.False(t, dir.byID[result.Tenant.ID].Active)

	assert.ErrorIs(t, svc.Deactivate(context.Background(), 999), shared.ErrNotFound)
}

func TestAuthorize(t *testing.T) {
	svc, _ := newOnboardingFixture()
	result, err := svc.Register(context.Background(), RegisterTenantInput{
		Name: "Comercial Demo C.A.",
		RIF:  "J-12345678-9",
	})
	require.NoError(t, err)

	t.Run("valid credential resolves the tenant", func(t *testing.T) {
		tn, err := svc.Authorize(context.Background(), result.APIKey)
		require.NoError(t, err)
		assert.Equal(t, result.Tenant.ID, tn.ID)
	})

	t.Run("empty credential", func(t *testing.T) {
		_, err := svc.Authorize(context.Background(), "")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("unknown credential", func(t *testing.T) {
		_, err := svc.Authorize(context.Background(), "no-such-key")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("deactivated tenant is forbidden", func(t *testing.T) {
		require.NoError(t, svc.Deactivate(context.Background(), result.Tenant.ID))
		_, err := svc.Authorize(context.Background(), result.APIKey)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
