package tenant

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterTenantInput carries a tenant onboarding request
type RegisterTenantInput struct {
	Name          string
	RIF           string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// RegisteredTenant is the onboarding result; the API key is returned exactly
// once, at registration.
type RegisteredTenant struct {
	Tenant *tenant.Tenant `json:"tenant"`
	APIKey string         `json:"api_key"`
}

// OnboardingService registers tenants: RIF format check, API credential
// generation, directory insert and partition provisioning as one
// all-or-nothing unit. A provisioning failure is fatal to the registration.
type OnboardingService struct {
	registrar tenant.Registrar
	repo      tenant.Repository
	validator tenant.RIFValidator
	logger    *zap.Logger
}

// NewOnboardingService creates an OnboardingService
func NewOnboardingService(registrar tenant.Registrar, repo tenant.Repository, validator tenant.RIFValidator, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{
		registrar: registrar,
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// Register onboards a new tenant and provisions its partition
func (s *OnboardingService) Register(ctx context.Context, input RegisterTenantInput) (*RegisteredTenant, error) {
	if !s.validator.IsValid(input.RIF) {
		return nil, shared.NewDomainError("INVALID_RIF", "RIF format is not valid")
	}

	apiKey := uuid.NewString()
	t, err := tenant.New(input.Name, input.RIF, apiKey)
	if err != nil {
		return nil, err
	}

	var bootstrap *tenant.BootstrapUser
	if input.AdminEmail != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		bootstrap = &tenant.BootstrapUser{
			Name:         input.AdminName,
			Email:        input.AdminEmail,
			PasswordHash: string(hash),
		}
	}

	if err := s.registrar.Register(ctx, t, bootstrap); err != nil {
		s.logger.Error("tenant registration failed",
			zap.String("rif", t.RIF), zap.Error(err))
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.Int64("tenant_id", t.ID),
		zap.String("rif", t.RIF),
	)
	return &RegisteredTenant{Tenant: t, APIKey: apiKey}, nil
}

// Deactivate turns off a tenant's access; its partition and data remain
func (s *OnboardingService) Deactivate(ctx context.Context, tenantID int64) error {
	if err := s.repo.Deactivate(ctx, tenantID); err != nil {
		return err
	}
	s.logger.Info("tenant deactivated", zap.Int64("tenant_id", tenantID))
	return nil
}

// Authorize resolves an API credential to an active tenant. Missing or
// inactive tenants short-circuit before any ledger logic runs.
func (s *OnboardingService) Authorize(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	if apiKey == "" {
		return nil, shared.ErrUnauthorized
	}
	t, err := s.repo.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !t.Active {
		return nil, shared.ErrForbidden
	}
	return t, nil
}
