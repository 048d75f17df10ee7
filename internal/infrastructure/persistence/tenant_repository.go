package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/facturo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements tenant.Repository and tenant.Registrar. The
// directory table lives in the public schema; registration provisions the
// tenant's partition in the same transaction as the directory insert.
type GormTenantRepository struct {
	db          *Database
	provisioner *PartitionProvisioner
}

// NewGormTenantRepository creates a new tenant repository
func NewGormTenantRepository(db *Database, provisioner *PartitionProvisioner) *GormTenantRepository {
	return &GormTenantRepository{db: db, provisioner: provisioner}
}

// FindByID returns a tenant by its numeric identifier
func (r *GormTenantRepository) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	var row models.TenantModel
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant %d: %w", id, err)
	}
	return row.ToDomain(), nil
}

// FindByAPIKey resolves an API credential to its tenant
func (r *GormTenantRepository) FindByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	var row models.TenantModel
	err := r.db.DB.WithContext(ctx).Where("api_key = ?", apiKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve api key: %w", err)
	}
	return row.ToDomain(), nil
}

// Deactivate sets active=false, leaving the partition untouched
func (r *GormTenantRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"activo":              false,
			"fecha_actualizacion": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate tenant %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Register inserts the tenant, provisions its partition and seeds the first
// authorized user, all in one transaction. A duplicate RIF or API key maps to
// shared.ErrAlreadyExists; provisioning failures surface unwrapped as
// *shared.ProvisionError and roll back the directory insert.
func (r *GormTenantRepository) Register(ctx context.Context, t *tenant.Tenant, bootstrap *tenant.BootstrapUser) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.TenantModel
		row.FromDomain(t)
		now := time.Now()
		row.CreatedAt = now
		row.UpdatedAt = now

		err := tx.Create(&row).Error
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to insert tenant: %w", err)
		}
		t.ID = row.ID
		t.CreatedAt = row.CreatedAt
		t.UpdatedAt = row.UpdatedAt

		if err := r.provisioner.ProvisionInTx(tx, t.ID); err != nil {
			return err
		}

		if bootstrap != nil {
			userRow := models.AuthorizedUserModel{
				Name:         bootstrap.Name,
				Email:        bootstrap.Email,
				PasswordHash: bootstrap.PasswordHash,
				Active:       true,
				CreatedAt:    now,
			}
			err := tx.Table(partitionTable(t.ID, tableAuthorizedUsers)).Create(&userRow).Error
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			if err != nil {
				return fmt.Errorf("failed to insert bootstrap user: %w", err)
			}
		}
		return nil
	})
}
