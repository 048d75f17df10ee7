package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"go.uber.org/zap"
)

// OpenRegisterInput carries a register open request
type OpenRegisterInput struct {
	RegisterID string
	PrinterID  string
	Operator   string
	Origin     string
	UserAgent  string
}

// RegisterService manages the per-tenant caja session that gates invoice
// issuance. The session lives in an external store with a bounded TTL;
// concurrent opens are serialized by the store's set-if-absent semantics.
type RegisterService struct {
	sessions ledger.SessionStore
	repo     ledger.Repository
	logger   *zap.Logger
}

// NewRegisterService creates a RegisterService
func NewRegisterService(sessions ledger.SessionStore, repo ledger.Repository, logger *zap.Logger) *RegisterService {
	return &RegisterService{sessions: sessions, repo: repo, logger: logger}
}

// Open starts a register session, failing when one is already open
func (s *RegisterService) Open(ctx context.Context, t *tenant.Tenant, input OpenRegisterInput) (*ledger.RegisterSession, error) {
	registerID := strings.ToUpper(strings.TrimSpace(input.RegisterID))
	printerID := strings.TrimSpace(input.PrinterID)
	if registerID == "" || printerID == "" {
		return nil, shared.NewDomainError("INVALID_REGISTER", "Register id and fiscal printer id are required")
	}

	session := ledger.RegisterSession{
		TenantID:   t.ID,
		RegisterID: registerID,
		PrinterID:  printerID,
		Operator:   input.Operator,
		OpenedAt:   time.Now(),
	}
	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, err
	}

	if err := s.repo.AppendAudit(ctx, t.ID, &ledger.AuditEvent{
		Action:    ledger.ActionOpenRegister,
		Entity:    ledger.EntityRegister,
		Detail:    fmt.Sprintf("Caja %s abierta con impresora %s", registerID, printerID),
		Actor:     input.Operator,
		Origin:    input.Origin,
		UserAgent: input.UserAgent,
	}); err != nil {
		s.logger.Error("failed to record register open event",
			zap.Int64("tenant_id", t.ID), zap.Error(err))
	}

	s.logger.Info("register opened",
		zap.Int64("tenant_id", t.ID),
		zap.String("caja_id", registerID),
	)
	return &session, nil
}

// Close ends the tenant's register session, failing when none is open
func (s *RegisterService) Close(ctx context.Context, t *tenant.Tenant, operator, origin, userAgent string) error {
	if err := s.sessions.Close(ctx, t.ID); err != nil {
		return err
	}

	if err := s.repo.AppendAudit(ctx, t.ID, &ledger.AuditEvent{
		Action:    ledger.ActionCloseRegister,
		Entity:    ledger.EntityRegister,
		Detail:    "Caja cerrada",
		Actor:     operator,
		Origin:    origin,
		UserAgent: userAgent,
	}); err != nil {
		s.logger.Error("failed to record register close event",
			zap.Int64("tenant_id", t.ID), zap.Error(err))
	}

	s.logger.Info("register closed", zap.Int64("tenant_id", t.ID))
	return nil
}

// Status returns the open session, or nil when the register is closed
func (s *RegisterService) Status(ctx context.Context, tenantID int64) (*ledger.RegisterSession, error) {
	return s.sessions.Get(ctx, tenantID)
}
