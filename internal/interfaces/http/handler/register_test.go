package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appledger "github.com/facturo/backend/internal/application/ledger"
	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/facturo/backend/internal/infrastructure/session"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubLedgerRepository satisfies ledger.Repository for handler tests that
// never reach the transactional surface.
type stubLedgerRepository struct {
	events []*ledger.AuditEvent
}

func (r *stubLedgerRepository) InTransaction(ctx context.Context, tenantID int64, fn func(tx ledger.TxRepository) error) error {
	return nil
}

func (r *stubLedgerRepository) ListInvoices(ctx context.Context, tenantID int64) ([]*ledger.Invoice, error) {
	return nil, nil
}

func (r *stubLedgerRepository) FindInvoiceByNumber(ctx context.Context, tenantID int64, number string) (*ledger.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *stubLedgerRepository) AppendAudit(ctx context.Context, tenantID int64, event *ledger.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func withTenant(t *tenant.Tenant) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.TenantContextKey, t)
		c.Next()
	}
}

func newRegisterRouter() (*gin.Engine, *session.MemoryStore) {
	repo := &stubLedgerRepository{}
	sessions := session.NewMemoryStore(time.Hour)
	h := NewRegisterHandler(appledger.NewRegisterService(sessions, repo, zap.NewNop()))

	tn := &tenant.Tenant{ID: 1, Name: "Comercial Demo C.A.", RIF: "J-12345678-9", Active: true}
	router := gin.New()
	router.Use(middleware.RequestID(), withTenant(tn))
	router.POST("/caja/abrir", h.Open)
	router.POST("/caja/cerrar", h.Close)
	router.GET("/caja/estado", h.Status)
	return router, sessions
}

func TestRegisterHandlerOpen(t *testing.T) {
	t.Run("opens a session", func(t *testing.T) {
		router, _ := newRegisterRouter()
		body := `{"caja_id":"CAJA1","impresora_fiscal":"Z1B2345678","operador":"operador1"}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/abrir", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		router, _ := newRegisterRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/abrir", strings.NewReader(`{"caja_id":"CAJA1"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("double open conflicts", func(t *testing.T) {
		router, _ := newRegisterRouter()
		body := `{"caja_id":"CAJA1","impresora_fiscal":"Z1B2345678"}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/abrir", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/abrir", strings.NewReader(body)))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestRegisterHandlerClose(t *testing.T) {
	t.Run("closes an open session without a body", func(t *testing.T) {
		router, sessions := newRegisterRouter()
		require.NoError(t, sessions.Open(context.Background(), ledger.RegisterSession{
			TenantID: 1, RegisterID: "CAJA1", PrinterID: "Z1B2345678", OpenedAt: time.Now(),
		}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/cerrar", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("closing a closed register conflicts", func(t *testing.T) {
		router, _ := newRegisterRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/caja/cerrar", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestRegisterHandlerStatus(t *testing.T) {
	router, sessions := newRegisterRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/caja/estado", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"abierta":false`)

	require.NoError(t, sessions.Open(context.Background(), ledger.RegisterSession{
		TenantID: 1, RegisterID: "CAJA1", PrinterID: "Z1B2345678", OpenedAt: time.Now(),
	}))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/caja/estado", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"abierta":true`)
	assert.Contains(t, w.Body.String(), `"caja_id":"CAJA1"`)
}
