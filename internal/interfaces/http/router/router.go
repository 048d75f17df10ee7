// Package router wires handlers and middleware onto the gin engine.
package router

import (
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/facturo/backend/internal/interfaces/http/handler"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds everything the router needs
type Config struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TenantAuth     middleware.TenantAuthorizer
	TracingEnabled bool
	ServiceName    string
	System         *handler.SystemHandler
	Tenants        *handler.TenantHandler
	Invoices       *handler.InvoiceHandler
	Notes          *handler.NoteHandler
	Registers      *handler.RegisterHandler
	Verification   *handler.VerificationHandler
}

// Setup builds the gin engine with the full middleware chain and route table.
// Ledger routes authenticate by tenant API key; the onboarding surface is
// gated by back-office operator tokens.
func Setup(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	if cfg.TracingEnabled {
		engine.Use(middleware.Tracing(cfg.ServiceName))
		engine.Use(middleware.TraceAttributes())
	}
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))

	engine.GET("/health", cfg.System.Health)
	engine.GET("/ready", cfg.System.Ready)

	api := engine.Group("/api/v1")

	admin := api.Group("/clientes")
	admin.Use(middleware.OperatorAuth(cfg.JWTService, auth.RoleAdmin))
	{
		admin.POST("", cfg.Tenants.Register)
		admin.DELETE("/:id", cfg.Tenants.Deactivate)
	}

	ledger := api.Group("")
	ledger.Use(middleware.TenantAuth(cfg.TenantAuth))
	{
		ledger.POST("/caja/abrir", cfg.Registers.Open)
		ledger.POST("/caja/cerrar", cfg.Registers.Close)
		ledger.GET("/caja/estado", cfg.Registers.Status)

		ledger.POST("/facturas", cfg.Invoices.Issue)
		ledger.GET("/facturas", cfg.Invoices.List)
		ledger.GET("/facturas/verificar", cfg.Verification.VerifyChain)
		ledger.GET("/facturas/verificar/:numero", cfg.Verification.VerifyInvoice)
		ledger.GET("/facturas/:numero", cfg.Invoices.Get)

		ledger.POST("/notas", cfg.Notes.Issue)
	}

	return engine
}
