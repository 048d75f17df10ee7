package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/domain/tenant"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Tenant authentication keys
const (
	// APIKeyHeader carries the tenant credential issued at registration
	APIKeyHeader = "X-API-Key"
	// TenantContextKey is the gin context key for the resolved tenant
	TenantContextKey = "tenant"
)

// TenantAuthorizer resolves an API credential to an active tenant
type TenantAuthorizer interface {
	Authorize(ctx context.Context, apiKey string) (*tenant.Tenant, error)
}

// TenantAuth returns a middleware that authenticates ledger requests by API
// key and stores the resolved tenant in the gin context. Unknown credentials
// and deactivated tenants are rejected before any handler runs.
func TenantAuth(authorizer TenantAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := authorizer.Authorize(c.Request.Context(), c.GetHeader(APIKeyHeader))
		if err != nil {
			requestID := GetRequestID(c)
			if errors.Is(err, shared.ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeForbidden, "Tenant is deactivated", requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Missing or invalid API key", requestID))
			return
		}
		c.Set(TenantContextKey, t)
		c.Next()
	}
}

// GetTenant returns the authenticated tenant from the gin context
func GetTenant(c *gin.Context) *tenant.Tenant {
	if v, exists := c.Get(TenantContextKey); exists {
		if t, ok := v.(*tenant.Tenant); ok {
			return t
		}
	}
	return nil
}
