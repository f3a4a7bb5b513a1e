package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/response"
)

// ContextInstitutionKey is the gin context key holding the tenant id.
const ContextInstitutionKey = "institutionID"

// InstitutionHeader carries the tenant identifier on every request.
const InstitutionHeader = "X-Institution-Id"

// Tenant resolves the institution from the request header. Every tenant-scoped
// route group mounts this; requests without the header are rejected before any
// handler runs.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		institutionID := c.GetHeader(InstitutionHeader)
		if institutionID == "" {
			response.Error(c, appErrors.ErrTenantRequired)
			c.Abort()
			return
		}
		c.Set(ContextInstitutionKey, institutionID)
		c.Next()
	}
}

// InstitutionID returns the tenant id stored by the Tenant middleware.
func InstitutionID(c *gin.Context) string {
	return c.GetString(ContextInstitutionKey)
}
