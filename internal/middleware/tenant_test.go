package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/student/login", nil)
	require.NoError(t, err)
	c.Request = req

	Tenant()(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	assert.Contains(t, w.Body.String(), "TENANT_REQUIRED")
}

func TestTenantStoresInstitution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/student/login", nil)
	require.NoError(t, err)
	req.Header.Set(InstitutionHeader, "inst-1")
	c.Request = req

	Tenant()(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, "inst-1", InstitutionID(c))
}
