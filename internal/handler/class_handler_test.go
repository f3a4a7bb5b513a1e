package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-api/internal/middleware"
	"github.com/campushq/campus-api/internal/models"
)

func newClassTestContext(t *testing.T, path string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestClassHandlerUpcomingRejectsForeignUser(t *testing.T) {
	handler := NewClassHandler(nil)

	c, w := newClassTestContext(t, "/student/classes/upcoming-classes/user-2/0")
	c.Params = gin.Params{
		{Key: "studentId", Value: "user-2"},
		{Key: "n", Value: "0"},
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Upcoming("studentId")(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "another user")
}

func TestClassHandlerUpcomingRejectsBadIndex(t *testing.T) {
	handler := NewClassHandler(nil)

	c, w := newClassTestContext(t, "/student/classes/upcoming-classes/user-1/abc")
	c.Params = gin.Params{
		{Key: "studentId", Value: "user-1"},
		{Key: "n", Value: "abc"},
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Upcoming("studentId")(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "index must be a number")
}

func TestClassHandlerUpcomingRequiresClaims(t *testing.T) {
	handler := NewClassHandler(nil)

	c, w := newClassTestContext(t, "/student/classes/upcoming-classes/user-1/0")
	c.Params = gin.Params{
		{Key: "studentId", Value: "user-1"},
		{Key: "n", Value: "0"},
	}

	handler.Upcoming("studentId")(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
