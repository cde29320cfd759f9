package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminRouter(keyHash string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/probe", AdminKey(keyHash), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAdminKeyAcceptsCorrectKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	require.NoError(t, err)
	r := adminRouter(string(hash))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/probe", nil)
	req.Header.Set("X-Admin-Key", "operator-key")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminKeyRejectsWrongKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	require.NoError(t, err)
	r := adminRouter(string(hash))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/probe", nil)
	req.Header.Set("X-Admin-Key", "guess")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminKeyRequiresHeader(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	require.NoError(t, err)
	r := adminRouter(string(hash))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/probe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminKeyClosedWithoutHash(t *testing.T) {
	r := adminRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/probe", nil)
	req.Header.Set("X-Admin-Key", "anything")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
