package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestRouter(t *testing.T) (*gin.Engine, services.InterfaceJWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecretKey: "test-secret"}
	InitAuthMiddleware(cfg, nil)

	r := gin.New()
	r.GET("/protected", Authentication(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	r.GET("/admin", Authentication(), AuthenticateAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r, services.NewJWTService(cfg, nil)
}

func doAuthRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthentication_MissingHeaderIsUnauthorized(t *testing.T) {
	r, _ := authTestRouter(t)
	w := doAuthRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_GarbageTokenIsUnauthorized(t *testing.T) {
	r, _ := authTestRouter(t)
	w := doAuthRequest(r, "/protected", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_WrongSecretIsUnauthorized(t *testing.T) {
	r, _ := authTestRouter(t)

	other := services.NewJWTService(&config.Config{JWTSecretKey: "other-secret"}, nil)
	token, err := other.GenerateToken(1, "admin", true)
	require.NoError(t, err)

	w := doAuthRequest(r, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_ValidTokenPasses(t *testing.T) {
	r, jwtSvc := authTestRouter(t)

	token, err := jwtSvc.GenerateToken(1, "viewer", false)
	require.NoError(t, err)

	w := doAuthRequest(r, "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "viewer")
}

func TestAuthenticateAdmin_NonAdminTokenIsForbidden(t *testing.T) {
	r, jwtSvc := authTestRouter(t)

	token, err := jwtSvc.GenerateToken(2, "viewer", false)
	require.NoError(t, err)

	w := doAuthRequest(r, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticateAdmin_AdminTokenPasses(t *testing.T) {
	r, jwtSvc := authTestRouter(t)

	token, err := jwtSvc.GenerateToken(1, "admin", true)
	require.NoError(t, err)

	w := doAuthRequest(r, "/admin", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
