package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/model"
	"gradebook_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).UserID)
	})
	r.GET("/grades", AuthMiddleware(cfg), RequireAccount(), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).AccountID)
	})
	return r
}

func serve(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret"}}
	r := newRouter(cfg)

	tok, err := util.GenerateJWT(model.Account{UserID: "u7"}, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)

	w := serve(r, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u7", w.Body.String())

	w = serve(r, "/me?token="+tok, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "Bearer garbage").Code)
}

func TestRequireAccount(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret"}}
	r := newRouter(cfg)

	linked, err := util.GenerateJWT(model.Account{UserID: "u7", AccountID: "42", Session: "s"}, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	w := serve(r, "/grades", "Bearer "+linked)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	unlinked, err := util.GenerateJWT(model.Account{UserID: "u7"}, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, serve(r, "/grades", "Bearer "+unlinked).Code)
}
