package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/config"
)

func whoAmIRouter(mw *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(mw.Handler())
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"teacher_id": GetTeacherID(c), "auth_type": GetAuthType(c)})
	}
	router.GET("/api/whoami", handler)
	router.GET("/health", handler)
	return router
}

func TestMiddleware_NoneModeUsesDefaultTeacher(t *testing.T) {
	router := whoAmIRouter(NewMiddleware(nil, nil, config.AuthModeNone, 7))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		TeacherID uint     `json:"teacher_id"`
		AuthType  AuthType `json:"auth_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, uint(7), body.TeacherID)
	assert.Equal(t, AuthTypeNone, body.AuthType)
}

func TestMiddleware_LocalMode(t *testing.T) {
	svc := NewService(setupTestDB(t), testAuthConfig())
	teacher := createTestTeacher(t, svc)
	token, err := svc.GenerateToken(teacher.ID)
	require.NoError(t, err)

	router := whoAmIRouter(NewMiddleware(svc, nil, config.AuthModeLocal, 1))

	t.Run("missing credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"authentication required","code":"unauthorized"}`, rr.Body.String())
	})

	t.Run("invalid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"auth_type":"bearer"`)
	})

	t.Run("public path", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}
