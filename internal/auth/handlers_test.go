package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/config"
)

type recordedAuth struct {
	teacherID uint
	action    string
	success   bool
}

type mockRecorder struct {
	mu     sync.Mutex
	events []recordedAuth
}

func (m *mockRecorder) LogAuth(teacherID uint, action string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedAuth{teacherID, action, success})
}

type authEnv struct {
	router   *gin.Engine
	service  *Service
	recorder *mockRecorder
}

// setupAuthEnv mounts sessions and the auth routes without CSRF so the
// login flow can be driven directly.
func setupAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	db := setupTestDB(t)
	cfg := testAuthConfig()
	svc := NewService(db, cfg)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	recorder := &mockRecorder{}
	controller := NewAuthController(svc, sm, cfg, recorder)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.LoadAndSave())
	router.Use(NewMiddleware(svc, sm, config.AuthModeLocal, 0).Handler())
	controller.RegisterRoutes(router.Group("/api/auth"))

	return &authEnv{router: router, service: svc, recorder: recorder}
}

func (e *authEnv) do(method, path, body string, cookies []*http.Cookie, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestAuthController_LoginSessionLogout(t *testing.T) {
	env := setupAuthEnv(t)
	teacher := createTestTeacher(t, env.service)

	login := env.do(http.MethodPost, "/api/auth/login", `{"login":"msmith","password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	assert.Contains(t, login.Body.String(), `"username":"msmith"`)
	assert.NotContains(t, login.Body.String(), "password")

	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies, "login must set a session cookie")

	me := env.do(http.MethodGet, "/api/auth/me", "", cookies)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"auth_type":"session"`)

	logout := env.do(http.MethodPost, "/api/auth/logout", "", cookies)
	require.Equal(t, http.StatusOK, logout.Code)

	after := env.do(http.MethodGet, "/api/auth/me", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, after.Code)

	assert.Equal(t, []recordedAuth{
		{teacher.ID, "login", true},
		{teacher.ID, "logout", true},
	}, env.recorder.events)
}

func TestAuthController_LoginFailures(t *testing.T) {
	env := setupAuthEnv(t)
	createTestTeacher(t, env.service)

	bad := env.do(http.MethodPost, "/api/auth/login", `{"login":"msmith"}`, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	for i := 0; i < 3; i++ {
		rr := env.do(http.MethodPost, "/api/auth/login", `{"username":"msmith","password":"wrong-password-123"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	limited := env.do(http.MethodPost, "/api/auth/login", `{"username":"msmith","password":"`+testPassword+`"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
}

func TestAuthController_TokenLifecycle(t *testing.T) {
	env := setupAuthEnv(t)
	teacher := createTestTeacher(t, env.service)
	bootstrap, err := env.service.GenerateToken(teacher.ID)
	require.NoError(t, err)

	created := env.do(http.MethodPost, "/api/auth/token", "", nil, "Authorization", "Bearer "+bootstrap)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Contains(t, created.Body.String(), `"token":`)

	stale := env.do(http.MethodGet, "/api/auth/me", "", nil, "Authorization", "Bearer "+bootstrap)
	assert.Equal(t, http.StatusUnauthorized, stale.Code)
}

func TestCSRFMiddleware(t *testing.T) {
	svc := NewService(setupTestDB(t), testAuthConfig())
	teacher := createTestTeacher(t, svc)
	token, err := svc.GenerateToken(teacher.ID)
	require.NoError(t, err)

	key, err := CSRFKey("")
	require.NoError(t, err)

	router := gin.New()
	router.Use(CSRFMiddleware(key, false, svc))
	reached := false
	router.GET("/api/auth/csrf", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
	})
	router.POST("/api/subjects", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusCreated)
	})

	t.Run("safe methods get a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), `"csrf_token":""`)
	})

	t.Run("post without token is rejected", func(t *testing.T) {
		reached = false
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/subjects", nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "csrf_failed")
		assert.False(t, reached, "handler must not run after a CSRF failure")
	})

	t.Run("invalid bearer does not skip the check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/subjects", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("valid bearer skips the check", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/api/subjects", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.True(t, reached)
	})
}
