package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/config"
)

// LoginRecorder receives login, logout and token events; *audit.Service
// implements it.
type LoginRecorder interface {
	LogAuth(teacherID uint, action string, success bool)
}

// AuthController serves the JSON endpoints under /api/auth.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	recorder       LoginRecorder
}

// NewAuthController wires the controller. recorder may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, recorder LoginRecorder) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		recorder: recorder,
	}
}

// RegisterRoutes mounts the auth endpoints on group, normally /api/auth.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/csrf", ac.CSRFToken)
	group.GET("/me", ac.Me)
	group.POST("/token", ac.GenerateToken)
	group.DELETE("/token", ac.RevokeToken)
}

// Stop ends the rate limiter sweep.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) name() string {
	if r.Login != "" {
		return strings.TrimSpace(r.Login)
	}
	return strings.TrimSpace(r.Username)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.name() == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password are required", "code": "bad_request"})
		return
	}

	login := req.name()
	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, login); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"code":        "rate_limited",
			"retry_after": retryAfter.Round(time.Second).String(),
		})
		return
	}

	teacher, err := ac.service.Authenticate(login, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidPassword) {
			log.Printf("[AUTH] Login failed for %q: %v", login, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "code": "internal_error"})
			return
		}
		if locked, _ := ac.rateLimiter.RecordFailure(clientIP, login); locked {
			log.Printf("[AUTH] Locked out %q from %s", login, clientIP)
		}
		ac.record(0, "login", false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login or password", "code": "unauthorized"})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, login)
	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, teacher); err != nil {
			log.Printf("[AUTH] Failed to create session for teacher %d: %v", teacher.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "code": "internal_error"})
			return
		}
	}
	ac.record(teacher.ID, "login", true)
	c.JSON(http.StatusOK, teacher)
}

func (ac *AuthController) Logout(c *gin.Context) {
	teacherID := GetTeacherID(c)
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session", "code": "internal_error"})
			return
		}
	}
	if teacherID != 0 {
		ac.record(teacherID, "logout", true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CSRFToken hands the masked token to browser clients, which echo it back in
// the X-CSRF-Token header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c), "header": CSRFTokenHeader})
}

func (ac *AuthController) Me(c *gin.Context) {
	teacher, err := ac.service.GetTeacherByID(GetTeacherID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teacher": teacher, "auth_type": GetAuthType(c)})
}

// GenerateToken issues a new API token; the previous one stops working.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	teacherID := GetTeacherID(c)
	token, err := ac.service.GenerateToken(teacherID)
	if err != nil {
		if errors.Is(err, ErrTeacherNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token", "code": "internal_error"})
		return
	}

	ac.record(teacherID, "token_generated", true)
	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

func (ac *AuthController) RevokeToken(c *gin.Context) {
	teacherID := GetTeacherID(c)
	if err := ac.service.RevokeToken(teacherID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token", "code": "internal_error"})
		return
	}
	ac.record(teacherID, "token_revoked", true)
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

func (ac *AuthController) record(teacherID uint, action string, success bool) {
	if ac.recorder != nil {
		ac.recorder.LogAuth(teacherID, action, success)
	}
}
