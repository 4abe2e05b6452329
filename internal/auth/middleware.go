package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/entities"
)

const (
	ContextKeyTeacherID = "auth_teacher_id"
	ContextKeyUsername  = "auth_username"
	ContextKeyAuthType  = "auth_type"
)

// AuthType records how the current request was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware resolves the teacher behind each request.
type Middleware struct {
	service          *Service
	sessionManager   *SessionManager
	mode             config.AuthMode
	defaultTeacherID uint
	publicPaths      map[string]bool
}

// NewMiddleware builds the middleware. defaultTeacherID owns every request
// when the mode is none.
func NewMiddleware(service *Service, sessionManager *SessionManager, mode config.AuthMode, defaultTeacherID uint) *Middleware {
	return &Middleware{
		service:          service,
		sessionManager:   sessionManager,
		mode:             mode,
		defaultTeacherID: defaultTeacherID,
		publicPaths: map[string]bool{
			"/health":         true,
			"/ping":           true,
			"/api/auth/login": true,
			"/api/auth/csrf":  true,
		},
	}
}

func (m *Middleware) Handler() gin.HandlerFunc {
	if m.mode != config.AuthModeLocal {
		return func(c *gin.Context) {
			c.Set(ContextKeyTeacherID, m.defaultTeacherID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		if teacher := m.fromBearer(c); teacher != nil {
			setTeacher(c, teacher, AuthTypeBearer)
			c.Next()
			return
		}
		if teacher := m.fromSession(c); teacher != nil {
			setTeacher(c, teacher, AuthTypeSession)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
			"code":  "unauthorized",
		})
	}
}

func (m *Middleware) fromBearer(c *gin.Context) *entities.Teacher {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil
	}
	teacher, err := m.service.ValidateToken(token)
	if err != nil {
		return nil
	}
	return teacher
}

func (m *Middleware) fromSession(c *gin.Context) *entities.Teacher {
	if m.sessionManager == nil {
		return nil
	}
	teacherID := m.sessionManager.GetTeacherID(c.Request)
	if teacherID == 0 {
		return nil
	}
	teacher, err := m.service.GetTeacherByID(teacherID)
	if err != nil {
		return nil
	}
	return teacher
}

func setTeacher(c *gin.Context, teacher *entities.Teacher, authType AuthType) {
	c.Set(ContextKeyTeacherID, teacher.ID)
	c.Set(ContextKeyUsername, teacher.Username)
	c.Set(ContextKeyAuthType, authType)
}

// GetTeacherID returns the teacher resolved by Middleware, or 0.
func GetTeacherID(c *gin.Context) uint {
	if id, ok := c.Get(ContextKeyTeacherID); ok {
		if teacherID, ok := id.(uint); ok {
			return teacherID
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

func GetAuthType(c *gin.Context) AuthType {
	if t, ok := c.Get(ContextKeyAuthType); ok {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
