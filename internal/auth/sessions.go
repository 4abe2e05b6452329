package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/entities"
)

const (
	SessionKeyTeacherID = "teacher_id"
	SessionKeyUsername  = "username"
	SessionKeyLoginAt   = "login_at"
)

func init() {
	gob.Register(time.Time{})
}

// SessionManager stores browser sessions in the main SQLite database.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates the sessions table when missing and returns a
// manager backed by sqlite3store. sqlDB is the handle underneath gorm.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "commentbank_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession renews the session token and stores the teacher in it.
func (sm *SessionManager) CreateSession(r *http.Request, teacher *entities.Teacher) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, SessionKeyTeacherID, int(teacher.ID))
	sm.Put(ctx, SessionKeyUsername, teacher.Username)
	sm.Put(ctx, SessionKeyLoginAt, time.Now())
	return nil
}

func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetTeacherID returns 0 for anonymous sessions.
func (sm *SessionManager) GetTeacherID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyTeacherID))
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetTeacherID(r) != 0
}

type SessionData struct {
	TeacherID uint      `json:"teacher_id"`
	Username  string    `json:"username"`
	LoginAt   time.Time `json:"login_at"`
}

// GetSessionData returns nil when the request carries no teacher session.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	teacherID := sm.GetTeacherID(r)
	if teacherID == 0 {
		return nil
	}
	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return &SessionData{
		TeacherID: teacherID,
		Username:  sm.GetString(r.Context(), SessionKeyUsername),
		LoginAt:   loginAt,
	}
}
