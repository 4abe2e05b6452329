package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local teacher accounts with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Audit
		Import
		Tasks
		Cleanup
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Audit struct {
		Dir             string
		RetentionDays   int  // Days to keep audit events and payload archives (default: 30)
		ArchivePayloads bool // Keep a JSON copy of every pasted bulk import
	}
	Import struct {
		MaxLines         int // Pasted lines accepted by one bulk import
		MaxCommentLength int // Characters allowed in a single comment
		AsyncThreshold   int // Unique comments above which the UI should go async
		// Teacher used by bulk imports when auth is disabled
		DefaultTeacherID uint
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Cleanup struct {
		Enabled          bool
		Schedule         string        // Cron format: "30 3 * * *" = daily at 03:30
		SessionRetention time.Duration // How long finished import sessions are kept
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

// AuditRetention converts RetentionDays into a duration.
func (a Audit) AuditRetention() time.Duration {
	return time.Duration(a.RetentionDays) * 24 * time.Hour
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_archive_payloads", true)

	// Bulk import defaults
	v.SetDefault("import_max_lines", 500)
	v.SetDefault("import_max_comment_length", 1000)
	v.SetDefault("import_async_threshold", 50)
	v.SetDefault("import_default_teacher_id", 1)

	// Retention cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "30 3 * * *")
	v.SetDefault("import_session_retention", "168h") // 7 days

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Dir:             v.GetString("AUDIT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			ArchivePayloads: v.GetBool("AUDIT_ARCHIVE_PAYLOADS"),
		},
		Import: Import{
			MaxLines:         v.GetInt("IMPORT_MAX_LINES"),
			MaxCommentLength: v.GetInt("IMPORT_MAX_COMMENT_LENGTH"),
			AsyncThreshold:   v.GetInt("IMPORT_ASYNC_THRESHOLD"),
			DefaultTeacherID: v.GetUint("IMPORT_DEFAULT_TEACHER_ID"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Cleanup: Cleanup{
			Enabled:          v.GetBool("CLEANUP_ENABLED"),
			Schedule:         v.GetString("CLEANUP_SCHEDULE"),
			SessionRetention: v.GetDuration("IMPORT_SESSION_RETENTION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
