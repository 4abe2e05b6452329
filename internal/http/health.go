package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db           *database.Database
	version      string
	tasksEnabled bool
}

func NewHealthController(db *database.Database, version string, tasksEnabled bool) *HealthController {
	return &HealthController{db: db, version: version, tasksEnabled: tasksEnabled}
}

// Status pings the database and reports whether background imports run.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{"tasks": "disabled"}
	if h.tasksEnabled {
		checks["tasks"] = "ok"
	}

	status := "healthy"
	switch {
	case h.db == nil:
		checks["database"] = "not configured"
	default:
		if err := h.pingDatabase(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
