package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/audit"
	auditrepo "github.com/mrlokans/commentbank/internal/database/audit"
	"github.com/mrlokans/commentbank/internal/entities"
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

// GetAuditEvents returns the teacher's audit trail, newest first
// GET /api/audit?type=&entity_type=&entity_id=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	filter, ok := parseEventFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit := parseLimit(c, 25, 100)
	offset := (page - 1) * limit

	events, total, err := ac.auditService.FindEvents(filter, limit, offset)
	if err != nil {
		respondInternalError(c, err, "get audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

func parseEventFilter(c *gin.Context) (auditrepo.EventFilter, bool) {
	filter := auditrepo.EventFilter{
		TeacherID: GetTeacherID(c),
		EventType: entities.AuditEventType(c.Query("type")),
	}

	if raw := c.Query("entity_type"); raw != "" {
		entityType, ok := entities.ParseAuditEntityType(raw)
		if !ok {
			respondBadRequest(c, "entity_type must be subject or comment")
			return filter, false
		}
		filter.EntityType = entityType
	}

	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			respondBadRequest(c, "Invalid entity_id")
			return filter, false
		}
		entityID := uint(id)
		filter.EntityID = &entityID
	}

	return filter, true
}
