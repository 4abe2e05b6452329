package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/services"
)

type BulkImportController struct {
	imports *services.ImportService
}

func NewBulkImportController(imports *services.ImportService) *BulkImportController {
	return &BulkImportController{imports: imports}
}

type bulkImportRequest struct {
	Text string `json:"text"`
}

// bindBulk reads the subject id and pasted text, responding on failure.
func bindBulk(c *gin.Context) (uint, string, bool) {
	subjectID, ok := parseIDParam(c, "id")
	if !ok {
		return 0, "", false
	}
	var req bulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return 0, "", false
	}
	return subjectID, req.Text, true
}

// Preview parses and deduplicates a paste without saving
// POST /api/subjects/:id/comments/bulk/preview
func (bc *BulkImportController) Preview(c *gin.Context) {
	subjectID, text, ok := bindBulk(c)
	if !ok {
		return
	}

	preview, err := bc.imports.Preview(c.Request.Context(), GetTeacherID(c), subjectID, text)
	if err != nil {
		respondServiceError(c, err, "preview bulk import")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Import saves every unique comment before responding
// POST /api/subjects/:id/comments/bulk
func (bc *BulkImportController) Import(c *gin.Context) {
	subjectID, text, ok := bindBulk(c)
	if !ok {
		return
	}

	outcome, err := bc.imports.Import(c.Request.Context(), GetTeacherID(c), subjectID, text, nil)
	if err != nil {
		respondServiceError(c, err, "bulk import")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ImportAsync queues the import and returns the session to poll
// POST /api/subjects/:id/comments/bulk/async
func (bc *BulkImportController) ImportAsync(c *gin.Context) {
	subjectID, text, ok := bindBulk(c)
	if !ok {
		return
	}

	session, err := bc.imports.StartAsync(c.Request.Context(), GetTeacherID(c), subjectID, text)
	if err != nil {
		respondServiceError(c, err, "queue bulk import")
		return
	}

	c.Header("Location", "/api/imports/"+session.PublicID)
	respondAccepted(c, "import queued", gin.H{
		"session_id":  session.PublicID,
		"status":      session.Status,
		"total_lines": session.TotalLines,
	})
}

// GetSession reports progress, and the result once finished
// GET /api/imports/:id
func (bc *BulkImportController) GetSession(c *gin.Context) {
	report, err := bc.imports.GetSession(c.Request.Context(), GetTeacherID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get import session")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListSessions returns the most recent imports
// GET /api/imports?limit=
func (bc *BulkImportController) ListSessions(c *gin.Context) {
	sessions, err := bc.imports.ListSessions(c.Request.Context(), GetTeacherID(c), parseLimit(c, 20, 100))
	if err != nil {
		respondInternalError(c, err, "list import sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}
