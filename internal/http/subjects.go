package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/services"
)

type SubjectsController struct {
	comments *services.CommentService
}

func NewSubjectsController(comments *services.CommentService) *SubjectsController {
	return &SubjectsController{comments: comments}
}

// ListSubjects returns the teacher's subjects
// GET /api/subjects
func (sc *SubjectsController) ListSubjects(c *gin.Context) {
	subjects, err := sc.comments.ListSubjects(c.Request.Context(), GetTeacherID(c))
	if err != nil {
		respondInternalError(c, err, "list subjects")
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// CreateSubject adds a subject
// POST /api/subjects
func (sc *SubjectsController) CreateSubject(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		ClassName string `json:"class_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	subject, err := sc.comments.CreateSubject(c.Request.Context(), GetTeacherID(c), req.Name, req.ClassName)
	if err != nil {
		respondServiceError(c, err, "create subject")
		return
	}
	respondCreated(c, subject)
}

// DeleteSubject removes a subject together with its comments
// DELETE /api/subjects/:id
func (sc *SubjectsController) DeleteSubject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.comments.DeleteSubject(c.Request.Context(), GetTeacherID(c), id); err != nil {
		respondServiceError(c, err, "delete subject")
		return
	}
	respondSuccess(c, "subject deleted")
}
