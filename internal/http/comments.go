package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
	"github.com/mrlokans/commentbank/internal/services"
)

type CommentsController struct {
	comments *services.CommentService
}

func NewCommentsController(comments *services.CommentService) *CommentsController {
	return &CommentsController{comments: comments}
}

type commentRequest struct {
	Comment string               `json:"comment"`
	Rating  int                  `json:"rating"`
	Kind    entities.CommentKind `json:"kind"`
}

// ListComments returns a subject's comment bank, optionally one kind only
// GET /api/subjects/:id/comments?kind=
func (cc *CommentsController) ListComments(c *gin.Context) {
	subjectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	kind := entities.CommentKind(c.Query("kind"))
	comments, err := cc.comments.ListComments(c.Request.Context(), GetTeacherID(c), subjectID, kind)
	if err != nil {
		respondServiceError(c, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment stores one comment. Bulk import clients call this once per
// line and surface the error body as the failure reason.
// POST /api/subjects/:id/comments
func (cc *CommentsController) CreateComment(c *gin.Context) {
	subjectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	comment, err := cc.comments.CreateComment(c.Request.Context(), GetTeacherID(c), req.Kind, importers.CreateCommentRequest{
		OwnerID: strconv.FormatUint(uint64(subjectID), 10),
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		respondServiceError(c, err, "create comment")
		return
	}
	respondCreated(c, comment)
}

// UpdateComment changes text, rating or kind; omitted fields are kept
// PUT /api/comments/:id
func (cc *CommentsController) UpdateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	comment, err := cc.comments.UpdateComment(c.Request.Context(), GetTeacherID(c), id, services.CommentUpdate{
		Text:   req.Comment,
		Rating: req.Rating,
		Kind:   req.Kind,
	})
	if err != nil {
		respondServiceError(c, err, "update comment")
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment
// DELETE /api/comments/:id
func (cc *CommentsController) DeleteComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.comments.DeleteComment(c.Request.Context(), GetTeacherID(c), id); err != nil {
		respondServiceError(c, err, "delete comment")
		return
	}
	respondSuccess(c, "comment deleted")
}
