package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/services"
)

// GetTeacherID returns the teacher resolved by the auth middleware.
func GetTeacherID(c *gin.Context) uint {
	return auth.GetTeacherID(c)
}

// --- Response Types ---

// ErrorResponse is the error body of every endpoint. Validation failures use
// Error "Validation failed" with the reason in Details, which is the shape
// the bulk import client decodes into a rejection.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

func respondValidation(c *gin.Context, ve *services.ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Code:    "validation_failed",
		Details: ve.Message,
	})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs err and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal_error"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps service errors onto status codes.
func respondServiceError(c *gin.Context, err error, operation string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondValidation(c, ve)
	case errors.Is(err, services.ErrSubjectNotFound):
		respondNotFound(c, "subject")
	case errors.Is(err, services.ErrCommentNotFound):
		respondNotFound(c, "comment")
	case errors.Is(err, services.ErrImportNotFound):
		respondNotFound(c, "import session")
	case errors.Is(err, services.ErrAsyncUnavailable):
		respondError(c, http.StatusServiceUnavailable, "task queue not available")
	case errors.Is(err, context.Canceled):
		respondError(c, http.StatusRequestTimeout, "request cancelled")
	default:
		respondInternalError(c, err, operation)
	}
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted answers requests whose work continues in the background.
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam responds with 400 and returns false when the path parameter
// is not an unsigned integer.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseLimit reads ?limit= clamped to [1, max], falling back to def.
func parseLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
