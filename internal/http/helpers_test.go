package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/commentbank/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		value string
		id    uint
		ok    bool
	}{
		{"123", 123, true},
		{"abc", 0, false},
		{"-1", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, ok := parseIDParam(c, "id")

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "invalid id")
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=0", 20},
		{"limit=abc", 20},
		{"limit=500", 100},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		assert.Equal(t, tt.want, parseLimit(c, 20, 100), tt.query)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			"validation",
			fmt.Errorf("wrapped: %w", &services.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}),
			http.StatusBadRequest,
			`{"error":"Validation failed","code":"validation_failed","details":"rating must be between 1 and 5"}`,
		},
		{"subject", services.ErrSubjectNotFound, http.StatusNotFound, `{"error":"subject not found","code":"not_found"}`},
		{"comment", services.ErrCommentNotFound, http.StatusNotFound, `{"error":"comment not found","code":"not_found"}`},
		{"import", services.ErrImportNotFound, http.StatusNotFound, `{"error":"import session not found","code":"not_found"}`},
		{"no queue", services.ErrAsyncUnavailable, http.StatusServiceUnavailable, `{"error":"task queue not available"}`},
		{"other", errors.New("disk full"), http.StatusInternalServerError, `{"error":"internal server error","code":"internal_error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err, "test")

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
