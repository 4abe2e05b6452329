package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/entities"
)

func TestSubjectsController(t *testing.T) {
	env := setupRouterEnv(t, false)

	t.Run("empty list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/subjects", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("create", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": "History", "class_name": "8A"})
		require.Equal(t, http.StatusCreated, w.Code)

		subject := decode[entities.Subject](t, w)
		assert.Equal(t, "History", subject.Name)
		assert.Equal(t, testTeacherID, subject.TeacherID)
	})

	t.Run("create without name", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
	})

	t.Run("list only own subjects", func(t *testing.T) {
		env.createSubject(t, 99, "Someone else's")

		w := env.do(t, http.MethodGet, "/api/subjects", nil)
		subjects := decode[[]entities.Subject](t, w)
		require.Len(t, subjects, 1)
		assert.Equal(t, "History", subjects[0].Name)
	})
}

func TestSubjectsController_Delete(t *testing.T) {
	env := setupRouterEnv(t, false)
	own := env.createSubject(t, testTeacherID, "Art")
	foreign := env.createSubject(t, 42, "Music")

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/subjects/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/subjects/%d", own.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/subjects/%d", own.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subjects/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
