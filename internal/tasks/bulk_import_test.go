package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkImportProcessor(t *testing.T) {
	t.Run("runs the session", func(t *testing.T) {
		var got string
		process := BulkImportProcessor(runnerFunc(func(_ context.Context, id string) error {
			got = id
			return nil
		}))

		assert.NoError(t, process(context.Background(), BulkImportTask{SessionID: "s-1"}))
		assert.Equal(t, "s-1", got)
	})

	t.Run("wraps runner errors", func(t *testing.T) {
		boom := errors.New("subject not found")
		process := BulkImportProcessor(runnerFunc(func(context.Context, string) error { return boom }))

		err := process(context.Background(), BulkImportTask{SessionID: "s-2"})
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "s-2")
	})

	t.Run("missing runner", func(t *testing.T) {
		err := BulkImportProcessor(nil)(context.Background(), BulkImportTask{SessionID: "s-3"})
		assert.Error(t, err)
	})
}
