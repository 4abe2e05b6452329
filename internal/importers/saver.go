package importers

import "context"

// CreateCommentRequest is what the saver hands to the persistence function.
type CreateCommentRequest struct {
	OwnerID string `json:"owner_id"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// SaveFunc persists a single comment. Any returned error marks that comment as failed.
type SaveFunc func(ctx context.Context, req CreateCommentRequest) error

// ProgressFunc receives the 1-based count of comments processed so far.
type ProgressFunc func(current int)

// SavedComment is a comment the save function accepted.
type SavedComment struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// FailedSave is a comment the save function rejected.
// LineNumber is the 1-based position in the submitted list, not in the pasted text.
type FailedSave struct {
	LineNumber   int    `json:"line_number"`
	OriginalText string `json:"original_text"`
	Reason       string `json:"reason"`
}

// BulkSaveResult is the outcome of a bulk save.
type BulkSaveResult struct {
	Successful     []SavedComment `json:"successful"`
	Failed         []FailedSave   `json:"failed"`
	TotalAttempted int            `json:"total_attempted"`
	DuplicateCount int            `json:"duplicate_count,omitempty"`
}

// SaveSequentially submits each comment to save exactly once, in order, waiting for
// each call to return before starting the next. Failures are collected and never
// stop the batch. onProgress, when set, is called after every attempt.
//
// ctx is passed to save untouched; cancelling it is up to the save function.
func SaveSequentially(ctx context.Context, ownerID string, comments []ParsedComment, save SaveFunc, onProgress ProgressFunc) BulkSaveResult {
	result := BulkSaveResult{
		Successful:     make([]SavedComment, 0, len(comments)),
		Failed:         make([]FailedSave, 0),
		TotalAttempted: len(comments),
	}

	for i, c := range comments {
		err := save(ctx, CreateCommentRequest{
			OwnerID: ownerID,
			Comment: c.Text,
			Rating:  c.Rating,
		})
		if err != nil {
			result.Failed = append(result.Failed, FailedSave{
				LineNumber:   i + 1,
				OriginalText: c.Text,
				Reason:       FailureReason(err),
			})
		} else {
			result.Successful = append(result.Successful, SavedComment{Text: c.Text, Rating: c.Rating})
		}

		if onProgress != nil {
			onProgress(i + 1)
		}
	}

	return result
}
