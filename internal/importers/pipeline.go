package importers

import "context"

// Batch is pasted text after parsing and deduplication, ready to save.
type Batch struct {
	Parsed []ParsedComment `json:"parsed"`
	DeduplicationResult
}

// PrepareBatch parses text and removes duplicates, both within the paste and
// against the comments that already exist.
func PrepareBatch[T TextSource](text string, existing []T) Batch {
	parsed := ParseComments(text)
	return Batch{
		Parsed:              parsed,
		DeduplicationResult: DeduplicateAgainst(parsed, existing),
	}
}

// Pipeline handles the bulk import workflow:
// parse → deduplicate → save one by one.
type Pipeline struct {
	save SaveFunc
}

// NewPipeline creates a new import pipeline persisting through save.
func NewPipeline(save SaveFunc) *Pipeline {
	return &Pipeline{save: save}
}

// Save persists the unique comments of a prepared batch and attaches the
// number of duplicates that were dropped before saving.
func (p *Pipeline) Save(ctx context.Context, ownerID string, batch Batch, onProgress ProgressFunc) BulkSaveResult {
	result := SaveSequentially(ctx, ownerID, batch.Unique, p.save, onProgress)
	result.DuplicateCount = batch.DuplicateCount
	return result
}

// Import runs the whole pipeline for pasted text with no existing comments to check against.
func (p *Pipeline) Import(ctx context.Context, ownerID, text string, onProgress ProgressFunc) BulkSaveResult {
	return p.Save(ctx, ownerID, PrepareBatch[ParsedComment](text, nil), onProgress)
}
