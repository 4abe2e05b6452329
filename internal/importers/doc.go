// Package importers implements bulk import of pasted report comments.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	Pasted text → ParseComments → []ParsedComment → Deduplicate → Unique → SaveSequentially → BulkSaveResult
//
// Each stage can be used on its own. ParseComments and Deduplicate are pure
// functions; SaveSequentially calls an injected SaveFunc once per comment, strictly
// one at a time, and collects failures instead of stopping.
//
// # Line format
//
// One comment per line. An optional trailing ", D" (D from 1 to 5) sets the rating:
//
//	Consistently strong contributions in class, 5
//	Needs to check work before handing it in, 2
//	Shows curiosity, asks good questions
//
// Lines without a valid rating get DefaultRating. Blank lines are ignored.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(func(ctx context.Context, req importers.CreateCommentRequest) error {
//		return store.Create(ctx, req)
//	})
//
//	batch := importers.PrepareBatch(text, existingComments)
//	result := pipeline.Save(ctx, subjectID, batch, func(n int) {
//		log.Printf("[IMPORT] %d/%d", n, len(batch.Unique))
//	})
package importers
