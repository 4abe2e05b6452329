package importers

import "strings"

// TextSource is anything that carries comment text: parsed comments, stored
// comments, API responses.
type TextSource interface {
	CommentText() string
}

// DeduplicationResult is the outcome of removing duplicate comments from a batch.
type DeduplicationResult struct {
	Unique            []ParsedComment `json:"unique"`
	DuplicateCount    int             `json:"duplicate_count"`
	RemovedDuplicates []ParsedComment `json:"removed_duplicates"`
}

// NormalizeText produces the comparison key for duplicate detection:
// lowercased, all whitespace runs collapsed to a single space, trimmed.
// It is never used for display or storage.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Deduplicate removes comments whose normalized text was already seen earlier in
// the batch. The first occurrence (and its rating) is kept.
func Deduplicate(uploaded []ParsedComment) DeduplicationResult {
	return DeduplicateAgainst[ParsedComment](uploaded, nil)
}

// DeduplicateAgainst works like Deduplicate but also drops uploaded comments that
// match one of the existing comments. Every dropped uploaded comment, whatever the
// reason, is reported in RemovedDuplicates.
func DeduplicateAgainst[T TextSource](uploaded []ParsedComment, existing []T) DeduplicationResult {
	seen := make(map[string]struct{}, len(uploaded)+len(existing))
	for _, e := range existing {
		seen[NormalizeText(e.CommentText())] = struct{}{}
	}

	result := DeduplicationResult{
		Unique:            make([]ParsedComment, 0, len(uploaded)),
		RemovedDuplicates: make([]ParsedComment, 0),
	}

	for _, c := range uploaded {
		key := NormalizeText(c.Text)
		if _, dup := seen[key]; dup {
			result.RemovedDuplicates = append(result.RemovedDuplicates, c)
			result.DuplicateCount++
			continue
		}
		seen[key] = struct{}{}
		result.Unique = append(result.Unique, c)
	}

	return result
}
