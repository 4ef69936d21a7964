// Package retrieval turns ranked vector store hits into the grounding
// context block handed to the model, with citation bookkeeping so answers
// can point back at course material.
package retrieval

import (
	"fmt"
	"strings"

	"ai-tutor-be/pkg/vectorstore"
)

// Citation identifies where a numbered source block came from.
type Citation struct {
	Rank       int    `json:"rank"`
	Course     string `json:"course"`
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
}

// Format renders results into numbered source blocks and matching
// citations. Blocks read "[Source N]: content" and are joined by blank
// lines; N is the result rank, so citation N always refers to block N.
//
// Missing metadata never fails the call; every label falls back to a
// usable default. Empty input yields ("", nil), which callers treat as
// the ungrounded path.
func Format(results []vectorstore.QueryResult) (string, []Citation) {
	if len(results) == 0 {
		return "", nil
	}

	blocks := make([]string, len(results))
	citations := make([]Citation, len(results))

	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source %d]: %s", r.Rank, r.Content)
		citations[i] = Citation{
			Rank:       r.Rank,
			Course:     courseLabel(r.Metadata),
			ChunkID:    valueOrUnknown(r.Metadata, vectorstore.MetaChunkID),
			DocumentID: valueOrUnknown(r.Metadata, vectorstore.MetaDocumentID),
		}
	}

	return strings.Join(blocks, "\n\n"), citations
}

// courseLabel resolves the human-readable course name with the fallback
// chain course_name, course, "Course {course_id}", "Unknown".
func courseLabel(metadata map[string]string) string {
	if v := metadata[vectorstore.MetaCourseName]; v != "" {
		return v
	}
	if v := metadata["course"]; v != "" {
		return v
	}
	if v := metadata[vectorstore.MetaCourseID]; v != "" {
		return "Course " + v
	}
	return "Unknown"
}

func valueOrUnknown(metadata map[string]string, key string) string {
	if v := metadata[key]; v != "" {
		return v
	}
	return "Unknown"
}
