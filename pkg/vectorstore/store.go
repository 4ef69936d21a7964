// Package vectorstore defines the retrieval boundary of the tutoring
// pipeline. Backends own the embeddings entirely; callers only ever see
// chunk text, metadata and a cosine distance.
package vectorstore

import (
	"context"
)

// Metadata keys shared by all backends. The formatter reads these with
// fallbacks, so a missing key is never an error.
const (
	MetaDocumentID = "document_id"
	MetaChunkID    = "chunk_id"
	MetaChunkIndex = "chunk_index"
	MetaCourseID   = "course_id"
	MetaCourseName = "course_name"
	MetaSubject    = "subject"
	MetaSource     = "source"
)

// QueryResult is one ranked nearest-neighbor hit.
type QueryResult struct {
	Rank     int    // 1-based, consistent with ascending distance
	ID       string
	Content  string
	Metadata map[string]string
	Distance float64 // cosine distance, lower = closer
}

// Store is a named collection of embedded chunks.
//
// Implementations must be safe for concurrent Add and Query calls and must
// carry explicit timeouts on any out-of-process work, classifying exhaustion
// as fault.KindUnavailable rather than hanging.
type Store interface {
	// Add embeds and persists documents. len(documents) == len(ids); when
	// metadatas is nil a {"source": "unknown"} placeholder is used per
	// document, otherwise len(metadatas) must match too.
	Add(ctx context.Context, documents []string, ids []string, metadatas []map[string]string) error

	// Query returns up to k results ordered by ascending distance. A nil
	// where matches everything; entries restrict by metadata equality.
	Query(ctx context.Context, text string, k int, where map[string]string) ([]QueryResult, error)
}
