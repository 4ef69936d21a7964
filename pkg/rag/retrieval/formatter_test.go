package retrieval

import (
	"strings"
	"testing"

	"ai-tutor-be/pkg/vectorstore"
)

func TestFormatEmpty(t *testing.T) {
	context, citations := Format(nil)
	if context != "" {
		t.Errorf("context = %q, want empty", context)
	}
	if citations != nil {
		t.Errorf("citations = %v, want nil", citations)
	}

	context, citations = Format([]vectorstore.QueryResult{})
	if context != "" || citations != nil {
		t.Errorf("Format(empty) = (%q, %v), want (\"\", nil)", context, citations)
	}
}

func TestFormatTwoResults(t *testing.T) {
	results := []vectorstore.QueryResult{
		{
			Rank:    1,
			ID:      "doc1_chunk_0",
			Content: "Derivatives measure instantaneous rates of change.",
			Metadata: map[string]string{
				vectorstore.MetaCourseName: "Calculus I",
				vectorstore.MetaChunkID:    "doc1_chunk_0",
				vectorstore.MetaDocumentID: "doc1",
			},
			Distance: 0.12,
		},
		{
			Rank:    2,
			ID:      "doc2_chunk_3",
			Content: "The chain rule composes derivatives.",
			Metadata: map[string]string{
				vectorstore.MetaCourseName: "Calculus I",
				vectorstore.MetaChunkID:    "doc2_chunk_3",
				vectorstore.MetaDocumentID: "doc2",
			},
			Distance: 0.31,
		},
	}

	context, citations := Format(results)

	want := "[Source 1]: Derivatives measure instantaneous rates of change.\n\n" +
		"[Source 2]: The chain rule composes derivatives."
	if context != want {
		t.Errorf("context = %q, want %q", context, want)
	}

	if len(citations) != 2 {
		t.Fatalf("len(citations) = %d, want 2", len(citations))
	}
	if citations[0].Rank != 1 || citations[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", citations[0].Rank, citations[1].Rank)
	}
	if citations[1].ChunkID != "doc2_chunk_3" {
		t.Errorf("citations[1].ChunkID = %q", citations[1].ChunkID)
	}
}

func TestFormatCourseLabelFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     string
	}{
		{
			name:     "course_name wins",
			metadata: map[string]string{vectorstore.MetaCourseName: "Linear Algebra", "course": "ignored", vectorstore.MetaCourseID: "c-1"},
			want:     "Linear Algebra",
		},
		{
			name:     "course key",
			metadata: map[string]string{"course": "Physics II"},
			want:     "Physics II",
		},
		{
			name:     "course id derived",
			metadata: map[string]string{vectorstore.MetaCourseID: "c-42"},
			want:     "Course c-42",
		},
		{
			name:     "nothing known",
			metadata: map[string]string{},
			want:     "Unknown",
		},
		{
			name:     "nil metadata",
			metadata: nil,
			want:     "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, citations := Format([]vectorstore.QueryResult{
				{Rank: 1, Content: "text", Metadata: tt.metadata},
			})
			if citations[0].Course != tt.want {
				t.Errorf("Course = %q, want %q", citations[0].Course, tt.want)
			}
			if tt.metadata == nil || len(tt.metadata) == 0 {
				if citations[0].ChunkID != "Unknown" || citations[0].DocumentID != "Unknown" {
					t.Errorf("ids = %q, %q, want Unknown", citations[0].ChunkID, citations[0].DocumentID)
				}
			}
		})
	}
}

// Formatting the same results twice must be byte-for-byte identical.
func TestFormatDeterministic(t *testing.T) {
	results := []vectorstore.QueryResult{
		{Rank: 1, Content: "alpha", Metadata: map[string]string{vectorstore.MetaCourseID: "c-1"}},
		{Rank: 2, Content: "beta", Metadata: map[string]string{"course": "Chemistry"}},
		{Rank: 3, Content: "gamma"},
	}

	firstContext, firstCitations := Format(results)
	for i := 0; i < 10; i++ {
		context, citations := Format(results)
		if context != firstContext {
			t.Fatal("context differs between runs")
		}
		for j := range citations {
			if citations[j] != firstCitations[j] {
				t.Fatalf("citation %d differs between runs", j)
			}
		}
	}

	if !strings.Contains(firstContext, "[Source 3]: gamma") {
		t.Errorf("missing block for bare result: %q", firstContext)
	}
}
