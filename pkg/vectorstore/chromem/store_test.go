package chromem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-tutor-be/pkg/embedding"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/vectorstore"
)

// stubEmbedder maps known texts to fixed unit vectors so similarity
// ordering is fully deterministic.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		v = []float32{0, 0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: v},
	}, nil
}

func newTestEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors: map[string][]float32{
			"derivatives measure rates of change": {1, 0, 0},
			"the krebs cycle produces ATP":        {0, 1, 0},
			"integrals accumulate quantities":     {0.7071, 0.7071, 0},
			"how do derivatives work":             {0.9487, 0.3162, 0},
		},
	}
}

func newTestStore(t *testing.T, embedder embedding.EmbeddingProvider) *Store {
	t.Helper()
	s, err := New(Config{Collection: "test_content"}, embedder, nil)
	require.NoError(t, err)
	return s
}

func TestStoreQueryOrdering(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())
	ctx := context.Background()

	docs := []string{
		"derivatives measure rates of change",
		"the krebs cycle produces ATP",
		"integrals accumulate quantities",
	}
	ids := []string{"doc1_chunk_0", "doc2_chunk_0", "doc3_chunk_0"}
	metas := []map[string]string{
		{vectorstore.MetaCourseName: "Calculus I", vectorstore.MetaChunkID: "doc1_chunk_0"},
		{vectorstore.MetaCourseName: "Biology", vectorstore.MetaChunkID: "doc2_chunk_0"},
		{vectorstore.MetaCourseName: "Calculus I", vectorstore.MetaChunkID: "doc3_chunk_0"},
	}

	require.NoError(t, s.Add(ctx, docs, ids, metas))

	results, err := s.Query(ctx, "how do derivatives work", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "doc1_chunk_0", results[0].ID)
	assert.Equal(t, "doc3_chunk_0", results[1].ID)
	assert.Equal(t, "doc2_chunk_0", results[2].ID)

	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, r.Distance, results[i-1].Distance,
				"distances must be ascending")
		}
	}
	assert.Equal(t, "Calculus I", results[0].Metadata[vectorstore.MetaCourseName])
}

func TestStoreQueryCapsK(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx,
		[]string{"derivatives measure rates of change", "the krebs cycle produces ATP"},
		[]string{"a", "b"},
		[]map[string]string{{}, {}},
	))

	results, err := s.Query(ctx, "how do derivatives work", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStoreQueryEmptyCollection(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())

	results, err := s.Query(context.Background(), "anything", 3, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestStoreQueryWhereFilter(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx,
		[]string{"derivatives measure rates of change", "the krebs cycle produces ATP"},
		[]string{"a", "b"},
		[]map[string]string{
			{vectorstore.MetaCourseID: "c-101"},
			{vectorstore.MetaCourseID: "c-202"},
		},
	))

	results, err := s.Query(ctx, "how do derivatives work", 2,
		map[string]string{vectorstore.MetaCourseID: "c-202"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestStoreAddNilMetadatas(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx,
		[]string{"derivatives measure rates of change"},
		[]string{"a"},
		nil,
	))

	results, err := s.Query(ctx, "how do derivatives work", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unknown", results[0].Metadata[vectorstore.MetaSource])
}

func TestStoreInvalidArguments(t *testing.T) {
	s := newTestStore(t, newTestEmbedder())
	ctx := context.Background()

	err := s.Add(ctx, []string{"one", "two"}, []string{"only-one"}, nil)
	assert.True(t, fault.IsKind(err, fault.KindInvalidArgument))

	err = s.Add(ctx, nil, nil, nil)
	assert.True(t, fault.IsKind(err, fault.KindInvalidArgument))

	_, err = s.Query(ctx, "", 3, nil)
	assert.True(t, fault.IsKind(err, fault.KindInvalidArgument))

	_, err = s.Query(ctx, "question", 0, nil)
	assert.True(t, fault.IsKind(err, fault.KindInvalidArgument))
}

func TestStoreEmbedderFailureIsUnavailable(t *testing.T) {
	broken := &stubEmbedder{err: errors.New("connection refused")}
	s := newTestStore(t, broken)
	ctx := context.Background()

	err := s.Add(ctx, []string{"text"}, []string{"a"}, nil)
	assert.True(t, fault.IsKind(err, fault.KindUnavailable))

	// Query against a non-empty collection so the embedder is reached.
	healthy := newTestEmbedder()
	s2 := newTestStore(t, healthy)
	require.NoError(t, s2.Add(ctx, []string{"derivatives measure rates of change"}, []string{"a"}, nil))
	s2.embedder = broken

	_, err = s2.Query(ctx, "how do derivatives work", 1, nil)
	assert.True(t, fault.IsKind(err, fault.KindUnavailable))
}
