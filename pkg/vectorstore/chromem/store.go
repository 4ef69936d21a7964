// Package chromem implements the vector store boundary on top of
// chromem-go, an embedded Chroma-style database. No external service is
// required; only the embedding provider leaves the process.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	chromemgo "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"ai-tutor-be/pkg/embedding"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/vectorstore"
)

const (
	defaultCollection = "course_content"
	defaultTimeout    = 10 * time.Second
)

type Config struct {
	// Path is the directory for persistent storage. Empty means in-memory.
	Path string

	// Collection is the collection name. Default: "course_content".
	Collection string

	// Timeout bounds each Add/Query call, embedding included.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Collection == "" {
		c.Collection = defaultCollection
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	embedder   embedding.EmbeddingProvider
	config     Config
	logger     *zap.Logger
}

var _ vectorstore.Store = &Store{}

// New opens (or creates) the collection. Opening an existing collection is
// never destructive; previously stored chunks survive restarts when a
// persistent path is configured.
func New(config Config, embedder embedding.EmbeddingProvider, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("chromem: embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.applyDefaults()

	var db *chromemgo.DB
	if config.Path == "" {
		db = chromemgo.NewDB()
	} else {
		if err := os.MkdirAll(config.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", config.Path, err)
		}
		var err error
		db, err = chromemgo.NewPersistentDB(config.Path, false)
		if err != nil {
			return nil, fmt.Errorf("opening chromem DB: %w", err)
		}
	}

	s := &Store{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, s.queryEmbeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", config.Collection, err)
	}
	s.collection = collection

	logger.Info("chromem store ready",
		zap.String("collection", config.Collection),
		zap.String("path", config.Path),
		zap.Int("documents", collection.Count()),
	)

	return s, nil
}

// queryEmbeddingFunc adapts the embedding provider for chromem's query path.
func (s *Store) queryEmbeddingFunc() chromemgo.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		res, err := s.embedder.Generate(text, embedding.TaskRetrievalQuery)
		if err != nil {
			return nil, err
		}
		return res.Embedding.Values, nil
	}
}

func (s *Store) Add(ctx context.Context, documents []string, ids []string, metadatas []map[string]string) error {
	const op = "chromem.Add"

	if len(documents) == 0 {
		return fault.New(fault.KindInvalidArgument, op, "no documents given")
	}
	if len(ids) != len(documents) {
		return fault.Newf(fault.KindInvalidArgument, op, "got %d ids for %d documents", len(ids), len(documents))
	}
	if metadatas == nil {
		metadatas = make([]map[string]string, len(documents))
		for i := range metadatas {
			metadatas[i] = map[string]string{vectorstore.MetaSource: "unknown"}
		}
	}
	if len(metadatas) != len(documents) {
		return fault.Newf(fault.KindInvalidArgument, op, "got %d metadatas for %d documents", len(metadatas), len(documents))
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	docs := make([]chromemgo.Document, len(documents))
	for i, content := range documents {
		res, err := s.embedder.Generate(content, embedding.TaskRetrievalDocument)
		if err != nil {
			return fault.Wrap(fault.KindUnavailable, op, fmt.Errorf("embed document %s: %w", ids[i], err))
		}
		docs[i] = chromemgo.Document{
			ID:        ids[i],
			Content:   content,
			Metadata:  metadatas[i],
			Embedding: res.Embedding.Values,
		}
	}

	// Concurrency 1: embeddings are already computed above.
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fault.Wrap(fault.KindUnavailable, op, err)
	}

	s.logger.Debug("added documents to chromem",
		zap.String("collection", s.config.Collection),
		zap.Int("count", len(docs)),
	)

	return nil
}

func (s *Store) Query(ctx context.Context, text string, k int, where map[string]string) ([]vectorstore.QueryResult, error) {
	const op = "chromem.Query"

	if text == "" {
		return nil, fault.New(fault.KindInvalidArgument, op, "query text is empty")
	}
	if k <= 0 {
		return nil, fault.Newf(fault.KindInvalidArgument, op, "k must be positive, got %d", k)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	// chromem requires nResults <= document count.
	docCount := s.collection.Count()
	if docCount == 0 {
		return nil, nil
	}
	if k > docCount {
		k = docCount
	}

	res, err := s.embedder.Generate(text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fault.Wrap(fault.KindUnavailable, op, fmt.Errorf("embed query: %w", err))
	}

	results, err := s.collection.QueryEmbedding(ctx, res.Embedding.Values, k, where, nil)
	if err != nil {
		return nil, fault.Wrap(fault.KindUnavailable, op, err)
	}

	// chromem returns cosine similarity sorted descending; the pipeline
	// contract is ascending cosine distance.
	queryResults := make([]vectorstore.QueryResult, len(results))
	for i, r := range results {
		queryResults[i] = vectorstore.QueryResult{
			Rank:     i + 1,
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Distance: 1 - float64(r.Similarity),
		}
	}

	s.logger.Debug("queried chromem collection",
		zap.String("collection", s.config.Collection),
		zap.Int("k", k),
		zap.Int("results", len(queryResults)),
	)

	return queryResults, nil
}
