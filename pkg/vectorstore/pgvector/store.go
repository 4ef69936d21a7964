// Package pgvector implements the vector store boundary on Postgres with
// the pgvector extension, using cosine distance ordering.
package pgvector

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	pgvectorgo "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ai-tutor-be/pkg/embedding"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/vectorstore"
)

const defaultTimeout = 10 * time.Second

// CourseChunk is one embedded chunk of uploaded course material.
type CourseChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkID    string            `gorm:"type:text;not null;uniqueIndex"`
	DocumentID string            `gorm:"type:text;index"`
	Document   string            `gorm:"type:text"`
	Embedding  pgvectorgo.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimension
	CourseID   string            `gorm:"type:text;index"`
	CourseName string            `gorm:"type:text"`
	Subject    string            `gorm:"type:text"`
	Source     string            `gorm:"type:text"`
	ChunkIndex int               `gorm:"default:0"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (CourseChunk) TableName() string {
	return "course_chunks"
}

// filterColumns maps metadata keys allowed in a where clause to their
// table columns.
var filterColumns = map[string]string{
	vectorstore.MetaDocumentID: "document_id",
	vectorstore.MetaCourseID:   "course_id",
	vectorstore.MetaCourseName: "course_name",
	vectorstore.MetaSubject:    "subject",
	vectorstore.MetaSource:     "source",
}

type Config struct {
	// Timeout bounds each Add/Query call, embedding included.
	Timeout time.Duration
}

type Store struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
	timeout  time.Duration
	logger   *zap.Logger
}

var _ vectorstore.Store = &Store{}

// New migrates the course_chunks table and returns a store bound to it.
// The pgvector extension must already be installed in the database.
func New(db *gorm.DB, config Config, embedder embedding.EmbeddingProvider, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	if err := db.AutoMigrate(&CourseChunk{}); err != nil {
		return nil, fault.Wrap(fault.KindUnavailable, "pgvector.New", err)
	}

	return &Store{
		db:       db,
		embedder: embedder,
		timeout:  config.Timeout,
		logger:   logger,
	}, nil
}

func (s *Store) Add(ctx context.Context, documents []string, ids []string, metadatas []map[string]string) error {
	const op = "pgvector.Add"

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

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows := make([]*CourseChunk, len(documents))
	for i, content := range documents {
		res, err := s.embedder.Generate(content, embedding.TaskRetrievalDocument)
		if err != nil {
			return fault.Wrap(fault.KindUnavailable, op, err)
		}

		meta := metadatas[i]
		chunkIndex := 0
		if v, ok := meta[vectorstore.MetaChunkIndex]; ok {
			chunkIndex = atoiOrZero(v)
		}

		rows[i] = &CourseChunk{
			ChunkID:    ids[i],
			DocumentID: meta[vectorstore.MetaDocumentID],
			Document:   content,
			Embedding:  pgvectorgo.NewVector(res.Embedding.Values),
			CourseID:   meta[vectorstore.MetaCourseID],
			CourseName: meta[vectorstore.MetaCourseName],
			Subject:    meta[vectorstore.MetaSubject],
			Source:     meta[vectorstore.MetaSource],
			ChunkIndex: chunkIndex,
		}
	}

	if err := s.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fault.Wrap(fault.KindUnavailable, op, err)
	}

	s.logger.Debug("inserted course chunks", zap.Int("count", len(rows)))
	return nil
}

func (s *Store) Query(ctx context.Context, text string, k int, where map[string]string) ([]vectorstore.QueryResult, error) {
	const op = "pgvector.Query"

	if text == "" {
		return nil, fault.New(fault.KindInvalidArgument, op, "query text is empty")
	}
	if k <= 0 {
		return nil, fault.Newf(fault.KindInvalidArgument, op, "k must be positive, got %d", k)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.embedder.Generate(text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fault.Wrap(fault.KindUnavailable, op, err)
	}
	queryVector := pgvectorgo.NewVector(res.Embedding.Values)

	type row struct {
		CourseChunk
		Distance float64
	}
	var rows []row

	query := s.db.WithContext(ctx).
		Table("course_chunks").
		Select("course_chunks.*, embedding <=> ? as distance", queryVector)

	for key, value := range where {
		column, ok := filterColumns[key]
		if !ok {
			return nil, fault.Newf(fault.KindInvalidArgument, op, "unsupported filter key %q", key)
		}
		query = query.Where(column+" = ?", value)
	}

	err = query.
		Order("distance ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fault.Wrap(fault.KindUnavailable, op, err)
	}

	results := make([]vectorstore.QueryResult, len(rows))
	for i, r := range rows {
		results[i] = vectorstore.QueryResult{
			Rank:     i + 1,
			ID:       r.ChunkID,
			Content:  r.Document,
			Metadata: r.metadata(),
			Distance: r.Distance,
		}
	}

	s.logger.Debug("queried course chunks",
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// metadata rebuilds the flat metadata map from the row columns, skipping
// empty values so formatter fallbacks still apply.
func (c *CourseChunk) metadata() map[string]string {
	meta := make(map[string]string)
	put := func(key, value string) {
		if value != "" {
			meta[key] = value
		}
	}
	put(vectorstore.MetaChunkID, c.ChunkID)
	put(vectorstore.MetaDocumentID, c.DocumentID)
	put(vectorstore.MetaCourseID, c.CourseID)
	put(vectorstore.MetaCourseName, c.CourseName)
	put(vectorstore.MetaSubject, c.Subject)
	put(vectorstore.MetaSource, c.Source)
	meta[vectorstore.MetaChunkIndex] = strconv.Itoa(c.ChunkIndex)
	return meta
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
