package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/rag/chunk"
)

type IIngestService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
}

type ingestService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	chunkSize    int
	chunkOverlap int
	logger       logger.ILogger
}

// NewIngestService enqueues documents for background embedding. The
// response reports the chunk count up front; the consumer does the
// splitting and storing.
func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunkSize, chunkOverlap int,
	logger logger.ILogger,
) IIngestService {
	return &ingestService{
		pubSub:       pubSub,
		topicName:    topicName,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

func (s *ingestService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	count, err := chunk.Count(req.Content, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}

	documentID := uuid.New().String()

	payload, err := json.Marshal(dto.IngestDocumentMessage{
		DocumentID: documentID,
		Title:      req.Title,
		Content:    req.Content,
		CourseID:   req.CourseID,
		CourseName: req.CourseName,
		Subject:    req.Subject,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		return nil, err
	}

	s.logger.Info("ingest", "Document accepted for ingestion", map[string]interface{}{
		"document_id": documentID,
		"chunks":      count,
		"course_id":   req.CourseID,
	})

	return &dto.IngestDocumentResponse{
		DocumentID: documentID,
		Chunks:     count,
	}, nil
}
