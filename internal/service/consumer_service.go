package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/rag/chunk"
	"ai-tutor-be/pkg/vectorstore"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	store        vectorstore.Store
	chunkSize    int
	chunkOverlap int
	logger       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store vectorstore.Store,
	chunkSize, chunkOverlap int,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal ingestion message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer", "Processing document", map[string]interface{}{
		"document_id":    payload.DocumentID,
		"content_length": len(payload.Content),
	})

	chunks, err := chunk.Split(payload.Content, cs.chunkSize, cs.chunkOverlap)
	if err != nil {
		cs.logger.Error("consumer", "Failed to split document", map[string]interface{}{
			"document_id": payload.DocumentID,
			"error":       err.Error(),
		})
		msg.Ack() // Malformed parameters won't improve on retry.
		return
	}
	if len(chunks) == 0 {
		cs.logger.Warn("consumer", "Document has no content, skipping", map[string]interface{}{
			"document_id": payload.DocumentID,
		})
		msg.Ack()
		return
	}

	source := payload.Title
	if source == "" {
		source = "unknown"
	}

	documents := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for i, c := range chunks {
		chunkID := fmt.Sprintf("%s_chunk_%d", payload.DocumentID, c.Index)
		documents[i] = c.Text
		ids[i] = chunkID
		metadatas[i] = map[string]string{
			vectorstore.MetaDocumentID: payload.DocumentID,
			vectorstore.MetaChunkID:    chunkID,
			vectorstore.MetaChunkIndex: fmt.Sprintf("%d", c.Index),
			vectorstore.MetaCourseID:   payload.CourseID,
			vectorstore.MetaCourseName: payload.CourseName,
			vectorstore.MetaSubject:    payload.Subject,
			vectorstore.MetaSource:     source,
		}
	}

	if err := cs.store.Add(ctx, documents, ids, metadatas); err != nil {
		cs.logger.Error("consumer", "Failed to store document chunks", map[string]interface{}{
			"document_id": payload.DocumentID,
			"kind":        fault.KindOf(err).String(),
			"error":       err.Error(),
		})
		if fault.IsKind(err, fault.KindUnavailable) {
			msg.Nack() // Retriable
			return
		}
		msg.Ack()
		return
	}

	cs.logger.Info("consumer", "Document ingested", map[string]interface{}{
		"document_id": payload.DocumentID,
		"chunks":      len(chunks),
	})
	msg.Ack()
}
