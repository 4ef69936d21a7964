package service

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/llm"
	"ai-tutor-be/pkg/rag/prompt"
	"ai-tutor-be/pkg/rag/response"
	"ai-tutor-be/pkg/rag/retrieval"
	"ai-tutor-be/pkg/tutor"
	"ai-tutor-be/pkg/vectorstore"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	SessionChat(ctx context.Context, sessionID string, req *dto.SessionChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	store      vectorstore.Store
	library    *prompt.Library
	generator  *response.Generator
	sessions   *memory.SessionRepository
	retrievalK int
	logger     logger.ILogger
}

// NewChatService wires the serving-mode pipeline. The generator must be
// built without the rate-limit retry: a limited request answers 429
// straight away instead of sleeping in the handler.
func NewChatService(
	store vectorstore.Store,
	library *prompt.Library,
	generator *response.Generator,
	sessions *memory.SessionRepository,
	retrievalK int,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		store:      store,
		library:    library,
		generator:  generator,
		sessions:   sessions,
		retrievalK: retrievalK,
		logger:     logger,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	contextBlock, citations := s.retrieve(ctx, req.Question, req.CourseID)

	systemInstruction, userTurn := s.library.Assemble(req.Subject, req.Question, contextBlock)

	answer, err := s.generator.Generate(ctx, systemInstruction, []llm.Message{
		{Role: llm.RoleUser, Content: userTurn},
	})
	if err != nil {
		return nil, err
	}

	if citations == nil {
		citations = []retrieval.Citation{}
	}
	return &dto.ChatResponse{
		Answer:  answer,
		Sources: citations,
	}, nil
}

func (s *chatService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	options := []tutor.SessionOption{}
	if s.store != nil {
		options = append(options, tutor.WithRetrieval(s.store, s.retrievalK, req.CourseID))
	}

	session := tutor.NewSession(s.generator, s.library.Instruction(req.Subject), options...)
	s.sessions.Save(session)

	s.logger.Info("chat", "Tutoring session created", map[string]interface{}{
		"session_id": session.ID(),
		"subject":    req.Subject,
	})

	return &dto.CreateSessionResponse{Id: session.ID()}, nil
}

func (s *chatService) SessionChat(ctx context.Context, sessionID string, req *dto.SessionChatRequest) (*dto.ChatResponse, error) {
	entry, found := s.sessions.Get(sessionID)
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	entry.Mu.Lock()
	defer entry.Mu.Unlock()

	answer, citations, err := entry.Session.Ask(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	if citations == nil {
		citations = []retrieval.Citation{}
	}
	return &dto.ChatResponse{
		Answer:  answer,
		Sources: citations,
	}, nil
}

// retrieve queries the store and degrades to no context when it is
// unavailable or misconfigured. A chat must still answer when retrieval
// cannot.
func (s *chatService) retrieve(ctx context.Context, question, courseID string) (string, []retrieval.Citation) {
	if s.store == nil {
		return "", nil
	}

	var where map[string]string
	if courseID != "" {
		where = map[string]string{vectorstore.MetaCourseID: courseID}
	}

	results, err := s.store.Query(ctx, question, s.retrievalK, where)
	if err != nil {
		s.logger.Warn("chat", "Vector store query failed, answering without context", map[string]interface{}{
			"kind":  fault.KindOf(err).String(),
			"error": err.Error(),
		})
		return "", nil
	}

	return retrieval.Format(results)
}
