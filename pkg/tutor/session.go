// Package tutor drives a tutoring conversation: ordered turns, optional
// retrieval grounding per question, and rollback of the user turn when a
// generation fails so the history never carries an unanswered question.
package tutor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/llm"
	"ai-tutor-be/pkg/rag/prompt"
	"ai-tutor-be/pkg/rag/retrieval"
	"ai-tutor-be/pkg/vectorstore"
)

// State is the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateGenerating
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateGenerating:
		return "generating"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Generator is the slice of the response generator the session needs.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, turns []llm.Message) (string, error)
}

type Session struct {
	id                string
	generator         Generator
	systemInstruction string
	logger            *zap.Logger

	// retrieval grounding, optional
	store    vectorstore.Store
	topK     int
	courseID string

	turns []llm.Message
	state State
}

type SessionOption func(*Session)

// WithRetrieval grounds each question in the k nearest chunks from the
// store. An empty courseID searches all courses.
func WithRetrieval(store vectorstore.Store, k int, courseID string) SessionOption {
	return func(s *Session) {
		s.store = store
		s.topK = k
		s.courseID = courseID
	}
}

func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHistory seeds the session with previously recorded turns.
func WithHistory(turns []llm.Message) SessionOption {
	return func(s *Session) {
		s.turns = append(s.turns, turns...)
	}
}

func NewSession(generator Generator, systemInstruction string, options ...SessionOption) *Session {
	s := &Session{
		id:                uuid.New().String(),
		generator:         generator,
		systemInstruction: systemInstruction,
		logger:            zap.NewNop(),
		state:             StateIdle,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Turns returns a copy of the conversation history.
func (s *Session) Turns() []llm.Message {
	turns := make([]llm.Message, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Ask records the question as a user turn, generates the answer and
// records it as the assistant turn. When generation fails the user turn
// is retracted and the session stays usable; the error carries the fault
// kind for the caller's policy.
//
// An unavailable store degrades to an ungrounded answer instead of
// failing the question.
func (s *Session) Ask(ctx context.Context, question string) (string, []retrieval.Citation, error) {
	if s.state == StateEnded {
		return "", nil, fault.New(fault.KindInvalidArgument, "tutor.Ask", "session has ended")
	}

	s.state = StateGenerating
	defer func() {
		if s.state == StateGenerating {
			s.state = StateIdle
		}
	}()

	contextBlock, citations, err := s.retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}

	userTurn := prompt.BuildUserTurn(question, contextBlock)
	s.turns = append(s.turns, llm.Message{Role: llm.RoleUser, Content: userTurn})

	answer, err := s.generator.Generate(ctx, s.systemInstruction, s.turns)
	if err != nil {
		// Retract the user turn so a failed generation leaves no trace.
		s.turns = s.turns[:len(s.turns)-1]
		s.logger.Warn("generation failed, user turn rolled back",
			zap.String("session_id", s.id),
			zap.String("kind", fault.KindOf(err).String()),
		)
		return "", nil, err
	}

	s.turns = append(s.turns, llm.Message{Role: llm.RoleAssistant, Content: answer})
	return answer, citations, nil
}

// End transitions the session to its terminal state.
func (s *Session) End() {
	s.state = StateEnded
}

func (s *Session) retrieve(ctx context.Context, question string) (string, []retrieval.Citation, error) {
	if s.store == nil {
		return "", nil, nil
	}

	var where map[string]string
	if s.courseID != "" {
		where = map[string]string{vectorstore.MetaCourseID: s.courseID}
	}

	results, err := s.store.Query(ctx, question, s.topK, where)
	if err != nil {
		if fault.IsKind(err, fault.KindUnavailable) {
			s.logger.Warn("vector store unavailable, answering without context",
				zap.String("session_id", s.id),
				zap.Error(err),
			)
			return "", nil, nil
		}
		return "", nil, err
	}

	contextBlock, citations := retrieval.Format(results)
	return contextBlock, citations, nil
}

// IsQuit reports whether input ends the conversation.
func IsQuit(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "quit")
}
