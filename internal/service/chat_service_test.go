package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/llm"
	"ai-tutor-be/pkg/rag/prompt"
	"ai-tutor-be/pkg/rag/response"
	"ai-tutor-be/pkg/vectorstore"
)

type fakeProvider struct {
	answers []string
	errs    []error
	calls   int
	lastOpt llm.Options
	history [][]llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Options{}
	for _, o := range options {
		o(&opts)
	}
	f.lastOpt = opts

	copied := make([]llm.Message, len(history))
	copy(copied, history)
	f.history = append(f.history, copied)

	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var answer string
	if i < len(f.answers) {
		answer = f.answers[i]
	}
	return answer, err
}

func (f *fakeProvider) Generate(ctx context.Context, promptText string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: promptText}}, options...)
}

type fakeStore struct {
	results []vectorstore.QueryResult
	err     error
	queries int
	lastK   int
	lastW   map[string]string
}

func (f *fakeStore) Add(ctx context.Context, documents []string, ids []string, metadatas []map[string]string) error {
	return nil
}

func (f *fakeStore) Query(ctx context.Context, text string, k int, where map[string]string) ([]vectorstore.QueryResult, error) {
	f.queries++
	f.lastK = k
	f.lastW = where
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newTestService(t *testing.T, provider llm.Provider, store vectorstore.Store) IChatService {
	t.Helper()
	return NewChatService(
		store,
		prompt.NewLibrary(),
		response.NewGenerator(provider, nil), // serving mode, no retry
		memory.NewSessionRepository(),
		3,
		logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
	)
}

func TestChatGroundedAnswer(t *testing.T) {
	provider := &fakeProvider{answers: []string{"start by factoring"}}
	store := &fakeStore{results: []vectorstore.QueryResult{
		{
			Rank:    1,
			Content: "Factoring quadratics splits them into binomials.",
			Metadata: map[string]string{
				vectorstore.MetaCourseName: "Algebra II",
				vectorstore.MetaChunkID:    "doc1_chunk_2",
				vectorstore.MetaDocumentID: "doc1",
			},
		},
		{
			Rank:    2,
			Content: "The quadratic formula always applies.",
			Metadata: map[string]string{
				vectorstore.MetaCourseName: "Algebra II",
				vectorstore.MetaChunkID:    "doc2_chunk_0",
				vectorstore.MetaDocumentID: "doc2",
			},
		},
	}}

	svc := newTestService(t, provider, store)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Question: "how do I solve x^2-4=0",
		Subject:  "math",
		CourseID: "c-101",
	})
	require.NoError(t, err)
	assert.Equal(t, "start by factoring", res.Answer)

	// Citations keep retrieval order and ranks.
	require.Len(t, res.Sources, 2)
	assert.Equal(t, 1, res.Sources[0].Rank)
	assert.Equal(t, 2, res.Sources[1].Rank)
	assert.Equal(t, "doc1_chunk_2", res.Sources[0].ChunkID)

	// Course filter flows into the store query.
	assert.Equal(t, map[string]string{vectorstore.MetaCourseID: "c-101"}, store.lastW)
	assert.Equal(t, 3, store.lastK)

	// The grounded template and subject profile reached the provider.
	assert.Contains(t, provider.history[0][0].Content, "[Source 1]: Factoring quadratics")
	assert.Contains(t, provider.lastOpt.SystemInstruction, "mathematics tutor")
	assert.Equal(t, 0.7, provider.lastOpt.Temperature)
}

func TestChatDegradesWhenStoreUnavailable(t *testing.T) {
	provider := &fakeProvider{answers: []string{"general guidance"}}
	store := &fakeStore{err: fault.New(fault.KindUnavailable, "chromem.Query", "store timeout")}

	svc := newTestService(t, provider, store)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Question: "help me"})
	require.NoError(t, err)
	assert.Equal(t, "general guidance", res.Answer)
	assert.Empty(t, res.Sources)

	// Ungrounded template, generic profile fallback.
	assert.Contains(t, provider.history[0][0].Content, "couldn't find specific course materials")
	assert.Contains(t, provider.lastOpt.SystemInstruction, "academic tutor")
}

// Serving mode must not sleep: a rate-limited provider call surfaces after
// exactly one attempt so the handler can answer 429.
func TestChatRateLimitSurfacesImmediately(t *testing.T) {
	provider := &fakeProvider{errs: []error{
		fault.New(fault.KindRateLimited, "gemini.Chat", "resource exhausted"),
	}}
	svc := newTestService(t, provider, &fakeStore{})

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Question: "hi"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindRateLimited))
	assert.Equal(t, 1, provider.calls)
}

func TestSessionChatKeepsHistoryAndRollsBack(t *testing.T) {
	provider := &fakeProvider{
		answers: []string{"first answer", "", "third answer"},
		errs:    []error{nil, fault.New(fault.KindGenerationFailed, "gemini.Chat", "upstream 500")},
	}
	svc := newTestService(t, provider, &fakeStore{})
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Subject: "physics"})
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)

	res, err := svc.SessionChat(ctx, created.Id, &dto.SessionChatRequest{Question: "what is momentum"})
	require.NoError(t, err)
	assert.Equal(t, "first answer", res.Answer)

	// Failed turn: error surfaces, history rolls back.
	_, err = svc.SessionChat(ctx, created.Id, &dto.SessionChatRequest{Question: "and impulse?"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindGenerationFailed))

	// Next turn still works; provider sees 3 prior turns (2 recorded + new user).
	res, err = svc.SessionChat(ctx, created.Id, &dto.SessionChatRequest{Question: "try again"})
	require.NoError(t, err)
	assert.Equal(t, "third answer", res.Answer)
	assert.Len(t, provider.history[2], 3)
}

func TestSessionChatUnknownSessionIs404(t *testing.T) {
	svc := newTestService(t, &fakeProvider{}, &fakeStore{})

	_, err := svc.SessionChat(context.Background(), "nope", &dto.SessionChatRequest{Question: "hi"})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}
