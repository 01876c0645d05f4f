package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"socioscope-be/internal/dto"
	"socioscope-be/internal/entity"
	"socioscope-be/internal/repository/contract"
	"socioscope-be/internal/repository/memory"
	"socioscope-be/internal/repository/specification"
	"socioscope-be/internal/repository/unitofwork"
	"socioscope-be/pkg/events"
	"socioscope-be/pkg/llm"
	"socioscope-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers map calls by document marker and counts reduce
// calls separately.

type scriptedProvider struct {
	mu          sync.Mutex
	answers     map[string]string // content marker -> answer
	failing     map[string]error  // content marker -> error
	reduceOut   string
	reduceErr   error
	mapCalls    int
	reduceCalls int
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.Contains(history[0].Content, "consolidates information") {
		p.reduceCalls++
		if p.reduceErr != nil {
			return "", p.reduceErr
		}
		return p.reduceOut, nil
	}

	p.mapCalls++
	for marker, err := range p.failing {
		if strings.Contains(history[1].Content, marker) {
			return "", err
		}
	}
	for marker, answer := range p.answers {
		if strings.Contains(history[1].Content, marker) {
			return answer, nil
		}
	}
	return "", errors.New("no scripted answer")
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// fakeExchangeRepo is an in-memory contract.ExchangeRepository.

type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges []*entity.RagExchange
}

func (r *fakeExchangeRepo) Create(_ context.Context, exchange *entity.RagExchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, exchange)
	return nil
}

func (r *fakeExchangeRepo) Update(_ context.Context, _ *entity.RagExchange) error { return nil }

func (r *fakeExchangeRepo) filter(specs ...specification.Specification) []*entity.RagExchange {
	var sessionID uuid.UUID
	var analystID interface{}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySession:
			sessionID = s.SessionID
		case specification.FilterBy:
			if s.Field == "analyst_id" {
				analystID = s.Value
			}
		}
	}

	var out []*entity.RagExchange
	for _, e := range r.exchanges {
		if sessionID != uuid.Nil && e.SessionId != sessionID {
			continue
		}
		if analystID != nil && e.AnalystId != analystID.(uuid.UUID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

func (r *fakeExchangeRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.RagExchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.filter(specs...)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeExchangeRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.RagExchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(specs...), nil
}

func (r *fakeExchangeRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filter(specs...))), nil
}

func (r *fakeExchangeRepo) NextOrdinal(_ context.Context, sessionID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	highest := 0
	for _, e := range r.exchanges {
		if e.SessionId == sessionID && e.Ordinal > highest {
			highest = e.Ordinal
		}
	}
	return highest + 1, nil
}

func (r *fakeExchangeRepo) DeleteBySession(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.exchanges[:0]
	for _, e := range r.exchanges {
		if e.SessionId != sessionID {
			kept = append(kept, e)
		}
	}
	r.exchanges = kept
	return nil
}

type fakeUow struct {
	exchanges *fakeExchangeRepo
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }
func (u *fakeUow) Commit() error                 { return nil }
func (u *fakeUow) Rollback() error               { return nil }

func (u *fakeUow) AnalystRepository() contract.AnalystRepository   { return nil }
func (u *fakeUow) ExchangeRepository() contract.ExchangeRepository { return u.exchanges }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

type capturedPublisher struct {
	mu     sync.Mutex
	events []*events.QueryLifecycleEvent
}

func (p *capturedPublisher) PublishQueryLifecycle(event *events.QueryLifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturedPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type discussionFixture struct {
	svc       IDiscussionService
	store     *fakeStore
	provider  *scriptedProvider
	exchanges *fakeExchangeRepo
	publisher *capturedPublisher
	sessions  *memory.SessionRepository
}

func newDiscussionFixture(provider *scriptedProvider) *discussionFixture {
	exchanges := &fakeExchangeRepo{}
	publisher := &capturedPublisher{}
	sessions := memory.NewSessionRepository()
	docStore := newTestStore()

	svc := NewDiscussionService(
		&fakeUowFactory{uow: &fakeUow{exchanges: exchanges}},
		docStore,
		rag.NewOrchestrator(provider, time.Second, log.New(&strings.Builder{}, "", 0)),
		sessions,
		publisher,
		noopLogger{},
		"groq:qwen/qwen3-32b",
	)

	return &discussionFixture{
		svc:       svc,
		store:     docStore,
		provider:  provider,
		exchanges: exchanges,
		publisher: publisher,
		sessions:  sessions,
	}
}

func TestDiscussionService_AskMapReduce(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{
			"Welcome everyone": "Paris answer",
			"Lars : Hello":     "Jutland answer",
		},
		reduceOut: "Consolidated answer",
	}
	f := newDiscussionFixture(provider)
	analystID := uuid.New()

	res, err := f.svc.Ask(context.Background(), analystID, &dto.AskRequest{
		Question: "What did participants say?",
		Selected: []string{"FR-004", "DK-021"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Ordinal)
	assert.Equal(t, string(rag.StateDone), res.State)
	assert.Equal(t, "Consolidated answer", res.FinalResponse)

	// Partial answers keep selection order.
	require.Len(t, res.Responses, 2)
	assert.Equal(t, "FR-004", res.Responses[0].SourceId)
	assert.Equal(t, "Paris answer", res.Responses[0].Response)
	assert.Equal(t, "DK-021", res.Responses[1].SourceId)

	assert.Equal(t, 2, provider.mapCalls)
	assert.Equal(t, 1, provider.reduceCalls)

	require.Len(t, f.exchanges.exchanges, 1)
	saved := f.exchanges.exchanges[0]
	assert.Equal(t, analystID, saved.AnalystId)
	assert.Equal(t, string(rag.StateDone), saved.State)

	assert.Equal(t, []string{events.QueryMapping, events.QueryReducing, events.QueryDone}, f.publisher.types())
}

func TestDiscussionService_AskSingleDocSkipsReduce(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{"Lars : Hello": "Only answer"},
	}
	f := newDiscussionFixture(provider)

	res, err := f.svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		Question: "Anything?",
		Selected: []string{"DK-021"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Only answer", res.FinalResponse)
	assert.Equal(t, 0, provider.reduceCalls)
	assert.Equal(t, []string{events.QueryMapping, events.QueryDone}, f.publisher.types())
}

func TestDiscussionService_AskEmptySelection(t *testing.T) {
	f := newDiscussionFixture(&scriptedProvider{})

	_, err := f.svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{Question: "Anything?"})

	assert.ErrorIs(t, err, rag.ErrSelectionEmpty)
	assert.Empty(t, f.exchanges.exchanges)
	assert.Equal(t, 0, f.provider.mapCalls)
}

func TestDiscussionService_AskUsesSessionSelection(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{"Lars : Hello": "From session selection"},
	}
	f := newDiscussionFixture(provider)
	analystID := uuid.New()

	session := &entity.DiscussionSession{
		Id:        uuid.New(),
		AnalystId: analystID,
		Selected:  []string{"DK-021"},
		Model:     "groq:qwen/qwen3-32b",
	}
	f.sessions.Save(session)

	res, err := f.svc.Ask(context.Background(), analystID, &dto.AskRequest{Question: "Anything?"})
	require.NoError(t, err)

	assert.Equal(t, session.Id, res.SessionId)
	assert.Equal(t, "From session selection", res.FinalResponse)
}

func TestDiscussionService_AskPartialFailureTolerated(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{"Welcome everyone": "Paris answer"},
		failing: map[string]error{"Lars : Hello": errors.New("backend 500")},
	}
	f := newDiscussionFixture(provider)

	res, err := f.svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		Question: "Anything?",
		Selected: []string{"FR-004", "DK-021"},
	})
	require.NoError(t, err)

	// Single survivor short-circuits reduce.
	assert.Equal(t, "Paris answer", res.FinalResponse)
	assert.Equal(t, 0, provider.reduceCalls)
	require.Len(t, res.Responses, 2)
	assert.Empty(t, res.Responses[0].Error)
	assert.Contains(t, res.Responses[1].Error, "backend 500")
}

func TestDiscussionService_AskAllMapsFailedPersisted(t *testing.T) {
	provider := &scriptedProvider{
		failing: map[string]error{
			"Welcome everyone": errors.New("backend 500"),
			"Lars : Hello":     errors.New("backend 500"),
		},
	}
	f := newDiscussionFixture(provider)

	_, err := f.svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		Question: "Anything?",
		Selected: []string{"FR-004", "DK-021"},
	})

	var allFailed *rag.AllMapsFailedError
	require.ErrorAs(t, err, &allFailed)

	// The failed exchange is still recorded.
	require.Len(t, f.exchanges.exchanges, 1)
	assert.Equal(t, string(rag.StateFailed), f.exchanges.exchanges[0].State)
	assert.Equal(t, []string{events.QueryMapping, events.QueryFailed}, f.publisher.types())
}

func TestDiscussionService_AskContentUnavailable(t *testing.T) {
	f := newDiscussionFixture(&scriptedProvider{})

	_, err := f.svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		Question: "Anything?",
		Selected: []string{"XX-999"},
	})

	var unavailable *rag.ContentUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 0, f.provider.mapCalls)
}

func TestDiscussionService_MapOne(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{"Lars : Hello": "Mapped"},
	}
	f := newDiscussionFixture(provider)

	res, err := f.svc.MapOne(context.Background(), uuid.New(), &dto.MapRequest{
		Question: "Anything?",
		RecordId: "DK-021",
	})
	require.NoError(t, err)

	assert.Equal(t, "DK-021", res.RecordId)
	assert.Equal(t, "Mapped", res.Response)
}

func TestDiscussionService_ReduceSingleShortCircuit(t *testing.T) {
	provider := &scriptedProvider{reduceOut: "should not be used"}
	f := newDiscussionFixture(provider)

	res, err := f.svc.Reduce(context.Background(), &dto.ReduceRequest{
		Question:  "Anything?",
		Responses: []string{"only one"},
	})
	require.NoError(t, err)

	assert.Equal(t, "only one", res.Response)
	assert.Equal(t, 0, provider.reduceCalls)
}

func TestDiscussionService_HistoryAndClear(t *testing.T) {
	provider := &scriptedProvider{
		answers: map[string]string{
			"Welcome everyone": "Paris answer",
			"Lars : Hello":     "Jutland answer",
		},
		reduceOut: "Consolidated",
	}
	f := newDiscussionFixture(provider)
	analystID := uuid.New()

	first, err := f.svc.Ask(context.Background(), analystID, &dto.AskRequest{
		Question: "First question?",
		Selected: []string{"FR-004", "DK-021"},
	})
	require.NoError(t, err)
	_, err = f.svc.Ask(context.Background(), analystID, &dto.AskRequest{
		SessionId: first.SessionId,
		Question:  "Second question?",
		Selected:  []string{"DK-021"},
	})
	require.NoError(t, err)

	history, err := f.svc.GetHistory(context.Background(), analystID, first.SessionId)
	require.NoError(t, err)
	require.Len(t, history.Exchanges, 2)
	assert.Equal(t, 1, history.Exchanges[0].Ordinal)
	assert.Equal(t, 2, history.Exchanges[1].Ordinal)
	assert.Equal(t, "First question?", history.Exchanges[0].Question)

	// Another analyst cannot read or clear it.
	_, err = f.svc.GetHistory(context.Background(), uuid.New(), first.SessionId)
	assert.ErrorIs(t, err, ErrSessionForbidden)
	err = f.svc.ClearSession(context.Background(), uuid.New(), first.SessionId)
	assert.ErrorIs(t, err, ErrSessionForbidden)

	require.NoError(t, f.svc.ClearSession(context.Background(), analystID, first.SessionId))

	history, err = f.svc.GetHistory(context.Background(), analystID, first.SessionId)
	require.NoError(t, err)
	assert.Empty(t, history.Exchanges)
}
