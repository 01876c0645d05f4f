package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socioscope-be/pkg/llm"
)

// stubProvider scripts per-document answers and records every backend call.
type stubProvider struct {
	mu          sync.Mutex
	mapCalls    int
	reduceCalls int
	reduceInput string

	answers  map[string]string // document marker -> answer
	failures map[string]error  // document marker -> error
	delays   map[string]time.Duration
	reply    string // reduce reply
	reduceBy error
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	system := history[0].Content
	user := history[len(history)-1].Content

	if strings.Contains(system, "consolidates information") {
		s.mu.Lock()
		s.reduceCalls++
		s.reduceInput = user
		s.mu.Unlock()
		if s.reduceBy != nil {
			return "", s.reduceBy
		}
		return s.reply, nil
	}

	s.mu.Lock()
	s.mapCalls++
	s.mu.Unlock()

	for marker, d := range s.delays {
		if strings.Contains(user, marker) {
			time.Sleep(d)
		}
	}
	for marker, err := range s.failures {
		if strings.Contains(user, marker) {
			return "", err
		}
	}
	for marker, answer := range s.answers {
		if strings.Contains(user, marker) {
			return answer, nil
		}
	}
	return "", fmt.Errorf("no scripted answer for: %s", user)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newOrchestrator(p llm.LLMProvider) *Orchestrator {
	return NewOrchestrator(p, time.Minute, log.New(io.Discard, "", 0))
}

func TestRunQueryEmptySelection(t *testing.T) {
	provider := &stubProvider{}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "anything?", nil)

	assert.Nil(t, exchange)
	assert.ErrorIs(t, err, ErrSelectionEmpty)
	assert.Equal(t, 0, provider.mapCalls, "no backend call may happen on empty selection")
	assert.Equal(t, 0, provider.reduceCalls)
}

func TestRunQuerySingleDocumentSkipsReduce(t *testing.T) {
	provider := &stubProvider{
		answers: map[string]string{"doc-one": "the single answer"},
	}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "what?", []Source{
		{ID: "fr-004", Content: "doc-one"},
	})

	require.NoError(t, err)
	assert.Equal(t, "the single answer", exchange.FinalAnswer)
	assert.Equal(t, StateDone, exchange.State)
	assert.Equal(t, 1, provider.mapCalls)
	assert.Equal(t, 0, provider.reduceCalls, "reduce must be skipped for a single partial")
}

func TestRunQueryReduceKeepsSelectionOrder(t *testing.T) {
	// The first document's map call completes last; the reduce input must
	// still list its answer first.
	provider := &stubProvider{
		answers: map[string]string{
			"doc-one":   "answer A",
			"doc-two":   "answer B",
			"doc-three": "answer C",
		},
		delays: map[string]time.Duration{"doc-one": 50 * time.Millisecond},
		reply:  "consolidated",
	}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "what?", []Source{
		{ID: "fr-004", Content: "doc-one"},
		{ID: "dk-021", Content: "doc-two"},
		{ID: "co-006", Content: "doc-three"},
	})

	require.NoError(t, err)
	assert.Equal(t, "consolidated", exchange.FinalAnswer)
	assert.Equal(t, 3, provider.mapCalls)
	assert.Equal(t, 1, provider.reduceCalls)

	posA := strings.Index(provider.reduceInput, "Response 1:\nanswer A")
	posB := strings.Index(provider.reduceInput, "Response 2:\nanswer B")
	posC := strings.Index(provider.reduceInput, "Response 3:\nanswer C")
	assert.True(t, posA >= 0 && posB > posA && posC > posB,
		"partials must be labeled 1..k in original selection order, got:\n%s", provider.reduceInput)

	require.Len(t, exchange.Partials, 3)
	assert.Equal(t, "answer A", exchange.Partials[0].Answer)
	assert.Equal(t, "answer B", exchange.Partials[1].Answer)
	assert.Equal(t, "answer C", exchange.Partials[2].Answer)
}

func TestRunQueryToleratesOneFailedMap(t *testing.T) {
	provider := &stubProvider{
		answers: map[string]string{
			"doc-one":   "answer A",
			"doc-three": "answer C",
		},
		failures: map[string]error{"doc-two": errors.New("backend timeout")},
		reply:    "consolidated",
	}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "what?", []Source{
		{ID: "fr-004", Content: "doc-one"},
		{ID: "dk-021", Content: "doc-two"},
		{ID: "co-006", Content: "doc-three"},
	})

	require.NoError(t, err, "one failed map must not fail the query")
	assert.Equal(t, "consolidated", exchange.FinalAnswer)
	assert.Equal(t, StateDone, exchange.State)

	failures := exchange.Failures()
	require.Len(t, failures, 1, "the failure must be reported, not swallowed")
	assert.Equal(t, "dk-021", failures[0].SourceID)

	// Failed partial excluded from reduce input.
	assert.NotContains(t, provider.reduceInput, "backend timeout")
	assert.Contains(t, provider.reduceInput, "Response 2:\nanswer C")
}

func TestRunQueryAllMapsFailed(t *testing.T) {
	backendErr := errors.New("rate limited")
	provider := &stubProvider{
		failures: map[string]error{
			"doc-one": backendErr,
			"doc-two": backendErr,
		},
	}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "what?", []Source{
		{ID: "fr-004", Content: "doc-one"},
		{ID: "dk-021", Content: "doc-two"},
	})

	var allFailed *AllMapsFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Failures, 2)
	assert.Equal(t, 0, provider.reduceCalls, "reduce must never run when every map failed")
	require.NotNil(t, exchange)
	assert.Equal(t, StateFailed, exchange.State)
}

func TestRunQueryReduceFailurePreservesPartials(t *testing.T) {
	provider := &stubProvider{
		answers: map[string]string{
			"doc-one": "answer A",
			"doc-two": "answer B",
		},
		reduceBy: errors.New("consolidation exploded"),
	}
	o := newOrchestrator(provider)

	exchange, err := o.RunQuery(context.Background(), "what?", []Source{
		{ID: "fr-004", Content: "doc-one"},
		{ID: "dk-021", Content: "doc-two"},
	})

	var reduceErr *ReduceError
	require.ErrorAs(t, err, &reduceErr)
	require.NotNil(t, exchange, "completed map work must survive a reduce failure")
	assert.Equal(t, StateFailed, exchange.State)
	assert.Equal(t, "answer A", exchange.Partials[0].Answer)
	assert.Equal(t, "answer B", exchange.Partials[1].Answer)
}

func TestReduceShortCircuits(t *testing.T) {
	provider := &stubProvider{reply: "should not be used"}
	o := newOrchestrator(provider)

	got, err := o.Reduce(context.Background(), "q", []string{"only answer"})
	require.NoError(t, err)
	assert.Equal(t, "only answer", got)
	assert.Equal(t, 0, provider.reduceCalls)
}

func TestReduceEmptyPartials(t *testing.T) {
	o := newOrchestrator(&stubProvider{})

	_, err := o.Reduce(context.Background(), "q", nil)
	var allFailed *AllMapsFailedError
	assert.ErrorAs(t, err, &allFailed)
}
