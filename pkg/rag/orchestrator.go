package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"socioscope-be/pkg/llm"
)

const mapSystemPrompt = `You're a helpful AI academic research assistant.
Given a user question and a provided document, answer the user question using only that document.
If the document doesn't answer the question, just say you don't know. Format your answer in markdown.`

const reduceSystemPrompt = "You are a helpful assistant that consolidates information from multiple sources into a coherent final answer."

const reducePromptTemplate = `The following is a set of intermediate responses:
%s

Take these and distill it into a final, consolidated response to the main user question:
%s`

const (
	mapMaxTokens    = 1024
	reduceMaxTokens = 2048
)

// State tracks one query's lifecycle. Mapping with zero eventual successes
// transitions directly to Failed, bypassing Reducing.
type State string

const (
	StatePending  State = "PENDING"
	StateMapping  State = "MAPPING"
	StateReducing State = "REDUCING"
	StateDone     State = "DONE"
	StateFailed   State = "FAILED"
)

// Source is one selected document: stable identifier plus raw content.
type Source struct {
	ID      string
	Content string
}

// Partial is the outcome of one map call. Exactly one of Answer or Err is
// meaningful. Partials keep the caller's source order, not completion order.
type Partial struct {
	SourceID string
	Answer   string
	Err      error
}

// Exchange is the full record of one query: the question, the contents
// consulted, the per-source partial answers and the consolidated answer.
type Exchange struct {
	Question    string
	Contents    []string
	Partials    []Partial
	FinalAnswer string
	State       State
	FailReason  string
}

// Failures returns the map errors collected during the map phase.
func (e *Exchange) Failures() []*MapError {
	var failures []*MapError
	for _, p := range e.Partials {
		if p.Err != nil {
			failures = append(failures, &MapError{SourceID: p.SourceID, Err: p.Err})
		}
	}
	return failures
}

// Orchestrator runs the map-reduce flow against a completion backend. The
// same MapOne/Reduce operations back both the synchronous RunQuery mode and
// the client-driven two-phase mode, so both produce identical answers for
// identical backend responses.
type Orchestrator struct {
	provider    llm.LLMProvider
	callTimeout time.Duration
	logger      *log.Logger
}

func NewOrchestrator(provider llm.LLMProvider, callTimeout time.Duration, logger *log.Logger) *Orchestrator {
	if callTimeout <= 0 {
		callTimeout = 120 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		provider:    provider,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// MapOne answers the question from a single document. One backend call, no
// shared state: callers may fan these out concurrently.
func (o *Orchestrator) MapOne(ctx context.Context, question, content string, opts ...llm.Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	history := []llm.Message{
		{Role: "system", Content: mapSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Document:\n%s\n\nQuestion: %s", content, question)},
	}

	opts = append([]llm.Option{llm.WithMaxTokens(mapMaxTokens)}, opts...)
	return o.provider.Chat(ctx, history, opts...)
}

// Reduce consolidates two or more partial answers into one. Callers are
// expected to have applied the single-answer short-circuit already; Reduce
// itself still honors it so the two-phase mode cannot diverge.
func (o *Orchestrator) Reduce(ctx context.Context, question string, partials []string, opts ...llm.Option) (string, error) {
	if len(partials) == 0 {
		return "", &AllMapsFailedError{}
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	blocks := make([]string, len(partials))
	for i, p := range partials {
		blocks[i] = fmt.Sprintf("Response %d:\n%s", i+1, p)
	}
	prompt := fmt.Sprintf(reducePromptTemplate, strings.Join(blocks, "\n\n---\n\n"), question)

	history := []llm.Message{
		{Role: "system", Content: reduceSystemPrompt},
		{Role: "user", Content: prompt},
	}

	opts = append([]llm.Option{llm.WithMaxTokens(reduceMaxTokens)}, opts...)
	return o.provider.Chat(ctx, history, opts...)
}

// RunQuery is the server-orchestrated mode: map every source concurrently,
// then reduce the survivors. The returned exchange is non-nil whenever the
// map phase ran, including on failure, so completed partial answers are
// never discarded. Per-source failures are recorded on the exchange and do
// not abort siblings.
func (o *Orchestrator) RunQuery(ctx context.Context, question string, sources []Source, opts ...llm.Option) (*Exchange, error) {
	return o.RunQueryWithProgress(ctx, question, sources, nil, opts...)
}

// RunQueryWithProgress is RunQuery with a hook invoked at each state
// transition, for callers that surface live progress.
func (o *Orchestrator) RunQueryWithProgress(ctx context.Context, question string, sources []Source, progress func(State), opts ...llm.Option) (*Exchange, error) {
	if len(sources) == 0 {
		return nil, ErrSelectionEmpty
	}
	if progress == nil {
		progress = func(State) {}
	}

	exchange := &Exchange{
		Question: question,
		Contents: make([]string, len(sources)),
		Partials: make([]Partial, len(sources)),
		State:    StateMapping,
	}
	for i, src := range sources {
		exchange.Contents[i] = src.Content
	}

	o.logger.Printf("[MAP] Fanning out %d map calls", len(sources))
	progress(StateMapping)

	// Indexed writes into a pre-sized slice: results land in selection
	// order no matter when each call completes.
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			answer, err := o.MapOne(ctx, question, src.Content, opts...)
			if err != nil {
				o.logger.Printf("[MAP] Source %s failed: %v", src.ID, err)
				exchange.Partials[i] = Partial{SourceID: src.ID, Err: err}
				return
			}
			exchange.Partials[i] = Partial{SourceID: src.ID, Answer: answer}
		}(i, src)
	}
	wg.Wait()

	survivors := make([]string, 0, len(exchange.Partials))
	for _, p := range exchange.Partials {
		if p.Err == nil {
			survivors = append(survivors, p.Answer)
		}
	}

	if len(survivors) == 0 {
		err := &AllMapsFailedError{Failures: exchange.Failures()}
		exchange.State = StateFailed
		exchange.FailReason = err.Error()
		progress(StateFailed)
		return exchange, err
	}

	if len(survivors) == 1 {
		// Defined short-circuit: the single surviving answer is final,
		// the backend is not called again.
		exchange.FinalAnswer = survivors[0]
		exchange.State = StateDone
		progress(StateDone)
		return exchange, nil
	}

	exchange.State = StateReducing
	o.logger.Printf("[REDUCE] Consolidating %d partial answers", len(survivors))
	progress(StateReducing)

	final, err := o.Reduce(ctx, question, survivors, opts...)
	if err != nil {
		reduceErr := &ReduceError{Err: err}
		exchange.State = StateFailed
		exchange.FailReason = reduceErr.Error()
		progress(StateFailed)
		return exchange, reduceErr
	}

	exchange.FinalAnswer = final
	exchange.State = StateDone
	progress(StateDone)
	return exchange, nil
}
