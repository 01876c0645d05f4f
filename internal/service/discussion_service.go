package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"socioscope-be/internal/dto"
	"socioscope-be/internal/entity"
	"socioscope-be/internal/pkg/logger"
	"socioscope-be/internal/repository/memory"
	"socioscope-be/internal/repository/specification"
	"socioscope-be/internal/repository/unitofwork"
	"socioscope-be/pkg/events"
	"socioscope-be/pkg/llm"
	"socioscope-be/pkg/rag"
	"socioscope-be/pkg/store"

	"github.com/google/uuid"
)

var ErrSessionForbidden = errors.New("session does not belong to this analyst")

type IDiscussionService interface {
	Ask(ctx context.Context, analystID uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	MapOne(ctx context.Context, analystID uuid.UUID, req *dto.MapRequest) (*dto.MapResponse, error)
	Reduce(ctx context.Context, req *dto.ReduceRequest) (*dto.ReduceResponse, error)
	GetHistory(ctx context.Context, analystID, sessionID uuid.UUID) (*dto.SessionHistoryResponse, error)
	ClearSession(ctx context.Context, analystID, sessionID uuid.UUID) error
}

type discussionService struct {
	uowFactory   unitofwork.RepositoryFactory
	store        store.DocumentStore
	orchestrator *rag.Orchestrator
	sessions     *memory.SessionRepository
	publisher    IPublisherService
	logger       logger.ILogger
	defaultModel string
}

func NewDiscussionService(
	uowFactory unitofwork.RepositoryFactory,
	docStore store.DocumentStore,
	orchestrator *rag.Orchestrator,
	sessions *memory.SessionRepository,
	publisher IPublisherService,
	log logger.ILogger,
	defaultModel string,
) IDiscussionService {
	return &discussionService{
		uowFactory:   uowFactory,
		store:        docStore,
		orchestrator: orchestrator,
		sessions:     sessions,
		publisher:    publisher,
		logger:       log,
		defaultModel: defaultModel,
	}
}

// modelName strips the provider prefix from a provider:model id; a bare
// model name passes through unchanged.
func modelName(modelID string) string {
	if _, name, found := strings.Cut(modelID, ":"); found {
		return name
	}
	return modelID
}

func (s *discussionService) resolveSession(analystID, sessionID uuid.UUID) (*entity.DiscussionSession, error) {
	if sessionID != uuid.Nil {
		if session, found := s.sessions.Get(sessionID.String()); found {
			if session.AnalystId != analystID {
				return nil, ErrSessionForbidden
			}
			return session, nil
		}
	}
	if session, found := s.sessions.GetByAnalyst(analystID.String()); found {
		return session, nil
	}
	session := &entity.DiscussionSession{
		Id:        uuid.New(),
		AnalystId: analystID,
		Selected:  []string{},
		Model:     s.defaultModel,
		CreatedAt: time.Now(),
	}
	if sessionID != uuid.Nil {
		session.Id = sessionID
	}
	s.sessions.Save(session)
	return session, nil
}

// fetchSources loads content for the selected records, in selection order.
func (s *discussionService) fetchSources(ctx context.Context, selected []string) ([]rag.Source, error) {
	contents, err := s.store.GetContent(ctx, selected)
	if err != nil {
		return nil, &rag.ContentUnavailableError{ID: strings.Join(selected, ","), Err: err}
	}

	sources := make([]rag.Source, 0, len(selected))
	for _, id := range selected {
		raw, ok := contents[id]
		if !ok {
			return nil, &rag.ContentUnavailableError{ID: id}
		}
		sources = append(sources, rag.Source{ID: id, Content: raw})
	}
	return sources, nil
}

// Ask runs the full map-reduce query for the session's selection, persists
// the exchange, and pushes lifecycle events to the analyst's sockets.
func (s *discussionService) Ask(ctx context.Context, analystID uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	session, err := s.resolveSession(analystID, req.SessionId)
	if err != nil {
		return nil, err
	}

	selected := req.Selected
	if len(selected) == 0 {
		selected = session.Selected
	}
	if len(selected) == 0 {
		return nil, rag.ErrSelectionEmpty
	}

	model := req.Model
	if model == "" {
		model = session.Model
	}
	if model != session.Model {
		session.Model = model
		s.sessions.Save(session)
	}

	sources, err := s.fetchSources(ctx, selected)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ordinal, err := uow.ExchangeRepository().NextOrdinal(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("DiscussionService", "Query started", map[string]interface{}{
		"analyst_id": analystID,
		"session_id": session.Id,
		"ordinal":    ordinal,
		"sources":    len(sources),
		"model":      model,
	})

	publish := func(eventType, reason string, failures int) {
		if s.publisher == nil {
			return
		}
		err := s.publisher.PublishQueryLifecycle(&events.QueryLifecycleEvent{
			Type:       eventType,
			AnalystID:  analystID,
			SessionID:  session.Id,
			Ordinal:    ordinal,
			Question:   req.Question,
			Sources:    len(sources),
			Failures:   failures,
			Reason:     reason,
			OccurredAt: time.Now(),
		})
		if err != nil {
			s.logger.Warn("DiscussionService", "Failed to publish lifecycle event", map[string]interface{}{"error": err.Error()})
		}
	}

	progress := func(state rag.State) {
		// Terminal states carry failure detail, published after the run.
		switch state {
		case rag.StateMapping:
			publish(events.QueryMapping, "", 0)
		case rag.StateReducing:
			publish(events.QueryReducing, "", 0)
		}
	}

	exchange, runErr := s.orchestrator.RunQueryWithProgress(ctx, req.Question, sources, progress, llm.WithModel(modelName(model)))
	if exchange == nil {
		publish(events.QueryFailed, runErr.Error(), 0)
		return nil, runErr
	}

	record := &entity.RagExchange{
		Id:            uuid.New(),
		SessionId:     session.Id,
		AnalystId:     analystID,
		Ordinal:       ordinal,
		Model:         model,
		Question:      req.Question,
		Contents:      exchange.Contents,
		Responses:     toPartialEntities(exchange.Partials),
		FinalResponse: exchange.FinalAnswer,
		State:         string(exchange.State),
		FailReason:    exchange.FailReason,
		CreatedAt:     time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.ExchangeRepository().Create(ctx, record); err != nil {
		uow.Rollback()
		s.logger.Error("DiscussionService", "Failed to persist exchange", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if runErr != nil {
		publish(events.QueryFailed, exchange.FailReason, len(exchange.Failures()))
		// The exchange, including any completed partial answers, is already
		// persisted; the error still surfaces to the caller.
		return nil, runErr
	}

	publish(events.QueryDone, "", len(exchange.Failures()))

	return &dto.AskResponse{
		SessionId:     session.Id,
		Ordinal:       ordinal,
		State:         string(exchange.State),
		FinalResponse: exchange.FinalAnswer,
		Responses:     toPartialDTOs(record.Responses),
		FailReason:    exchange.FailReason,
	}, nil
}

// MapOne is the client-driven mode: answer the question from one document.
func (s *discussionService) MapOne(ctx context.Context, analystID uuid.UUID, req *dto.MapRequest) (*dto.MapResponse, error) {
	sources, err := s.fetchSources(ctx, []string{req.RecordId})
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	answer, err := s.orchestrator.MapOne(ctx, req.Question, sources[0].Content, llm.WithModel(modelName(model)))
	if err != nil {
		return nil, &rag.MapError{SourceID: req.RecordId, Err: err}
	}

	return &dto.MapResponse{
		RecordId: req.RecordId,
		Response: answer,
	}, nil
}

// Reduce is the client-driven mode: consolidate previously collected
// partial answers.
func (s *discussionService) Reduce(ctx context.Context, req *dto.ReduceRequest) (*dto.ReduceResponse, error) {
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	final, err := s.orchestrator.Reduce(ctx, req.Question, req.Responses, llm.WithModel(modelName(model)))
	if err != nil {
		var allFailed *rag.AllMapsFailedError
		if errors.As(err, &allFailed) {
			return nil, err
		}
		return nil, &rag.ReduceError{Err: err}
	}

	return &dto.ReduceResponse{Response: final}, nil
}

func (s *discussionService) GetHistory(ctx context.Context, analystID, sessionID uuid.UUID) (*dto.SessionHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exchanges, err := uow.ExchangeRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionID},
		specification.OrderBy{Field: "ordinal"},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionHistoryResponse{
		SessionId: sessionID,
		Exchanges: make([]dto.ExchangeResponse, 0, len(exchanges)),
	}
	for _, e := range exchanges {
		if e.AnalystId != analystID {
			return nil, ErrSessionForbidden
		}
		resp.Exchanges = append(resp.Exchanges, dto.ExchangeResponse{
			Id:            e.Id,
			Ordinal:       e.Ordinal,
			Model:         e.Model,
			Question:      e.Question,
			Responses:     toPartialDTOs(e.Responses),
			FinalResponse: e.FinalResponse,
			State:         e.State,
			FailReason:    e.FailReason,
			CreatedAt:     e.CreatedAt,
		})
	}

	return resp, nil
}

// ClearSession wipes the session's exchange history so the next question
// starts a fresh discussion. The selection survives.
func (s *discussionService) ClearSession(ctx context.Context, analystID, sessionID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	owned, err := uow.ExchangeRepository().Count(ctx,
		specification.BySession{SessionID: sessionID},
		specification.FilterBy{Field: "analyst_id", Value: analystID},
	)
	if err != nil {
		return err
	}
	total, err := uow.ExchangeRepository().Count(ctx, specification.BySession{SessionID: sessionID})
	if err != nil {
		return err
	}
	if total > owned {
		return ErrSessionForbidden
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ExchangeRepository().DeleteBySession(ctx, sessionID); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("DiscussionService", "Discussion cleared", map[string]interface{}{
		"analyst_id": analystID,
		"session_id": sessionID,
		"exchanges":  total,
	})
	return nil
}

func toPartialEntities(partials []rag.Partial) []entity.PartialResponse {
	out := make([]entity.PartialResponse, len(partials))
	for i, p := range partials {
		out[i] = entity.PartialResponse{
			SourceId: p.SourceID,
			Response: p.Answer,
		}
		if p.Err != nil {
			out[i].Error = p.Err.Error()
		}
	}
	return out
}

func toPartialDTOs(responses []entity.PartialResponse) []dto.PartialResponseDTO {
	out := make([]dto.PartialResponseDTO, len(responses))
	for i, r := range responses {
		out[i] = dto.PartialResponseDTO{
			SourceId: r.SourceId,
			Response: r.Response,
			Error:    r.Error,
		}
	}
	return out
}
