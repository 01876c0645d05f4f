package service

import (
	"context"
	"sort"
	"time"

	"socioscope-be/internal/constant"
	"socioscope-be/internal/dto"
	"socioscope-be/internal/entity"
	"socioscope-be/internal/pkg/logger"
	"socioscope-be/internal/repository/memory"
	"socioscope-be/pkg/rag"
	"socioscope-be/pkg/store"
	"socioscope-be/pkg/transcript"

	"github.com/google/uuid"
)

type ITranscriptService interface {
	GetNavigation(ctx context.Context, analystID uuid.UUID) (*dto.NavigationResponse, error)
	ToggleSelect(ctx context.Context, analystID uuid.UUID, recordID string) (*dto.SelectResponse, error)
	GetSelection(ctx context.Context, analystID uuid.UUID) (*dto.SelectionResponse, error)
	ReadTranscript(ctx context.Context, recordID string, offset, limit int) (*dto.ReadTranscriptResponse, error)
	GetOrCreateSession(analystID uuid.UUID) *entity.DiscussionSession
}

type transcriptService struct {
	store        store.DocumentStore
	cache        *transcript.Cache
	sessions     *memory.SessionRepository
	logger       logger.ILogger
	defaultModel string
}

func NewTranscriptService(docStore store.DocumentStore, cache *transcript.Cache, sessions *memory.SessionRepository, log logger.ILogger, defaultModel string) ITranscriptService {
	return &transcriptService{
		store:        docStore,
		cache:        cache,
		sessions:     sessions,
		logger:       log,
		defaultModel: defaultModel,
	}
}

// Sessions are keyed by analyst: each analyst has one live working session
// holding their selection and model choice.
func (s *transcriptService) GetOrCreateSession(analystID uuid.UUID) *entity.DiscussionSession {
	if session, found := s.sessions.GetByAnalyst(analystID.String()); found {
		return session
	}
	session := &entity.DiscussionSession{
		Id:        uuid.New(),
		AnalystId: analystID,
		Selected:  []string{},
		Model:     s.defaultModel,
		CreatedAt: time.Now(),
	}
	s.sessions.Save(session)
	return session
}

func (s *transcriptService) GetNavigation(ctx context.Context, analystID uuid.UUID) (*dto.NavigationResponse, error) {
	docs, err := s.store.ListMetadata(ctx)
	if err != nil {
		return nil, err
	}

	session := s.GetOrCreateSession(analystID)

	groups := store.BuildNavigation(docs)

	byID := make(map[string]store.DocumentInfo, len(docs))
	for _, d := range docs {
		byID[d.RecordID()] = d
	}

	resp := &dto.NavigationResponse{Countries: make([]dto.CountryGroupResponse, 0, len(groups))}
	for _, cg := range groups {
		country := dto.CountryGroupResponse{
			Country:  cg.Country,
			Projects: make([]dto.ProjectGroupResponse, 0, len(cg.Projects)),
		}
		for _, pg := range cg.Projects {
			project := dto.ProjectGroupResponse{
				Label:   pg.Label,
				Records: make([]dto.RecordResponse, 0, len(pg.Records)),
			}
			for _, id := range pg.Records {
				doc := byID[id]
				project.Records = append(project.Records, dto.RecordResponse{
					Id:       id,
					Country:  doc.Country,
					Project:  doc.Project,
					Name:     doc.Name,
					Selected: session.IsSelected(id),
				})
			}
			country.Projects = append(country.Projects, project)
		}
		resp.Countries = append(resp.Countries, country)
	}

	return resp, nil
}

func (s *transcriptService) ToggleSelect(ctx context.Context, analystID uuid.UUID, recordID string) (*dto.SelectResponse, error) {
	docs, err := s.store.ListMetadata(ctx)
	if err != nil {
		return nil, err
	}

	known := false
	for _, d := range docs {
		if d.RecordID() == recordID {
			known = true
			break
		}
	}
	if !known {
		return nil, &rag.NotFoundError{ID: recordID}
	}

	session := s.GetOrCreateSession(analystID)
	selected := session.Toggle(recordID)
	s.sessions.Save(session)

	s.logger.Debug("TranscriptService", "Selection toggled", map[string]interface{}{
		"analyst_id": analystID,
		"record_id":  recordID,
		"selected":   selected,
		"count":      len(session.Selected),
	})

	return &dto.SelectResponse{
		RecordId: recordID,
		Selected: selected,
		Count:    len(session.Selected),
		All:      append([]string(nil), session.Selected...),
	}, nil
}

func (s *transcriptService) GetSelection(ctx context.Context, analystID uuid.UUID) (*dto.SelectionResponse, error) {
	session := s.GetOrCreateSession(analystID)

	sorted := append([]string(nil), session.Selected...)
	sort.Strings(sorted)

	return &dto.SelectionResponse{
		SessionId: session.Id.String(),
		Selected:  sorted,
		Model:     session.Model,
	}, nil
}

// ReadTranscript serves a parsed transcript page. Parsing goes through the
// bounded cache so re-reads of recently opened transcripts skip the store.
func (s *transcriptService) ReadTranscript(ctx context.Context, recordID string, offset, limit int) (*dto.ReadTranscriptResponse, error) {
	if limit <= 0 {
		limit = constant.TranscriptPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	parsed, err := s.cache.GetOrCompute(recordID, func(id string) (*transcript.Parsed, error) {
		contents, err := s.store.GetContent(ctx, []string{id})
		if err != nil {
			return nil, &rag.ContentUnavailableError{ID: id, Err: err}
		}
		raw, ok := contents[id]
		if !ok {
			return nil, &rag.NotFoundError{ID: id}
		}

		utterances := transcript.Parse(raw)
		return &transcript.Parsed{
			Utterances: utterances,
			Speakers:   transcript.UniqueSpeakers(utterances),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	total := len(parsed.Utterances)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &dto.ReadTranscriptResponse{
		Id:         recordID,
		Metadata:   parsed.Metadata,
		Speakers:   parsed.Speakers,
		Utterances: parsed.Utterances[start:end],
		Offset:     start,
		Limit:      limit,
		Total:      total,
	}, nil
}
