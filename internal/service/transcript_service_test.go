package service

import (
	"context"
	"errors"
	"testing"

	"socioscope-be/internal/repository/memory"
	"socioscope-be/pkg/rag"
	"socioscope-be/pkg/store"
	"socioscope-be/pkg/transcript"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	docs         []store.DocumentInfo
	contents     map[string]string
	contentCalls int
	contentErr   error
}

func (f *fakeStore) ListMetadata(_ context.Context) ([]store.DocumentInfo, error) {
	return f.docs, nil
}

func (f *fakeStore) GetContent(_ context.Context, ids []string) (map[string]string, error) {
	f.contentCalls++
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	out := make(map[string]string)
	for _, id := range ids {
		if raw, ok := f.contents[id]; ok {
			out[id] = raw
		}
	}
	return out, nil
}

func newTestStore() *fakeStore {
	return &fakeStore{
		docs: []store.DocumentInfo{
			{Country: "france", Project: "URBAN", Name: "Paris Youth", File: "FR-004.txt"},
			{Country: "denmark", Project: "RURAL", Name: "Jutland Farmers", File: "DK-021.txt"},
		},
		contents: map[string]string{
			"FR-004": "[00:00:01 - 00:00:05] Moderator : Welcome everyone.\n" +
				"[00:00:06 - 00:00:12] Amelie : Thanks for having us.\n" +
				"[00:00:13 - 00:00:20] Moderator : Let's begin.",
			"DK-021": "[00:00:02 - 00:00:07] Lars : Hello.",
		},
	}
}

func newTestTranscriptService(docStore store.DocumentStore) ITranscriptService {
	return NewTranscriptService(
		docStore,
		transcript.NewCache(transcript.DefaultCacheSize),
		memory.NewSessionRepository(),
		noopLogger{},
		"groq:qwen/qwen3-32b",
	)
}

func TestTranscriptService_NavigationMarksSelection(t *testing.T) {
	svc := newTestTranscriptService(newTestStore())
	analystID := uuid.New()

	_, err := svc.ToggleSelect(context.Background(), analystID, "DK-021")
	require.NoError(t, err)

	nav, err := svc.GetNavigation(context.Background(), analystID)
	require.NoError(t, err)
	require.Len(t, nav.Countries, 2)

	// Countries come back sorted.
	assert.Equal(t, "denmark", nav.Countries[0].Country)
	assert.Equal(t, "france", nav.Countries[1].Country)

	dk := nav.Countries[0].Projects[0].Records[0]
	assert.Equal(t, "DK-021", dk.Id)
	assert.True(t, dk.Selected)

	fr := nav.Countries[1].Projects[0].Records[0]
	assert.False(t, fr.Selected)
}

func TestTranscriptService_ToggleUnknownRecord(t *testing.T) {
	svc := newTestTranscriptService(newTestStore())

	_, err := svc.ToggleSelect(context.Background(), uuid.New(), "XX-999")

	var notFound *rag.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "XX-999", notFound.ID)
}

func TestTranscriptService_SelectionSortedAndSessionStable(t *testing.T) {
	svc := newTestTranscriptService(newTestStore())
	analystID := uuid.New()

	_, err := svc.ToggleSelect(context.Background(), analystID, "FR-004")
	require.NoError(t, err)
	_, err = svc.ToggleSelect(context.Background(), analystID, "DK-021")
	require.NoError(t, err)

	sel, err := svc.GetSelection(context.Background(), analystID)
	require.NoError(t, err)
	assert.Equal(t, []string{"DK-021", "FR-004"}, sel.Selected)
	assert.Equal(t, "groq:qwen/qwen3-32b", sel.Model)

	again, err := svc.GetSelection(context.Background(), analystID)
	require.NoError(t, err)
	assert.Equal(t, sel.SessionId, again.SessionId)
}

func TestTranscriptService_ReadPagination(t *testing.T) {
	svc := newTestTranscriptService(newTestStore())

	page, err := svc.ReadTranscript(context.Background(), "FR-004", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Utterances, 2)
	assert.Equal(t, "Moderator", page.Utterances[0].Speaker)
	assert.Equal(t, []string{"Moderator", "Amelie"}, page.Speakers)

	rest, err := svc.ReadTranscript(context.Background(), "FR-004", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest.Utterances, 1)
	assert.Equal(t, "Let's begin.", rest.Utterances[0].Text)
}

func TestTranscriptService_ReadUsesCache(t *testing.T) {
	docStore := newTestStore()
	svc := newTestTranscriptService(docStore)

	_, err := svc.ReadTranscript(context.Background(), "FR-004", 0, 10)
	require.NoError(t, err)
	_, err = svc.ReadTranscript(context.Background(), "FR-004", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, docStore.contentCalls)
}

func TestTranscriptService_ReadMissingRecord(t *testing.T) {
	svc := newTestTranscriptService(newTestStore())

	_, err := svc.ReadTranscript(context.Background(), "XX-999", 0, 10)

	var notFound *rag.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestTranscriptService_ReadStoreFailureNotCached(t *testing.T) {
	docStore := newTestStore()
	docStore.contentErr = errors.New("mongo down")
	svc := newTestTranscriptService(docStore)

	_, err := svc.ReadTranscript(context.Background(), "FR-004", 0, 10)
	var unavailable *rag.ContentUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// Recovery succeeds: the failure was never cached.
	docStore.contentErr = nil
	page, err := svc.ReadTranscript(context.Background(), "FR-004", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}
