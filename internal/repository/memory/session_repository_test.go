package memory

import (
	"testing"

	"socioscope-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveAndGet(t *testing.T) {
	repo := NewSessionRepository()

	session := &entity.DiscussionSession{
		Id:        uuid.New(),
		AnalystId: uuid.New(),
		Selected:  []string{"FR-004"},
	}
	repo.Save(session)

	got, found := repo.Get(session.Id.String())
	require.True(t, found)
	assert.Equal(t, session.Id, got.Id)
	assert.Equal(t, []string{"FR-004"}, got.Selected)

	byAnalyst, found := repo.GetByAnalyst(session.AnalystId.String())
	require.True(t, found)
	assert.Same(t, got, byAnalyst)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := NewSessionRepository()

	session := &entity.DiscussionSession{
		Id:        uuid.New(),
		AnalystId: uuid.New(),
	}
	repo.Save(session)
	repo.Delete(session.Id.String())

	_, found := repo.Get(session.Id.String())
	assert.False(t, found)
	_, found = repo.GetByAnalyst(session.AnalystId.String())
	assert.False(t, found)
}

func TestSessionRepository_GetMissing(t *testing.T) {
	repo := NewSessionRepository()

	_, found := repo.Get(uuid.New().String())
	assert.False(t, found)
}

func TestDiscussionSession_Toggle(t *testing.T) {
	session := &entity.DiscussionSession{}

	assert.True(t, session.Toggle("DK-021"))
	assert.True(t, session.Toggle("FR-004"))
	assert.Equal(t, []string{"DK-021", "FR-004"}, session.Selected)
	assert.True(t, session.IsSelected("DK-021"))

	// Toggling again removes, keeping the rest in place.
	assert.False(t, session.Toggle("DK-021"))
	assert.Equal(t, []string{"FR-004"}, session.Selected)
	assert.False(t, session.IsSelected("DK-021"))
}
