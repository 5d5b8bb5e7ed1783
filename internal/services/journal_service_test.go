package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

type journalFixture struct {
	store   *memory.Store
	service *JournalService
	alice   uuid.UUID
	bob     uuid.UUID
	rel     *models.Relationship
}

func newJournalFixture(t *testing.T) *journalFixture {
	t.Helper()
	st := memory.New()
	f := &journalFixture{
		store:   st,
		service: NewJournalService(st.Relationships(), st.Entries()),
		alice:   uuid.New(),
		bob:     uuid.New(),
	}
	ctx := context.Background()
	_, err := st.Profiles().Ensure(ctx, f.alice, "alice@example.com")
	require.NoError(t, err)
	_, err = st.Profiles().Ensure(ctx, f.bob, "bob@example.com")
	require.NoError(t, err)
	f.rel, err = st.Relationships().Create(ctx, f.alice, f.bob)
	require.NoError(t, err)
	return f
}

func contents(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Content)
	}
	return out
}

func TestSaveDayReplacesWholeSet(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	const date = "2026-08-30"

	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"coffee", "sunshine"}))
	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"rain"}))

	entries, err := f.service.EntriesForDate(ctx, f.alice, f.rel.ID, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"rain"}, contents(entries))
}

func TestSaveDayTrimsAndDropsEmpty(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	const date = "2026-08-30"

	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"  coffee ", "", "   ", "walk"}))

	entries, err := f.service.EntriesForDate(ctx, f.alice, f.rel.ID, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"coffee", "walk"}, contents(entries))
}

func TestSaveDayEmptyListClearsDay(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	const date = "2026-08-30"

	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"coffee"}))
	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, nil))

	entries, err := f.service.EntriesForDate(ctx, f.alice, f.rel.ID, date)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveDayOnlyTouchesOwnEntries(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	const date = "2026-08-30"

	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"coffee"}))
	require.NoError(t, f.service.SaveDay(ctx, f.bob, date, []string{"music"}))
	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"tea"}))

	entries, err := f.service.EntriesForDate(ctx, f.bob, f.rel.ID, date)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tea", "music"}, contents(entries))
}

func TestSaveDayRejectsBadDate(t *testing.T) {
	f := newJournalFixture(t)
	err := f.service.SaveDay(context.Background(), f.alice, "30-08-2026", []string{"coffee"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSaveDayRequiresActivePair(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Relationships().EndActiveFor(ctx, f.alice))

	err := f.service.SaveDay(ctx, f.alice, "2026-08-30", []string{"coffee"})
	assert.ErrorIs(t, err, ErrNoActivePair)
}

func TestEntriesForDateRequiresMembership(t *testing.T) {
	f := newJournalFixture(t)
	carol := uuid.New()

	_, err := f.service.EntriesForDate(context.Background(), carol, f.rel.ID, "2026-08-30")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestEndedRelationshipStaysReadable(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	const date = "2026-08-30"

	require.NoError(t, f.service.SaveDay(ctx, f.alice, date, []string{"coffee"}))
	require.NoError(t, f.store.Relationships().EndActiveFor(ctx, f.alice))

	entries, err := f.service.EntriesForDate(ctx, f.alice, f.rel.ID, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"coffee"}, contents(entries))
}

func TestAppendAndRecent(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	_, err := f.service.Append(ctx, f.alice, "  first ")
	require.NoError(t, err)
	_, err = f.service.Append(ctx, f.bob, "second")
	require.NoError(t, err)

	entries, err := f.service.Recent(ctx, f.alice, f.rel.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, contents(entries))
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	f := newJournalFixture(t)
	_, err := f.service.Append(context.Background(), f.alice, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	entry, err := f.service.Append(ctx, f.alice, "mine")
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.UpdateEntry(ctx, f.bob, entry.ID, "hijack"), ErrNotEntryOwner)
	assert.ErrorIs(t, f.service.DeleteEntry(ctx, f.bob, entry.ID), ErrNotEntryOwner)

	require.NoError(t, f.service.UpdateEntry(ctx, f.alice, entry.ID, "mine, edited"))
	require.NoError(t, f.service.DeleteEntry(ctx, f.alice, entry.ID))

	assert.ErrorIs(t, f.service.DeleteEntry(ctx, f.alice, entry.ID), ErrEntryNotFound)
}
