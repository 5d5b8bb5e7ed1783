package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/services"
	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

type journalFixture struct {
	store  *memory.Store
	alice  uuid.UUID
	bob    uuid.UUID
	rel    *models.Relationship
	mine   EntrySource
	theirs EntrySource
	now    func() time.Time
}

func newJournalFixture(t *testing.T) *journalFixture {
	t.Helper()
	st := memory.New()
	f := &journalFixture{
		store: st,
		alice: uuid.New(),
		bob:   uuid.New(),
	}
	ctx := context.Background()
	_, err := st.Profiles().Ensure(ctx, f.alice, "alice@example.com")
	require.NoError(t, err)
	_, err = st.Profiles().Ensure(ctx, f.bob, "bob@example.com")
	require.NoError(t, err)
	f.rel, err = st.Relationships().Create(ctx, f.alice, f.bob)
	require.NoError(t, err)

	journal := services.NewJournalService(st.Relationships(), st.Entries())
	f.mine = BindEntries(journal, f.alice, f.rel.ID)
	f.theirs = BindEntries(journal, f.bob, f.rel.ID)

	fixed := time.Date(2026, 8, 31, 14, 30, 0, 0, time.Local)
	f.now = func() time.Time { return fixed }
	return f
}

func (f *journalFixture) open(t *testing.T, opts ...JournalOption) *Journal {
	t.Helper()
	opts = append([]JournalOption{WithClock(f.now)}, opts...)
	j, err := NewJournal(context.Background(), f.mine, f.alice, opts...)
	require.NoError(t, err)
	return j
}

func TestJournalOpensTodayInEditMode(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t)

	assert.True(t, j.IsToday())
	assert.True(t, j.Editing())
	assert.Equal(t, []string{"", "", ""}, j.Inputs())
	assert.False(t, j.Dirty())
}

func TestJournalGrowsTrailingSlot(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "coffee"))
	require.NoError(t, j.SetInput(1, "sunshine"))
	assert.Len(t, j.Inputs(), 3)

	require.NoError(t, j.SetInput(2, "walk"))
	assert.Equal(t, []string{"coffee", "sunshine", "walk", ""}, j.Inputs())
	assert.True(t, j.Dirty())
}

func TestJournalNormalizeDropsInteriorBlanks(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "coffee"))
	require.NoError(t, j.SetInput(1, "two"))
	require.NoError(t, j.SetInput(2, "three"))
	require.NoError(t, j.SetInput(3, "four"))
	require.NoError(t, j.SetInput(3, ""))

	j.Normalize()
	assert.Equal(t, []string{"coffee", "two", "three", ""}, j.Inputs())
}

func TestJournalSaveRoundTrips(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "  coffee "))
	require.NoError(t, j.SetInput(1, "sunshine"))
	require.NoError(t, j.Save(ctx))

	// After the refetch the view reflects stored truth, trimmed, and
	// editing is over because entries now exist for today.
	saved := j.MyEntries()
	require.Len(t, saved, 2)
	assert.Equal(t, "coffee", saved[0].Content)
	assert.Equal(t, "sunshine", saved[1].Content)
	assert.False(t, j.Editing())
	assert.False(t, j.Dirty())
	assert.Equal(t, []string{"coffee", "sunshine", ""}, j.Inputs())
}

func TestJournalSaveReplacesPreviousSet(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "coffee"))
	require.NoError(t, j.Save(ctx))

	require.NoError(t, j.StartEditing())
	require.NoError(t, j.SetInput(0, "tea"))
	require.NoError(t, j.Save(ctx))

	saved := j.MyEntries()
	require.Len(t, saved, 1)
	assert.Equal(t, "tea", saved[0].Content)
}

func TestJournalSeesPartnerEntries(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	today := f.now().Format(models.EntryDateLayout)
	require.NoError(t, f.theirs.ReplaceForDate(ctx, today, []string{"music"}))

	j := f.open(t)
	partner := j.PartnerEntries()
	require.Len(t, partner, 1)
	assert.Equal(t, "music", partner[0].Content)
	assert.Empty(t, j.MyEntries())
	assert.True(t, j.Editing())
}

func TestJournalRejectsFutureNavigation(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t)

	err := j.Navigate(context.Background(), 1, func() bool { return true })
	assert.ErrorIs(t, err, ErrFutureDate)
	assert.True(t, j.IsToday())
}

func TestJournalNavigationConsultsDirtyCheck(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "unsaved"))

	err := j.Navigate(ctx, -1, func() bool { return false })
	assert.ErrorIs(t, err, ErrDiscardDeclined)
	assert.True(t, j.IsToday())
	assert.Equal(t, "unsaved", j.Inputs()[0])

	require.NoError(t, j.Navigate(ctx, -1, func() bool { return true }))
	assert.False(t, j.IsToday())
	assert.Equal(t, []string{"", "", ""}, j.Inputs())
}

func TestJournalPastDaysAreNotAutoEdited(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t, WithStartDate(f.now().AddDate(0, 0, -2)))

	assert.False(t, j.IsToday())
	assert.False(t, j.Editing())
	assert.ErrorIs(t, j.SetInput(0, "late"), ErrReadOnly)

	require.NoError(t, j.StartEditing())
	require.NoError(t, j.SetInput(0, "late"))
}

func TestJournalReadOnlyMode(t *testing.T) {
	f := newJournalFixture(t)
	j := f.open(t, ReadOnly())

	assert.False(t, j.Editing())
	assert.ErrorIs(t, j.StartEditing(), ErrReadOnly)
	assert.ErrorIs(t, j.Save(context.Background()), ErrReadOnly)
}

func TestJournalCancelEditingRestoresSnapshot(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()
	j := f.open(t)

	require.NoError(t, j.SetInput(0, "coffee"))
	require.NoError(t, j.Save(ctx))

	require.NoError(t, j.StartEditing())
	require.NoError(t, j.SetInput(0, "scrapped"))
	j.CancelEditing()

	assert.False(t, j.Editing())
	assert.False(t, j.Dirty())
	assert.Equal(t, []string{"coffee", "", ""}, j.Inputs())
}

func TestJournalRefusesToOpenOnFutureDate(t *testing.T) {
	f := newJournalFixture(t)
	_, err := NewJournal(context.Background(), f.mine, f.alice,
		WithClock(f.now), WithStartDate(f.now().AddDate(0, 0, 1)))
	assert.ErrorIs(t, err, ErrFutureDate)
}
