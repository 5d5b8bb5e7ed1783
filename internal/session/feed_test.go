package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/services"
	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

type feedFixture struct {
	store *memory.Store
	alice uuid.UUID
	bob   uuid.UUID
	mine  FeedSource
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	st := memory.New()
	f := &feedFixture{store: st, alice: uuid.New(), bob: uuid.New()}
	ctx := context.Background()
	_, err := st.Profiles().Ensure(ctx, f.alice, "alice@example.com")
	require.NoError(t, err)
	_, err = st.Profiles().Ensure(ctx, f.bob, "bob@example.com")
	require.NoError(t, err)
	rel, err := st.Relationships().Create(ctx, f.alice, f.bob)
	require.NoError(t, err)

	journal := services.NewJournalService(st.Relationships(), st.Entries())
	f.mine = BindFeed(journal, f.alice, rel.ID)
	return f
}

func feedContents(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Content)
	}
	return out
}

func TestFeedAppendRefreshesFromStore(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	feed, err := NewFeed(ctx, f.mine, f.alice, 50)
	require.NoError(t, err)
	assert.Empty(t, feed.Entries())

	require.NoError(t, feed.Append(ctx, "first"))
	require.NoError(t, feed.Append(ctx, "second"))

	assert.Equal(t, []string{"second", "first"}, feedContents(feed.Entries()))
}

func TestFeedDeleteIsOptimistic(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	feed, err := NewFeed(ctx, f.mine, f.alice, 50)
	require.NoError(t, err)
	require.NoError(t, feed.Append(ctx, "keep"))
	require.NoError(t, feed.Append(ctx, "drop"))

	target := feed.Entries()[0]
	require.Equal(t, "drop", target.Content)

	require.NoError(t, feed.Delete(ctx, target.ID))
	assert.Equal(t, []string{"keep"}, feedContents(feed.Entries()))
}

func TestFeedDeleteRollsBackOnStoreFailure(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	feed, err := NewFeed(ctx, f.mine, f.alice, 50)
	require.NoError(t, err)
	require.NoError(t, feed.Append(ctx, "first"))
	require.NoError(t, feed.Append(ctx, "second"))

	before := feed.Entries()
	f.store.FailDelete = true

	err = feed.Delete(ctx, before[0].ID)
	require.Error(t, err)
	assert.Equal(t, before, feed.Entries())
}

func TestFeedEditRollsBackOnStoreFailure(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	feed, err := NewFeed(ctx, f.mine, f.alice, 50)
	require.NoError(t, err)
	require.NoError(t, feed.Append(ctx, "original"))

	before := feed.Entries()
	f.store.FailUpdate = true

	err = feed.Edit(ctx, before[0].ID, "changed")
	require.Error(t, err)
	assert.Equal(t, before, feed.Entries())
}

func TestFeedEditAppliesImmediately(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	feed, err := NewFeed(ctx, f.mine, f.alice, 50)
	require.NoError(t, err)
	require.NoError(t, feed.Append(ctx, "original"))

	id := feed.Entries()[0].ID
	require.NoError(t, feed.Edit(ctx, id, "changed"))
	assert.Equal(t, []string{"changed"}, feedContents(feed.Entries()))
}
