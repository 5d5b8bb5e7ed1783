package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/services"
	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

type flowFixture struct {
	store   *memory.Store
	pairing *services.PairingService
	alice   uuid.UUID
	bob     uuid.UUID
	engine  Engine
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	st := memory.New()
	f := &flowFixture{
		store:   st,
		pairing: services.NewPairingService(st.Profiles(), st.Relationships()),
		alice:   uuid.New(),
		bob:     uuid.New(),
	}
	ctx := context.Background()
	_, err := st.Profiles().Ensure(ctx, f.alice, "alice@example.com")
	require.NoError(t, err)
	_, err = st.Profiles().Ensure(ctx, f.bob, "bob@example.com")
	require.NoError(t, err)

	profiles := services.NewProfileService(st.Profiles())
	f.engine = BindEngine(f.pairing, profiles, f.alice)
	return f
}

func TestFlowWalksAllSteps(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	flow, err := NewFlow(ctx, f.engine, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer flow.Close()

	assert.Equal(t, StateName, flow.State())
	assert.ErrorIs(t, flow.SubmitAvatar(ctx, "https://img/a.png"), ErrWrongState)

	require.NoError(t, flow.SubmitName(ctx, "Alice"))
	assert.Equal(t, StateAvatar, flow.State())

	require.NoError(t, flow.SubmitAvatar(ctx, "https://img/a.png"))
	assert.Equal(t, StateInvite, flow.State())

	require.NoError(t, flow.SubmitInvite(ctx, "bob@example.com"))
	assert.Equal(t, StateWaiting, flow.State())

	// The partner answers; the poll must notice without further input.
	require.NoError(t, f.pairing.RequestPartner(ctx, f.bob, "alice@example.com"))
	assert.Eventually(t, func() bool {
		return flow.State() == StateSuccess
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, flow.StartJournaling(ctx))
	assert.Equal(t, StateJournal, flow.State())
}

func TestFlowSkipsToSuccessWhenPartnerAlreadyInvited(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	require.NoError(t, f.pairing.RequestPartner(ctx, f.bob, "alice@example.com"))

	flow, err := NewFlow(ctx, f.engine, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer flow.Close()

	require.NoError(t, flow.SubmitName(ctx, "Alice"))
	require.NoError(t, flow.SubmitAvatar(ctx, "https://img/a.png"))
	require.NoError(t, flow.SubmitInvite(ctx, "bob@example.com"))
	assert.Equal(t, StateSuccess, flow.State())
}

func TestFlowDerivesInitialStateFromStoredTruth(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.SetDisplayName(ctx, "Alice"))
	require.NoError(t, f.engine.SetAvatarURL(ctx, "https://img/a.png"))
	require.NoError(t, f.pairing.RequestPartner(ctx, f.alice, "bob@example.com"))

	flow, err := NewFlow(ctx, f.engine, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer flow.Close()
	assert.Equal(t, StateWaiting, flow.State())
}

func TestWithdrawReturnsToInviteAndStopsPolling(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	transitions := make(chan State, 16)
	flow, err := NewFlow(ctx, f.engine,
		WithPollInterval(10*time.Millisecond),
		WithStateListener(func(s State) { transitions <- s }),
	)
	require.NoError(t, err)
	defer flow.Close()

	require.NoError(t, flow.SubmitName(ctx, "Alice"))
	require.NoError(t, flow.SubmitAvatar(ctx, "https://img/a.png"))
	require.NoError(t, flow.SubmitInvite(ctx, "bob@example.com"))
	require.Equal(t, StateWaiting, flow.State())

	require.NoError(t, flow.Withdraw(ctx))
	assert.Equal(t, StateInvite, flow.State())

	// A late mutual answer must not resurrect the withdrawn invitation,
	// and no cancelled poll tick may fire a transition.
	require.NoError(t, f.pairing.RequestPartner(ctx, f.bob, "alice@example.com"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateInvite, flow.State())

	close(transitions)
	for s := range transitions {
		assert.NotEqual(t, StateSuccess, s)
	}
}

func TestClosedFlowRejectsOperations(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	flow, err := NewFlow(ctx, f.engine, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	flow.Close()

	assert.ErrorIs(t, flow.SubmitName(ctx, "Alice"), ErrFlowClosed)
}
