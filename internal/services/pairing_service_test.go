package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

type pairingFixture struct {
	store   *memory.Store
	service *PairingService
	alice   uuid.UUID
	bob     uuid.UUID
}

func newPairingFixture(t *testing.T) *pairingFixture {
	t.Helper()
	st := memory.New()
	f := &pairingFixture{
		store:   st,
		service: NewPairingService(st.Profiles(), st.Relationships()),
		alice:   uuid.New(),
		bob:     uuid.New(),
	}
	ctx := context.Background()
	_, err := st.Profiles().Ensure(ctx, f.alice, "alice@example.com")
	require.NoError(t, err)
	_, err = st.Profiles().Ensure(ctx, f.bob, "bob@example.com")
	require.NoError(t, err)
	return f
}

func TestRequestPartnerValidation(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	err := f.service.RequestPartner(ctx, f.alice, "   ")
	assert.ErrorIs(t, err, ErrEmptyEmail)

	err = f.service.RequestPartner(ctx, f.alice, "ALICE@example.com")
	assert.ErrorIs(t, err, ErrSelfInvite)
}

func TestRequestPartnerOneSidedWaits(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))

	status, err := f.service.CheckMatchStatus(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, MatchStateWaiting, status.State)
	assert.Equal(t, "bob@example.com", status.TargetEmail)
	assert.Nil(t, status.Relationship)
}

func TestRequestPartnerMutualMatch(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
	require.NoError(t, f.service.RequestPartner(ctx, f.bob, "Alice@Example.com"))

	for _, id := range []uuid.UUID{f.alice, f.bob} {
		status, err := f.service.CheckMatchStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, MatchStateMatched, status.State)
		require.NotNil(t, status.Relationship)
		require.NotNil(t, status.Partner)
	}

	// Invitation pointers are consumed by the match.
	alice, err := f.store.Profiles().Get(ctx, f.alice)
	require.NoError(t, err)
	assert.Nil(t, alice.TargetPartnerEmail)
	bob, err := f.store.Profiles().Get(ctx, f.bob)
	require.NoError(t, err)
	assert.Nil(t, bob.TargetPartnerEmail)
}

func TestConcurrentMutualRequestsCreateOneRelationship(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.service.RequestPartner(ctx, f.bob, "alice@example.com"))
		}()
	}
	wg.Wait()

	rels, err := f.service.ListRelationships(ctx, f.alice)
	require.NoError(t, err)
	active := 0
	for _, r := range rels {
		if r.Status == models.RelationshipActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestThirdPartyCannotJoinActivePair(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()
	carol := uuid.New()
	_, err := f.store.Profiles().Ensure(ctx, carol, "carol@example.com")
	require.NoError(t, err)

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
	require.NoError(t, f.service.RequestPartner(ctx, f.bob, "alice@example.com"))

	// Mutual pointers between carol and alice must not create a second
	// active relationship while alice is paired.
	require.NoError(t, f.service.RequestPartner(ctx, carol, "alice@example.com"))
	require.NoError(t, f.store.Profiles().Update(ctx, f.alice, map[string]any{"target_partner_email": "carol@example.com"}))
	require.NoError(t, f.service.RequestPartner(ctx, carol, "alice@example.com"))

	status, err := f.service.CheckMatchStatus(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, MatchStateWaiting, status.State)

	rels, err := f.service.ListRelationships(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationshipActive, rels[0].Status)
}

func TestRemovePartnerIsIdempotent(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
	require.NoError(t, f.service.RequestPartner(ctx, f.bob, "alice@example.com"))

	require.NoError(t, f.service.RemovePartner(ctx, f.alice))
	require.NoError(t, f.service.RemovePartner(ctx, f.alice))

	status, err := f.service.CheckMatchStatus(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, MatchStateWaiting, status.State)
	assert.Empty(t, status.TargetEmail)

	// The ended relationship stays in history.
	rels, err := f.service.ListRelationships(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationshipEnded, rels[0].Status)
	assert.NotNil(t, rels[0].EndedAt)
}

func TestRemovePartnerWithdrawsPendingInvite(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
	require.NoError(t, f.service.RemovePartner(ctx, f.alice))

	// Bob answering afterwards must not complete the withdrawn invite.
	require.NoError(t, f.service.RequestPartner(ctx, f.bob, "alice@example.com"))
	status, err := f.service.CheckMatchStatus(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, MatchStateWaiting, status.State)
}

func TestAcknowledgeMatchSetsOnlyOwnFlag(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestPartner(ctx, f.alice, "bob@example.com"))
	require.NoError(t, f.service.RequestPartner(ctx, f.bob, "alice@example.com"))

	require.NoError(t, f.service.AcknowledgeMatch(ctx, f.alice))

	status, err := f.service.CheckMatchStatus(ctx, f.alice)
	require.NoError(t, err)
	rel := status.Relationship

	aliceRole, ok := rel.ParticipantOf(f.alice)
	require.True(t, ok)
	bobRole, ok := rel.ParticipantOf(f.bob)
	require.True(t, ok)
	assert.True(t, rel.AckOf(aliceRole))
	assert.False(t, rel.AckOf(bobRole))
}

func TestAcknowledgeMatchWithoutPairIsNoop(t *testing.T) {
	f := newPairingFixture(t)
	assert.NoError(t, f.service.AcknowledgeMatch(context.Background(), f.alice))
}
