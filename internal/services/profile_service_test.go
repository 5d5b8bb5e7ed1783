package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratia-app/gratia-backend/internal/store/memory"
)

func TestProfileEnsureIsIdempotent(t *testing.T) {
	st := memory.New()
	service := NewProfileService(st.Profiles())
	ctx := context.Background()
	id := uuid.New()

	first, err := service.Ensure(ctx, id, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, service.SetDisplayName(ctx, id, "Alice"))

	again, err := service.Ensure(ctx, id, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, again.DisplayName)
	assert.Equal(t, "Alice", *again.DisplayName)
}

func TestProfileSetDisplayNameValidates(t *testing.T) {
	st := memory.New()
	service := NewProfileService(st.Profiles())
	ctx := context.Background()
	id := uuid.New()
	_, err := service.Ensure(ctx, id, "alice@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, service.SetDisplayName(ctx, id, "   "), ErrNameRequired)

	require.NoError(t, service.SetDisplayName(ctx, id, "  Alice  "))
	p, err := service.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.DisplayName)
	assert.Equal(t, "Alice", *p.DisplayName)
	assert.False(t, p.Onboarded())

	require.NoError(t, service.SetAvatarURL(ctx, id, "https://img/a.png"))
	p, err = service.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.Onboarded())
}
