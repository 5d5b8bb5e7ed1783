package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

var ErrNameRequired = errors.New("display name is required")

// ProfileService handles display identity: name and avatar.
type ProfileService struct {
	profiles store.ProfileStore
}

func NewProfileService(profiles store.ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Ensure creates the caller's profile if an older account predates the
// profile table, then returns it.
func (s *ProfileService) Ensure(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	return s.profiles.Ensure(ctx, id, email)
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profiles.Get(ctx, id)
}

func (s *ProfileService) SetDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	return s.profiles.Update(ctx, id, map[string]any{"display_name": name})
}

func (s *ProfileService) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	return s.profiles.Update(ctx, id, map[string]any{"avatar_url": strings.TrimSpace(url)})
}
