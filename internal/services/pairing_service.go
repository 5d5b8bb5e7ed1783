package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

var (
	ErrSelfInvite   = errors.New("cannot match with yourself")
	ErrEmptyEmail   = errors.New("partner email is required")
	ErrNoActivePair = errors.New("no active relationship")
)

// MatchState is what CheckMatchStatus reports: either a live pairing or
// the caller's outstanding invitation.
type MatchState string

const (
	MatchStateMatched MatchState = "matched"
	MatchStateWaiting MatchState = "waiting"
)

type MatchStatus struct {
	State        MatchState
	Relationship *models.Relationship
	Partner      *models.Profile
	TargetEmail  string
}

// PairingService converts two profiles' mutual invitation pointers into a
// single active relationship, and retires relationships on demand. The
// one-active-relationship invariant itself lives in the store's Create;
// this service only decides when to call it.
type PairingService struct {
	profiles      store.ProfileStore
	relationships store.RelationshipStore
}

func NewPairingService(profiles store.ProfileStore, relationships store.RelationshipStore) *PairingService {
	return &PairingService{profiles: profiles, relationships: relationships}
}

// RequestPartner records the caller's intent to pair with partnerEmail
// and immediately evaluates whether that completes a mutual match.
func (s *PairingService) RequestPartner(ctx context.Context, selfID uuid.UUID, partnerEmail string) error {
	partnerEmail = strings.TrimSpace(partnerEmail)
	if partnerEmail == "" {
		return ErrEmptyEmail
	}

	self, err := s.profiles.Get(ctx, selfID)
	if err != nil {
		return err
	}
	if strings.EqualFold(self.Email, partnerEmail) {
		return ErrSelfInvite
	}

	if err := s.profiles.Update(ctx, selfID, map[string]any{"target_partner_email": partnerEmail}); err != nil {
		return fmt.Errorf("failed to set partner target: %w", err)
	}

	return s.evaluateMatch(ctx, selfID)
}

// evaluateMatch runs after every target_partner_email write. It checks
// whether the caller and their target now point at each other and, if so,
// asks the store for an atomic relationship creation. Both sides may run
// this concurrently; exactly one Create succeeds and the loser sees
// ErrAlreadyPaired, which is not a failure here.
func (s *PairingService) evaluateMatch(ctx context.Context, selfID uuid.UUID) error {
	self, err := s.profiles.Get(ctx, selfID)
	if err != nil {
		return err
	}
	if self.TargetPartnerEmail == nil {
		return nil
	}

	other, err := s.profiles.GetByEmail(ctx, *self.TargetPartnerEmail)
	if errors.Is(err, store.ErrNotFound) {
		return nil // target has not signed up yet
	}
	if err != nil {
		return err
	}

	if other.TargetPartnerEmail == nil || !strings.EqualFold(*other.TargetPartnerEmail, self.Email) {
		return nil // pointers not mutual yet
	}

	rel, err := s.relationships.Create(ctx, selfID, other.ID)
	if errors.Is(err, store.ErrAlreadyPaired) {
		// Either the partner's concurrent request won the race, or one of
		// the two is still in another active relationship. In both cases
		// the stored truth stands and the poll will report it.
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("relationship created", "relationship_id", rel.ID, "user_a", rel.UserA, "user_b", rel.UserB)

	// The invitation pointers have served their purpose. Best effort: a
	// failed clear leaves a stale pointer that the next match evaluation
	// ignores because both users now hold an active relationship.
	for _, id := range []uuid.UUID{selfID, other.ID} {
		if err := s.profiles.Update(ctx, id, map[string]any{"target_partner_email": nil}); err != nil {
			slog.Warn("failed to clear partner target after match", "profile_id", id, "error", err)
		}
	}
	return nil
}

// CheckMatchStatus is the read-only polling primitive for the waiting
// room: matched with the relationship and partner profile, or waiting
// with the caller's current target.
func (s *PairingService) CheckMatchStatus(ctx context.Context, selfID uuid.UUID) (*MatchStatus, error) {
	rel, err := s.relationships.FindActiveFor(ctx, selfID)
	if err == nil {
		status := &MatchStatus{State: MatchStateMatched, Relationship: rel}
		if partnerID, ok := rel.PartnerOf(selfID); ok {
			if partner, err := s.profiles.Get(ctx, partnerID); err == nil {
				status.Partner = partner
			}
		}
		return status, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	self, err := s.profiles.Get(ctx, selfID)
	if err != nil {
		return nil, err
	}
	status := &MatchStatus{State: MatchStateWaiting}
	if self.TargetPartnerEmail != nil {
		status.TargetEmail = *self.TargetPartnerEmail
	}
	return status, nil
}

// RemovePartner withdraws an outstanding invitation and ends any active
// relationship. Each effect applies independently, so the call is
// idempotent: a second invocation is a double no-op.
func (s *PairingService) RemovePartner(ctx context.Context, selfID uuid.UUID) error {
	if err := s.profiles.Update(ctx, selfID, map[string]any{"target_partner_email": nil}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to clear partner target: %w", err)
	}
	if err := s.relationships.EndActiveFor(ctx, selfID); err != nil {
		return fmt.Errorf("failed to end relationship: %w", err)
	}
	return nil
}

// AcknowledgeMatch flips the caller's own acknowledgment flag on their
// active relationship. The slot is resolved once and the store is told
// which flag to set; the partner's flag is never touched. No-op without
// an active relationship.
func (s *PairingService) AcknowledgeMatch(ctx context.Context, selfID uuid.UUID) error {
	rel, err := s.relationships.FindActiveFor(ctx, selfID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	role, ok := rel.ParticipantOf(selfID)
	if !ok {
		return fmt.Errorf("relationship %s does not contain caller", rel.ID)
	}
	return s.relationships.SetAck(ctx, rel.ID, role)
}

// ListRelationships returns the caller's full pairing history, newest
// first, for the read-only history view.
func (s *PairingService) ListRelationships(ctx context.Context, selfID uuid.UUID) ([]models.Relationship, error) {
	return s.relationships.ListFor(ctx, selfID)
}
