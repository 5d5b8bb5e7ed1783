package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

var (
	ErrEmptyContent   = errors.New("entry content is empty")
	ErrInvalidDate    = errors.New("invalid entry date")
	ErrNotParticipant = errors.New("not a participant of this relationship")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrNotEntryOwner  = errors.New("entry belongs to another user")
)

// JournalService owns entry persistence for both journal variants: the
// per-date replaceable set and the flat feed. Membership checks happen
// here so the store never has to re-derive them.
type JournalService struct {
	relationships store.RelationshipStore
	entries       store.EntryStore
}

func NewJournalService(relationships store.RelationshipStore, entries store.EntryStore) *JournalService {
	return &JournalService{relationships: relationships, entries: entries}
}

// EntriesForDate returns both partners' entries for the date, oldest
// first. The caller must be a participant of the relationship, active or
// ended — ended pairings stay readable as history.
func (s *JournalService) EntriesForDate(ctx context.Context, userID, relationshipID uuid.UUID, date string) ([]models.Entry, error) {
	if _, err := time.Parse(models.EntryDateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	if err := s.checkMembership(ctx, userID, relationshipID); err != nil {
		return nil, err
	}
	return s.entries.ListByDate(ctx, relationshipID, date)
}

// SaveDay replaces the caller's whole entry set for the date with the
// trimmed non-empty contents. Saving an empty list clears the day.
func (s *JournalService) SaveDay(ctx context.Context, userID uuid.UUID, date string, contents []string) error {
	if _, err := time.Parse(models.EntryDateLayout, date); err != nil {
		return ErrInvalidDate
	}

	rel, err := s.relationships.FindActiveFor(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoActivePair
	}
	if err != nil {
		return err
	}

	trimmed := make([]string, 0, len(contents))
	for _, c := range contents {
		if t := strings.TrimSpace(c); t != "" {
			trimmed = append(trimmed, t)
		}
	}

	if err := s.entries.ReplaceForDate(ctx, rel.ID, userID, date, trimmed); err != nil {
		return fmt.Errorf("failed to replace entries: %w", err)
	}

	slog.Info("journal day saved", "user_id", userID, "relationship_id", rel.ID, "date", date, "count", len(trimmed))
	return nil
}

// ActiveRelationship resolves the caller's current pairing for the
// journal surface.
func (s *JournalService) ActiveRelationship(ctx context.Context, userID uuid.UUID) (*models.Relationship, error) {
	rel, err := s.relationships.FindActiveFor(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActivePair
	}
	return rel, err
}

// Append adds a single entry dated today in UTC, for the flat feed view.
func (s *JournalService) Append(ctx context.Context, userID uuid.UUID, content string) (*models.Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	rel, err := s.relationships.FindActiveFor(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActivePair
	}
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		UserID:         userID,
		RelationshipID: rel.ID,
		EntryDate:      time.Now().UTC().Format(models.EntryDateLayout),
		Content:        content,
	}
	if err := s.entries.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Recent lists the newest feed entries for the caller's relationship.
func (s *JournalService) Recent(ctx context.Context, userID, relationshipID uuid.UUID, limit int) ([]models.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := s.checkMembership(ctx, userID, relationshipID); err != nil {
		return nil, err
	}
	return s.entries.ListRecent(ctx, relationshipID, limit)
}

// DeleteEntry removes one of the caller's own entries.
func (s *JournalService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	return translateEntryErr(s.entries.Delete(ctx, entryID, userID))
}

// UpdateEntry rewrites one of the caller's own entries.
func (s *JournalService) UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	return translateEntryErr(s.entries.UpdateContent(ctx, entryID, userID, content))
}

func (s *JournalService) checkMembership(ctx context.Context, userID, relationshipID uuid.UUID) error {
	rel, err := s.relationships.Get(ctx, relationshipID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotParticipant
	}
	if err != nil {
		return err
	}
	if _, ok := rel.ParticipantOf(userID); !ok {
		return ErrNotParticipant
	}
	return nil
}

func translateEntryErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrEntryNotFound
	case errors.Is(err, store.ErrNotOwner):
		return ErrNotEntryOwner
	}
	return err
}
