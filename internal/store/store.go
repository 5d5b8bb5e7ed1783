// Package store defines the persistence interfaces the pairing and
// journal services are written against. Implementations: postgres (GORM)
// for the server, memory for tests.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaired is returned by RelationshipStore.Create when either
	// participant already holds an active relationship. Callers racing to
	// create the same pairing treat this as "the other side won".
	ErrAlreadyPaired = errors.New("participant already in an active relationship")

	// ErrNotOwner is returned by entry mutations when the acting user is
	// not the entry's author.
	ErrNotOwner = errors.New("entry belongs to another user")
)

// ProfileStore persists user profiles.
type ProfileStore interface {
	// Ensure creates the profile row for id/email if it does not exist and
	// returns it. Called once at registration and defensively at session
	// start, never as a side effect of arbitrary reads.
	Ensure(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error)

	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)

	// Update applies the given column/value pairs. Recognized keys:
	// display_name, avatar_url, target_partner_email (nil value clears).
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

// RelationshipStore persists pairings. Create is the single atomic
// check-and-act operation in the system: it must either create exactly
// one active relationship or fail with ErrAlreadyPaired, even under
// concurrent invocation from both participants.
type RelationshipStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Relationship, error)

	// FindActiveFor returns the active relationship containing profileID,
	// or ErrNotFound.
	FindActiveFor(ctx context.Context, profileID uuid.UUID) (*models.Relationship, error)

	// Create atomically creates an active relationship between userA and
	// userB with both acknowledgment flags false.
	Create(ctx context.Context, userA, userB uuid.UUID) (*models.Relationship, error)

	// EndActiveFor transitions any active relationship containing
	// profileID to ended and releases its pair locks. No-op (nil) when
	// there is none.
	EndActiveFor(ctx context.Context, profileID uuid.UUID) error

	// SetAck sets the acknowledgment flag for the given slot only.
	SetAck(ctx context.Context, relationshipID uuid.UUID, p models.Participant) error

	// ListFor returns every relationship (active and ended) containing
	// profileID, newest first.
	ListFor(ctx context.Context, profileID uuid.UUID) ([]models.Relationship, error)
}

// EntryStore persists journal entries.
type EntryStore interface {
	// ListByDate returns both partners' entries for the date in insertion
	// order.
	ListByDate(ctx context.Context, relationshipID uuid.UUID, date string) ([]models.Entry, error)

	// ReplaceForDate deletes every entry matching (relationship, user,
	// date) and inserts contents as new rows, as one transaction.
	ReplaceForDate(ctx context.Context, relationshipID, userID uuid.UUID, date string, contents []string) error

	// ListRecent returns the newest entries for the relationship, newest
	// first, for the flat feed view.
	ListRecent(ctx context.Context, relationshipID uuid.UUID, limit int) ([]models.Entry, error)

	Insert(ctx context.Context, entry *models.Entry) error

	// Delete removes the entry if authorID owns it; ErrNotOwner otherwise.
	Delete(ctx context.Context, id, authorID uuid.UUID) error

	// UpdateContent rewrites the entry's content if authorID owns it.
	UpdateContent(ctx context.Context, id, authorID uuid.UUID, content string) error
}

// Store bundles the three collections an implementation provides.
type Store interface {
	Profiles() ProfileStore
	Relationships() RelationshipStore
	Entries() EntryStore
}
