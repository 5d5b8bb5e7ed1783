// Package session holds the client-observed state machines: the
// onboarding flow that polls the pairing engine until a match lands, the
// per-date journal synchronizer, and the optimistic flat feed. None of
// them is authoritative — every mutating step re-reads stored state, so
// a stale session never diverges from the truth for more than one poll
// interval.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/services"
)

// Engine is the slice of pairing and profile operations the onboarding
// flow drives, bound to one acting user.
type Engine interface {
	Profile(ctx context.Context) (*models.Profile, error)
	SetDisplayName(ctx context.Context, name string) error
	SetAvatarURL(ctx context.Context, url string) error
	RequestPartner(ctx context.Context, partnerEmail string) error
	Status(ctx context.Context) (*services.MatchStatus, error)
	RemovePartner(ctx context.Context) error
	Acknowledge(ctx context.Context) error
}

// EntrySource is what the journal synchronizer reads and writes, bound
// to one acting user and one relationship.
type EntrySource interface {
	EntriesForDate(ctx context.Context, date string) ([]models.Entry, error)
	ReplaceForDate(ctx context.Context, date string, contents []string) error
}

// FeedSource is what the flat feed mutates, bound to one acting user.
type FeedSource interface {
	Recent(ctx context.Context, limit int) ([]models.Entry, error)
	Append(ctx context.Context, content string) (*models.Entry, error)
	Delete(ctx context.Context, entryID uuid.UUID) error
	Update(ctx context.Context, entryID uuid.UUID, content string) error
}

// BindEngine adapts the pairing and profile services to an Engine for
// the given user, in-process.
func BindEngine(pairing *services.PairingService, profiles *services.ProfileService, userID uuid.UUID) Engine {
	return &boundEngine{pairing: pairing, profiles: profiles, userID: userID}
}

type boundEngine struct {
	pairing  *services.PairingService
	profiles *services.ProfileService
	userID   uuid.UUID
}

func (b *boundEngine) Profile(ctx context.Context) (*models.Profile, error) {
	return b.profiles.Get(ctx, b.userID)
}

func (b *boundEngine) SetDisplayName(ctx context.Context, name string) error {
	return b.profiles.SetDisplayName(ctx, b.userID, name)
}

func (b *boundEngine) SetAvatarURL(ctx context.Context, url string) error {
	return b.profiles.SetAvatarURL(ctx, b.userID, url)
}

func (b *boundEngine) RequestPartner(ctx context.Context, partnerEmail string) error {
	return b.pairing.RequestPartner(ctx, b.userID, partnerEmail)
}

func (b *boundEngine) Status(ctx context.Context) (*services.MatchStatus, error) {
	return b.pairing.CheckMatchStatus(ctx, b.userID)
}

func (b *boundEngine) RemovePartner(ctx context.Context) error {
	return b.pairing.RemovePartner(ctx, b.userID)
}

func (b *boundEngine) Acknowledge(ctx context.Context) error {
	return b.pairing.AcknowledgeMatch(ctx, b.userID)
}

// BindEntries adapts the journal service to an EntrySource for the given
// user and relationship.
func BindEntries(journal *services.JournalService, userID, relationshipID uuid.UUID) EntrySource {
	return &boundEntries{journal: journal, userID: userID, relationshipID: relationshipID}
}

type boundEntries struct {
	journal        *services.JournalService
	userID         uuid.UUID
	relationshipID uuid.UUID
}

func (b *boundEntries) EntriesForDate(ctx context.Context, date string) ([]models.Entry, error) {
	return b.journal.EntriesForDate(ctx, b.userID, b.relationshipID, date)
}

func (b *boundEntries) ReplaceForDate(ctx context.Context, date string, contents []string) error {
	return b.journal.SaveDay(ctx, b.userID, date, contents)
}

// BindFeed adapts the journal service to a FeedSource for the given user
// and relationship.
func BindFeed(journal *services.JournalService, userID, relationshipID uuid.UUID) FeedSource {
	return &boundFeed{journal: journal, userID: userID, relationshipID: relationshipID}
}

type boundFeed struct {
	journal        *services.JournalService
	userID         uuid.UUID
	relationshipID uuid.UUID
}

func (b *boundFeed) Recent(ctx context.Context, limit int) ([]models.Entry, error) {
	return b.journal.Recent(ctx, b.userID, b.relationshipID, limit)
}

func (b *boundFeed) Append(ctx context.Context, content string) (*models.Entry, error) {
	return b.journal.Append(ctx, b.userID, content)
}

func (b *boundFeed) Delete(ctx context.Context, entryID uuid.UUID) error {
	return b.journal.DeleteEntry(ctx, b.userID, entryID)
}

func (b *boundFeed) Update(ctx context.Context, entryID uuid.UUID, content string) error {
	return b.journal.UpdateEntry(ctx, b.userID, entryID, content)
}
