package session

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

// Feed is a client-observed view of the recent shared entries. Deletes
// and edits apply optimistically: the local list changes first, and the
// exact prior snapshot is restored if the store call fails. Appends go
// through the store first because the server assigns the row.
type Feed struct {
	source  FeedSource
	userID  uuid.UUID
	limit   int
	entries []models.Entry
}

// NewFeed loads the most recent entries up to limit.
func NewFeed(ctx context.Context, source FeedSource, userID uuid.UUID, limit int) (*Feed, error) {
	f := &Feed{source: source, userID: userID, limit: limit}
	if err := f.Load(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// Entries returns the current view, newest first.
func (f *Feed) Entries() []models.Entry {
	return slices.Clone(f.entries)
}

// Load replaces the view with the store's recent entries.
func (f *Feed) Load(ctx context.Context) error {
	entries, err := f.source.Recent(ctx, f.limit)
	if err != nil {
		return err
	}
	f.entries = entries
	return nil
}

// Append writes a new entry and then reloads, so the view picks up the
// server-assigned row along with anything the partner added meanwhile.
func (f *Feed) Append(ctx context.Context, content string) error {
	if _, err := f.source.Append(ctx, content); err != nil {
		return err
	}
	return f.Load(ctx)
}

// Delete removes the entry from the view immediately and rolls the view
// back to the prior snapshot if the store rejects the delete.
func (f *Feed) Delete(ctx context.Context, id uuid.UUID) error {
	snapshot := slices.Clone(f.entries)
	f.entries = slices.DeleteFunc(f.entries, func(e models.Entry) bool {
		return e.ID == id
	})
	if err := f.source.Delete(ctx, id); err != nil {
		f.entries = snapshot
		return err
	}
	return nil
}

// Edit updates the entry's content in the view immediately and rolls
// back on store failure.
func (f *Feed) Edit(ctx context.Context, id uuid.UUID, content string) error {
	snapshot := slices.Clone(f.entries)
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Content = content
		}
	}
	if err := f.source.Update(ctx, id, content); err != nil {
		f.entries = snapshot
		return err
	}
	return nil
}
