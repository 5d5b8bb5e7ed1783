package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

var (
	ErrFutureDate      = errors.New("cannot navigate to a future date")
	ErrReadOnly        = errors.New("journal is read-only")
	ErrDiscardDeclined = errors.New("unsaved changes kept")
)

// minSlots is the floor for the input surface; a trailing empty slot is
// appended whenever the last one is filled so the list can grow.
const minSlots = 3

// Journal synchronizes one user's daily gratitude list with the store.
// Entries for a date are a replaceable set: Save swaps the whole day and
// then re-fetches the authoritative rows before reporting completion, so
// the visible state after a save is always what the store holds.
type Journal struct {
	source   EntrySource
	userID   uuid.UUID
	readOnly bool
	now      func() time.Time

	date     time.Time // civil date, midnight in the user's location
	entries  []models.Entry
	inputs   []string
	snapshot []string // inputs as last loaded; the dirty-check baseline
	editing  bool
}

type JournalOption func(*Journal)

// ReadOnly disables editing entirely, for partner and history views.
func ReadOnly() JournalOption {
	return func(j *Journal) { j.readOnly = true }
}

// WithClock injects the time source. The journal derives "today" from
// the user's actual local time, not a fixed hemisphere offset.
func WithClock(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// WithStartDate opens the journal at the given date instead of today.
func WithStartDate(d time.Time) JournalOption {
	return func(j *Journal) { j.date = civilDate(d) }
}

// NewJournal loads the opening date and initializes editing state.
func NewJournal(ctx context.Context, source EntrySource, userID uuid.UUID, opts ...JournalOption) (*Journal, error) {
	j := &Journal{source: source, userID: userID, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	if j.date.IsZero() {
		j.date = civilDate(j.now())
	}
	if j.date.After(civilDate(j.now())) {
		return nil, ErrFutureDate
	}
	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

// Date returns the currently viewed civil date.
func (j *Journal) Date() time.Time { return j.date }

// IsToday reports whether the viewed date is the real current date.
func (j *Journal) IsToday() bool { return j.date.Equal(civilDate(j.now())) }

// Editing reports whether the input surface is active.
func (j *Journal) Editing() bool { return j.editing }

// Dirty reports whether the inputs differ structurally from the
// last-loaded snapshot.
func (j *Journal) Dirty() bool { return !slices.Equal(j.inputs, j.snapshot) }

// Inputs returns the working slot list.
func (j *Journal) Inputs() []string { return slices.Clone(j.inputs) }

// MyEntries returns the acting user's saved lines for the viewed date.
func (j *Journal) MyEntries() []models.Entry {
	return j.filterEntries(true)
}

// PartnerEntries returns the partner's saved lines for the viewed date.
func (j *Journal) PartnerEntries() []models.Entry {
	return j.filterEntries(false)
}

func (j *Journal) filterEntries(mine bool) []models.Entry {
	var out []models.Entry
	for _, e := range j.entries {
		if (e.UserID == j.userID) == mine {
			out = append(out, e)
		}
	}
	return out
}

// SetInput writes one slot and grows the surface: filling the last slot
// appends a fresh empty one.
func (j *Journal) SetInput(index int, value string) error {
	if !j.editing {
		return ErrReadOnly
	}
	if index < 0 || index >= len(j.inputs) {
		return errors.New("input index out of range")
	}
	j.inputs[index] = value
	if index == len(j.inputs)-1 && strings.TrimSpace(value) != "" {
		j.inputs = append(j.inputs, "")
	}
	return nil
}

// Normalize compacts the slot list after focus leaves an input: interior
// blanks beyond the minimum are dropped, then the minimum and the
// trailing-empty rule are re-applied.
func (j *Journal) Normalize() {
	if !j.editing {
		return
	}
	cleaned := make([]string, 0, len(j.inputs))
	for i, txt := range j.inputs {
		if i < minSlots || strings.TrimSpace(txt) != "" || i == len(j.inputs)-1 {
			cleaned = append(cleaned, txt)
		}
	}
	j.inputs = pad(cleaned)
}

// StartEditing opens the input surface on the viewed date.
func (j *Journal) StartEditing() error {
	if j.readOnly {
		return ErrReadOnly
	}
	j.editing = true
	return nil
}

// CancelEditing discards unsaved input and restores the snapshot.
func (j *Journal) CancelEditing() {
	j.inputs = slices.Clone(j.snapshot)
	j.editing = false
}

// Save trims the working list, replaces the day's set in the store, then
// re-fetches the authoritative rows and resets editing state from them.
// The save is complete only once the refetch has landed.
func (j *Journal) Save(ctx context.Context) error {
	if j.readOnly {
		return ErrReadOnly
	}

	trimmed := make([]string, 0, len(j.inputs))
	for _, txt := range j.inputs {
		if t := strings.TrimSpace(txt); t != "" {
			trimmed = append(trimmed, t)
		}
	}

	date := j.date.Format(models.EntryDateLayout)
	if err := j.source.ReplaceForDate(ctx, date, trimmed); err != nil {
		return err
	}
	return j.load(ctx)
}

// Navigate moves the view by days (negative = back). Future dates are
// rejected outright. When unsaved edits exist, discard is consulted; a
// nil or declining callback keeps the edits and stays put.
func (j *Journal) Navigate(ctx context.Context, days int, discard func() bool) error {
	target := civilDate(j.date.AddDate(0, 0, days))
	if target.After(civilDate(j.now())) {
		return ErrFutureDate
	}

	if j.editing && j.Dirty() {
		if discard == nil || !discard() {
			return ErrDiscardDeclined
		}
	}

	j.date = target
	return j.load(ctx)
}

// Refresh re-fetches the viewed date, for manual partner-update checks.
func (j *Journal) Refresh(ctx context.Context) error {
	return j.load(ctx)
}

// load fetches the viewed date and resets inputs, snapshot and edit mode
// from the authoritative rows. Edit mode turns on automatically only for
// the real current date with no own entries yet, and never in read-only
// mode.
func (j *Journal) load(ctx context.Context) error {
	entries, err := j.source.EntriesForDate(ctx, j.date.Format(models.EntryDateLayout))
	if err != nil {
		return err
	}
	j.entries = entries

	mine := j.filterEntries(true)
	texts := make([]string, 0, len(mine))
	for _, e := range mine {
		texts = append(texts, e.Content)
	}
	j.inputs = pad(texts)
	j.snapshot = slices.Clone(j.inputs)
	j.editing = !j.readOnly && j.IsToday() && len(mine) == 0
	return nil
}

// pad enforces the minimum slot count and the single trailing empty
// slot.
func pad(texts []string) []string {
	out := slices.Clone(texts)
	for len(out) < minSlots {
		out = append(out, "")
	}
	if strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	return out
}

// civilDate truncates to midnight in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
