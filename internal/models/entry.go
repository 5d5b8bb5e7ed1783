package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryDateLayout is the wire and storage format for journal dates.
// Entries are scoped to a calendar date with no time component.
const EntryDateLayout = "2006-01-02"

// Entry is one gratitude line. An author's entries for a given
// (relationship, date) are a replaceable set: saving a day's list deletes
// the old rows and inserts the new ones, there are no per-row updates in
// the daily flow.
type Entry struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RelationshipID uuid.UUID `gorm:"type:uuid;not null;index:idx_entries_rel_date" json:"relationship_id"`
	EntryDate      string    `gorm:"type:date;not null;index:idx_entries_rel_date" json:"entry_date"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
