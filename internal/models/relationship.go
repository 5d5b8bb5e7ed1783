package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RelationshipActive = "active"
	RelationshipEnded  = "ended"
)

// Participant identifies which slot of a relationship a user occupies.
// Acknowledgment flags are dispatched on this tag, never on dynamic
// column names.
type Participant int

const (
	ParticipantA Participant = iota
	ParticipantB
)

// Relationship is one pairing of two profiles. Rows are never deleted;
// a withdrawal flips status to ended so journal history survives.
type Relationship struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserA     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_a"`
	UserB     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_b"`
	Status    string     `gorm:"size:10;not null;default:'active';index" json:"status"`
	UserAAck  bool       `gorm:"default:false" json:"user_a_ack"`
	UserBAck  bool       `gorm:"default:false" json:"user_b_ack"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// ParticipantOf resolves the slot the given user occupies, if any.
func (r *Relationship) ParticipantOf(userID uuid.UUID) (Participant, bool) {
	switch userID {
	case r.UserA:
		return ParticipantA, true
	case r.UserB:
		return ParticipantB, true
	}
	return 0, false
}

// PartnerOf returns the other participant's ID.
func (r *Relationship) PartnerOf(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case r.UserA:
		return r.UserB, true
	case r.UserB:
		return r.UserA, true
	}
	return uuid.Nil, false
}

// AckOf returns the acknowledgment flag for the given slot.
func (r *Relationship) AckOf(p Participant) bool {
	if p == ParticipantA {
		return r.UserAAck
	}
	return r.UserBAck
}

// PairLock is the structural guard behind the one-active-relationship
// invariant. Creating a relationship inserts one lock row per participant
// in the same transaction as the relationship row; the primary key on
// user_id makes a second concurrent pairing fail wholesale. Ending the
// relationship removes its locks.
type PairLock struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RelationshipID uuid.UUID `gorm:"type:uuid;not null;index" json:"relationship_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PairLock) TableName() string {
	return "pair_locks"
}
