// Package postgres implements store.Store on GORM/PostgreSQL.
package postgres

import (
	"gorm.io/gorm"

	"github.com/gratia-app/gratia-backend/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Profiles() store.ProfileStore           { return &profileStore{db: s.db} }
func (s *Store) Relationships() store.RelationshipStore { return &relationshipStore{db: s.db} }
func (s *Store) Entries() store.EntryStore              { return &entryStore{db: s.db} }
