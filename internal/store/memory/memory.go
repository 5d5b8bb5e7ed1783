// Package memory is an in-memory store.Store used by the test suite and
// local development. A single mutex serializes every operation, which
// makes relationship creation trivially atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]*models.Profile
	relationships map[uuid.UUID]*models.Relationship
	entries       map[uuid.UUID]*models.Entry
	seq           int64

	// FailDelete and FailUpdate force the next entry delete/update to
	// fail, for exercising optimistic-rollback paths in tests.
	FailDelete bool
	FailUpdate bool
}

func New() *Store {
	return &Store{
		profiles:      make(map[uuid.UUID]*models.Profile),
		relationships: make(map[uuid.UUID]*models.Relationship),
		entries:       make(map[uuid.UUID]*models.Entry),
	}
}

func (s *Store) Profiles() store.ProfileStore           { return (*profileStore)(s) }
func (s *Store) Relationships() store.RelationshipStore { return (*relationshipStore)(s) }
func (s *Store) Entries() store.EntryStore              { return (*entryStore)(s) }

// nextCreatedAt hands out strictly increasing timestamps so insertion
// order is stable even when the clock does not tick between inserts.
func (s *Store) nextCreatedAt() time.Time {
	s.seq++
	return time.Unix(0, s.seq)
}

type profileStore Store

func (s *profileStore) Ensure(_ context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		return clone(p), nil
	}
	p := &models.Profile{ID: id, Email: email, CreatedAt: time.Now()}
	s.profiles[id] = p
	return clone(p), nil
}

func (s *profileStore) Get(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(p), nil
}

func (s *profileStore) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			return clone(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *profileStore) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "display_name":
			p.DisplayName = toStringPtr(v)
		case "avatar_url":
			p.AvatarURL = toStringPtr(v)
		case "target_partner_email":
			p.TargetPartnerEmail = toStringPtr(v)
		}
	}
	p.UpdatedAt = time.Now()
	return nil
}

func toStringPtr(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case *string:
		return t
	}
	return nil
}

func clone(p *models.Profile) *models.Profile {
	c := *p
	return &c
}

type relationshipStore Store

func (s *relationshipStore) Get(_ context.Context, id uuid.UUID) (*models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.relationships[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *relationshipStore) FindActiveFor(_ context.Context, profileID uuid.UUID) (*models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.activeFor(profileID); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

// activeFor must be called with the mutex held.
func (s *relationshipStore) activeFor(profileID uuid.UUID) *models.Relationship {
	for _, r := range s.relationships {
		if r.Status != models.RelationshipActive {
			continue
		}
		if r.UserA == profileID || r.UserB == profileID {
			return r
		}
	}
	return nil
}

func (s *relationshipStore) Create(_ context.Context, userA, userB uuid.UUID) (*models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeFor(userA) != nil || s.activeFor(userB) != nil {
		return nil, store.ErrAlreadyPaired
	}
	r := &models.Relationship{
		ID:        uuid.New(),
		UserA:     userA,
		UserB:     userB,
		Status:    models.RelationshipActive,
		CreatedAt: time.Now(),
	}
	s.relationships[r.ID] = r
	cp := *r
	return &cp, nil
}

func (s *relationshipStore) EndActiveFor(_ context.Context, profileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.activeFor(profileID)
	if r == nil {
		return nil
	}
	now := time.Now()
	r.Status = models.RelationshipEnded
	r.EndedAt = &now
	return nil
}

func (s *relationshipStore) SetAck(_ context.Context, relationshipID uuid.UUID, p models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.relationships[relationshipID]
	if !ok {
		return store.ErrNotFound
	}
	if p == models.ParticipantA {
		r.UserAAck = true
	} else {
		r.UserBAck = true
	}
	return nil
}

func (s *relationshipStore) ListFor(_ context.Context, profileID uuid.UUID) ([]models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Relationship
	for _, r := range s.relationships {
		if r.UserA == profileID || r.UserB == profileID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type entryStore Store

func (s *entryStore) ListByDate(_ context.Context, relationshipID uuid.UUID, date string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Entry
	for _, e := range s.entries {
		if e.RelationshipID == relationshipID && e.EntryDate == date {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *entryStore) ReplaceForDate(_ context.Context, relationshipID, userID uuid.UUID, date string, contents []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.RelationshipID == relationshipID && e.UserID == userID && e.EntryDate == date {
			delete(s.entries, id)
		}
	}
	for _, content := range contents {
		e := &models.Entry{
			ID:             uuid.New(),
			UserID:         userID,
			RelationshipID: relationshipID,
			EntryDate:      date,
			Content:        content,
			CreatedAt:      (*Store)(s).nextCreatedAt(),
		}
		s.entries[e.ID] = e
	}
	return nil
}

func (s *entryStore) ListRecent(_ context.Context, relationshipID uuid.UUID, limit int) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Entry
	for _, e := range s.entries {
		if e.RelationshipID == relationshipID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *entryStore) Insert(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = (*Store)(s).nextCreatedAt()
	}
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *entryStore) Delete(_ context.Context, id, authorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		s.FailDelete = false
		return store.ErrNotFound
	}
	e, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	if e.UserID != authorID {
		return store.ErrNotOwner
	}
	delete(s.entries, id)
	return nil
}

func (s *entryStore) UpdateContent(_ context.Context, id, authorID uuid.UUID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate {
		s.FailUpdate = false
		return store.ErrNotFound
	}
	e, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	if e.UserID != authorID {
		return store.ErrNotOwner
	}
	e.Content = content
	return nil
}
