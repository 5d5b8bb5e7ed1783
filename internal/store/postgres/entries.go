package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

type entryStore struct {
	db *gorm.DB
}

func (s *entryStore) ListByDate(ctx context.Context, relationshipID uuid.UUID, date string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("relationship_id = ? AND entry_date = ?", relationshipID, date).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// ReplaceForDate swaps out the author's whole set for the date. Delete
// plus insert in one transaction, never per-row updates: a day's list is
// only meaningful as a set.
func (s *entryStore) ReplaceForDate(ctx context.Context, relationshipID, userID uuid.UUID, date string, contents []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("relationship_id = ? AND user_id = ? AND entry_date = ?", relationshipID, userID, date).
			Delete(&models.Entry{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete old entries: %w", err)
		}
		if len(contents) == 0 {
			return nil
		}
		entries := make([]models.Entry, len(contents))
		for i, content := range contents {
			entries[i] = models.Entry{
				ID:             uuid.New(),
				UserID:         userID,
				RelationshipID: relationshipID,
				EntryDate:      date,
				Content:        content,
			}
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to insert entries: %w", err)
		}
		return nil
	})
}

func (s *entryStore) ListRecent(ctx context.Context, relationshipID uuid.UUID, limit int) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("relationship_id = ?", relationshipID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent entries: %w", err)
	}
	return entries, nil
}

func (s *entryStore) Insert(ctx context.Context, entry *models.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *entryStore) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	var entry models.Entry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to load entry: %w", err)
	}
	if entry.UserID != authorID {
		return store.ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&entry).Error
}

func (s *entryStore) UpdateContent(ctx context.Context, id, authorID uuid.UUID, content string) error {
	result := s.db.WithContext(ctx).Model(&models.Entry{}).
		Where("id = ? AND user_id = ?", id, authorID).
		Update("content", content)
	if result.Error != nil {
		return fmt.Errorf("failed to update entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		s.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", id).Count(&count)
		if count > 0 {
			return store.ErrNotOwner
		}
		return store.ErrNotFound
	}
	return nil
}
