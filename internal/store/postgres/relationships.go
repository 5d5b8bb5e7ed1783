package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gratia-app/gratia-backend/internal/models"
	"github.com/gratia-app/gratia-backend/internal/store"
)

type relationshipStore struct {
	db *gorm.DB
}

func (s *relationshipStore) Get(ctx context.Context, id uuid.UUID) (*models.Relationship, error) {
	var rel models.Relationship
	if err := s.db.WithContext(ctx).First(&rel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return &rel, nil
}

func (s *relationshipStore) FindActiveFor(ctx context.Context, profileID uuid.UUID) (*models.Relationship, error) {
	var rel models.Relationship
	err := s.db.WithContext(ctx).
		Where("(user_a = ? OR user_b = ?) AND status = ?", profileID, profileID, models.RelationshipActive).
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active relationship: %w", err)
	}
	return &rel, nil
}

// Create inserts the relationship row and one pair_locks row per
// participant in a single transaction. The primary key on
// pair_locks.user_id is what makes "check active, then create" atomic:
// if either side already holds a lock the whole transaction fails and no
// second active relationship can ever appear, regardless of how the two
// partners' requests interleave.
func (s *relationshipStore) Create(ctx context.Context, userA, userB uuid.UUID) (*models.Relationship, error) {
	rel := models.Relationship{
		ID:     uuid.New(),
		UserA:  userA,
		UserB:  userB,
		Status: models.RelationshipActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rel).Error; err != nil {
			return err
		}
		locks := []models.PairLock{
			{UserID: userA, RelationshipID: rel.ID},
			{UserID: userB, RelationshipID: rel.ID},
		}
		return tx.Create(&locks).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, store.ErrAlreadyPaired
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	return &rel, nil
}

func (s *relationshipStore) EndActiveFor(ctx context.Context, profileID uuid.UUID) error {
	rel, err := s.FindActiveFor(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Relationship{}).
			Where("id = ? AND status = ?", rel.ID, models.RelationshipActive).
			Updates(map[string]any{"status": models.RelationshipEnded, "ended_at": time.Now().UTC()})
		if result.Error != nil {
			return result.Error
		}
		// Already ended by a concurrent withdrawal; locks are gone too.
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Where("relationship_id = ?", rel.ID).Delete(&models.PairLock{}).Error
	})
}

func (s *relationshipStore) SetAck(ctx context.Context, relationshipID uuid.UUID, p models.Participant) error {
	column := "user_a_ack"
	if p == models.ParticipantB {
		column = "user_b_ack"
	}
	result := s.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("id = ?", relationshipID).
		Update(column, true)
	if result.Error != nil {
		return fmt.Errorf("failed to set acknowledgment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *relationshipStore) ListFor(ctx context.Context, profileID uuid.UUID) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := s.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", profileID, profileID).
		Order("created_at DESC").
		Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}
