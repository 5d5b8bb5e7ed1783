package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

type PartnerRequestBody struct {
	PartnerEmail string `json:"partner_email"`
}

type RelationshipResponse struct {
	ID        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type MatchStatusResponse struct {
	State        string                `json:"state"`
	TargetEmail  string                `json:"target_email,omitempty"`
	Relationship *RelationshipResponse `json:"relationship,omitempty"`
	Partner      *ProfileResponse      `json:"partner,omitempty"`
	Acknowledged bool                  `json:"acknowledged"`
}

func ToRelationshipResponse(r *models.Relationship) RelationshipResponse {
	return RelationshipResponse{
		ID:        r.ID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		EndedAt:   r.EndedAt,
	}
}
