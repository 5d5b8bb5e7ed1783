package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds display identity and matching intent for a user. It is
// created explicitly when the user first registers (same ID as the User
// row), never as a side effect of a read.
type Profile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	DisplayName        *string   `gorm:"size:100" json:"display_name"`
	AvatarURL          *string   `gorm:"type:text" json:"avatar_url"`
	TargetPartnerEmail *string   `gorm:"size:255;index" json:"target_partner_email"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Onboarded reports whether both display name and avatar have been set.
func (p *Profile) Onboarded() bool {
	return p.DisplayName != nil && *p.DisplayName != "" &&
		p.AvatarURL != nil && *p.AvatarURL != ""
}
