package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

type UpdateNameRequest struct {
	DisplayName string `json:"display_name"`
}

type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Onboarded   bool      `json:"onboarded"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToProfileResponse(p *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Onboarded: p.Onboarded(),
		CreatedAt: p.CreatedAt,
	}
	if p.DisplayName != nil {
		resp.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		resp.AvatarURL = *p.AvatarURL
	}
	return resp
}

type PresignAvatarRequest struct {
	ContentType string `json:"content_type"`
}

type PresignAvatarResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}
