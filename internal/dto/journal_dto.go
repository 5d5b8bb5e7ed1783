package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/models"
)

type SaveDayRequest struct {
	Date    string   `json:"date"`
	Entries []string `json:"entries"`
}

type AppendEntryRequest struct {
	Content string `json:"content"`
}

type UpdateEntryRequest struct {
	Content string `json:"content"`
}

type EntryResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EntryDate string    `json:"entry_date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func ToEntryResponse(e *models.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		EntryDate: e.EntryDate,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

func ToEntryResponses(entries []models.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToEntryResponse(&entries[i]))
	}
	return out
}

type DayEntriesResponse struct {
	Date    string          `json:"date"`
	Entries []EntryResponse `json:"entries"`
}
