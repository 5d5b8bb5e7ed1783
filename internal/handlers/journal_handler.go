package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gratia-app/gratia-backend/internal/authctx"
	"github.com/gratia-app/gratia-backend/internal/dto"
	"github.com/gratia-app/gratia-backend/internal/services"
)

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// Entries returns both partners' entries for one date. relationship_id
// defaults to the caller's active relationship; passing an ended one is
// how history views read past journals.
func (h *JournalHandler) Entries(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	date := c.Query("date")
	relationshipID, err := h.resolveRelationship(c, userID)
	if err != nil {
		return journalErr(c, err)
	}

	entries, err := h.journalService.EntriesForDate(c.Context(), userID, relationshipID, date)
	if err != nil {
		return journalErr(c, err)
	}

	return c.JSON(dto.DayEntriesResponse{
		Date:    date,
		Entries: dto.ToEntryResponses(entries),
	})
}

// SaveDay replaces the caller's whole set for one date.
func (h *JournalHandler) SaveDay(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SaveDayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.journalService.SaveDay(c.Context(), userID, req.Date, req.Entries); err != nil {
		return journalErr(c, err)
	}

	relationshipID, err := h.resolveRelationship(c, userID)
	if err != nil {
		return journalErr(c, err)
	}
	entries, err := h.journalService.EntriesForDate(c.Context(), userID, relationshipID, req.Date)
	if err != nil {
		return journalErr(c, err)
	}

	return c.JSON(dto.DayEntriesResponse{
		Date:    req.Date,
		Entries: dto.ToEntryResponses(entries),
	})
}

// Feed returns the most recent entries across the active relationship.
func (h *JournalHandler) Feed(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	relationshipID, err := h.resolveRelationship(c, userID)
	if err != nil {
		return journalErr(c, err)
	}

	entries, err := h.journalService.Recent(c.Context(), userID, relationshipID, c.QueryInt("limit"))
	if err != nil {
		return journalErr(c, err)
	}

	return c.JSON(dto.ToEntryResponses(entries))
}

// Append adds a single entry dated today.
func (h *JournalHandler) Append(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.AppendEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	entry, err := h.journalService.Append(c.Context(), userID, req.Content)
	if err != nil {
		return journalErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ToEntryResponse(entry))
}

// UpdateEntry edits one of the caller's own entries.
func (h *JournalHandler) UpdateEntry(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid entry id",
		})
	}

	var req dto.UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.journalService.UpdateEntry(c.Context(), userID, entryID, req.Content); err != nil {
		return journalErr(c, err)
	}

	return c.JSON(fiber.Map{"message": "Entry updated"})
}

// DeleteEntry removes one of the caller's own entries.
func (h *JournalHandler) DeleteEntry(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid entry id",
		})
	}

	if err := h.journalService.DeleteEntry(c.Context(), userID, entryID); err != nil {
		return journalErr(c, err)
	}

	return c.JSON(fiber.Map{"message": "Entry deleted"})
}

var errBadRelationshipID = errors.New("invalid relationship id")

func (h *JournalHandler) resolveRelationship(c *fiber.Ctx, userID uuid.UUID) (uuid.UUID, error) {
	if raw := c.Query("relationship_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errBadRelationshipID
		}
		return id, nil
	}
	rel, err := h.journalService.ActiveRelationship(c.Context(), userID)
	if err != nil {
		return uuid.Nil, err
	}
	return rel.ID, nil
}

func journalErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, errBadRelationshipID):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoActivePair):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotEntryOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrEntryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
