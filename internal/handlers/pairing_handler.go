package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gratia-app/gratia-backend/internal/authctx"
	"github.com/gratia-app/gratia-backend/internal/dto"
	"github.com/gratia-app/gratia-backend/internal/services"
	"github.com/gratia-app/gratia-backend/internal/store"
)

type PairingHandler struct {
	pairingService *services.PairingService
}

func NewPairingHandler(pairingService *services.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: pairingService}
}

// Request records who the caller wants to pair with. If that person has
// already pointed back, the relationship forms in the same call; the
// response always reports the resulting state.
func (h *PairingHandler) Request(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.PartnerRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.pairingService.RequestPartner(c.Context(), userID, req.PartnerEmail); err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyEmail), errors.Is(err, services.ErrSelfInvite):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, store.ErrAlreadyPaired):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "An active relationship already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record partner request",
		})
	}

	return h.Status(c)
}

// Status reports whether the caller is matched or still waiting. This is
// the endpoint the waiting screen polls.
func (h *PairingHandler) Status(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	status, err := h.pairingService.CheckMatchStatus(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check match status",
		})
	}

	resp := dto.MatchStatusResponse{
		State:       string(status.State),
		TargetEmail: status.TargetEmail,
	}
	if status.Relationship != nil {
		rel := dto.ToRelationshipResponse(status.Relationship)
		resp.Relationship = &rel
		if role, ok := status.Relationship.ParticipantOf(userID); ok {
			resp.Acknowledged = status.Relationship.AckOf(role)
		}
	}
	if status.Partner != nil {
		partner := dto.ToProfileResponse(status.Partner)
		resp.Partner = &partner
	}
	return c.JSON(resp)
}

// RemovePartner ends the active relationship, or withdraws a pending
// invitation if no relationship exists yet. Safe to call either way.
func (h *PairingHandler) RemovePartner(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.pairingService.RemovePartner(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove partner",
		})
	}

	return c.JSON(fiber.Map{"message": "Partner removed"})
}

// Acknowledge marks the caller as having seen the match celebration.
func (h *PairingHandler) Acknowledge(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.pairingService.AcknowledgeMatch(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to acknowledge match",
		})
	}

	return c.JSON(fiber.Map{"message": "Acknowledged"})
}

// History lists all of the caller's relationships, ended ones included,
// so past journals stay reachable.
func (h *PairingHandler) History(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	relationships, err := h.pairingService.ListRelationships(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list relationships",
		})
	}

	out := make([]dto.RelationshipResponse, 0, len(relationships))
	for i := range relationships {
		out = append(out, dto.ToRelationshipResponse(&relationships[i]))
	}
	return c.JSON(out)
}
