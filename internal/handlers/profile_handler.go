package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gratia-app/gratia-backend/internal/authctx"
	"github.com/gratia-app/gratia-backend/internal/dto"
	"github.com/gratia-app/gratia-backend/internal/services"
	"github.com/gratia-app/gratia-backend/internal/store"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	avatarService  *services.AvatarService
}

func NewProfileHandler(profileService *services.ProfileService, avatarService *services.AvatarService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, avatarService: avatarService}
}

// Me ensures the caller's profile row exists and returns it. Clients
// call this right after login, before the profile has any content.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.Ensure(c.Context(), userID, authctx.GetEmail(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}

	return c.JSON(dto.ToProfileResponse(profile))
}

// UpdateMe accepts display_name and/or avatar_url; omitted fields stay
// untouched.
func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.DisplayName != nil {
		if err := h.profileService.SetDisplayName(c.Context(), userID, *req.DisplayName); err != nil {
			if errors.Is(err, services.ErrNameRequired) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: true, Message: err.Error(),
				})
			}
			return profileErr(c, err)
		}
	}
	if req.AvatarURL != nil {
		if err := h.profileService.SetAvatarURL(c.Context(), userID, *req.AvatarURL); err != nil {
			return profileErr(c, err)
		}
	}

	profile, err := h.profileService.Get(c.Context(), userID)
	if err != nil {
		return profileErr(c, err)
	}

	return c.JSON(dto.ToProfileResponse(profile))
}

// AvatarUploadURL hands out a presigned S3 PUT URL for the avatar image.
func (h *ProfileHandler) AvatarUploadURL(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.PresignAvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	uploadURL, publicURL, err := h.avatarService.PresignUpload(c.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create upload URL",
		})
	}

	return c.JSON(dto.PresignAvatarResponse{UploadURL: uploadURL, PublicURL: publicURL})
}

func profileErr(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Profile not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
