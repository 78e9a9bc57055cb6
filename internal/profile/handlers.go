package profile

import (
	"voxnova-backend/internal/middleware"
	"voxnova-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// GetProfile GET /api/v1/profile — user record plus recomputed impact.
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	view, err := h.Service.GetProfile(c.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch profile", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Profile fetched", fiber.Map{"profile": view}, nil)
}

// UpdateProfile PATCH /api/v1/profile
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	var body UpdateProfileInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.UpdateProfile(c.Context(), userID, body)
	if err != nil {
		if err == ErrUserNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to update profile", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Profile updated", fiber.Map{"profile": user}, nil)
}

func sessionUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}
	idStr, _ := m["user_id"].(string)
	return uuid.Parse(idStr)
}
