package uploads

import (
	"voxnova-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadListingImage POST /api/v1/uploads/listing-image
func (h *Handlers) UploadListingImage(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}

	res, err := h.Service.GetListingImageUploadURL(c.Context(), req.FileName)
	if err != nil {
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
