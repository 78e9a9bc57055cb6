package classifier

import (
	"io"

	"voxnova-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers expose the photo analysis endpoint.
type Handlers struct {
	Classifier Classifier
}

const maxImageBytes = 10 << 20 // matches the frontend's upload cap

// Analyze POST /api/v1/analyze — multipart "image" file in, assessment out.
// The assessment is returned to the client, which submits it back with the
// listing; nothing is persisted here.
func (h *Handlers) Analyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, "No image provided", fiber.StatusBadRequest, nil)
	}
	if fileHeader.Size > maxImageBytes {
		return response.Error(c, "Image too large", fiber.StatusRequestEntityTooLarge, nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Failed to read image", fiber.StatusBadRequest, nil)
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		return response.Error(c, "Failed to read image", fiber.StatusBadRequest, nil)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	assessment, err := h.Classifier.Analyze(c.Context(), image, mimeType)
	if err != nil {
		return response.Error(c, "Failed to analyze image", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Image analyzed", assessment, nil)
}
