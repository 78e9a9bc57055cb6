package listings

import (
	"fmt"
	"strconv"
	"strings"

	"voxnova-backend/internal/middleware"
	"voxnova-backend/internal/models"
	"voxnova-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createListingRequest struct {
	ProductName       string      `json:"product_name"`
	ToxicityLevel     string      `json:"toxicity_level"`
	Recyclable        interface{} `json:"recyclable"`
	HarmfulSubstances []string    `json:"harmful_substances"`
	Components        []string    `json:"components"`
	ResellValue       interface{} `json:"resell_value"`
	MarketEstimateMin float64     `json:"market_estimate_min"`
	MarketEstimateMax float64     `json:"market_estimate_max"`
	ImageURL          string      `json:"image_url"`
	Latitude          *float64    `json:"latitude"`
	Longitude         *float64    `json:"longitude"`
	Address           string      `json:"address"`
}

// CreateListing POST /api/v1/listings — publish a classified item. Sellers only.
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	actor, err := sessionActor(c)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if actor.UserType != models.UserTypeSeller {
		return response.Error(c, ErrSellerOnly.Error(), fiber.StatusForbidden, nil)
	}

	var body createListingRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	recyclable, recyclablePresent := looseBool(body.Recyclable)
	if body.ProductName == "" || body.ToxicityLevel == "" || !recyclablePresent {
		return response.Error(c, ErrMissingFields.Error(), fiber.StatusBadRequest, nil)
	}

	listing, err := h.Service.CreateListing(c.Context(), CreateListingInput{
		SellerID:          actor.ID,
		ProductName:       body.ProductName,
		ToxicityLevel:     models.ParseToxicityLevel(body.ToxicityLevel),
		Recyclable:        recyclable,
		HarmfulSubstances: body.HarmfulSubstances,
		Components:        body.Components,
		ResellValue:       looseFloat(body.ResellValue),
		MarketEstimateMin: body.MarketEstimateMin,
		MarketEstimateMax: body.MarketEstimateMax,
		ImageURL:          body.ImageURL,
		Latitude:          body.Latitude,
		Longitude:         body.Longitude,
		Address:           body.Address,
	})
	if err != nil {
		if err == ErrMissingFields {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Failed to publish listing", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Listing published successfully", listing, nil)
}

// SellerListings GET /api/v1/listings/seller?status= — the caller's own
// listings, any status unless filtered, newest first.
func (h *Handlers) SellerListings(c *fiber.Ctx) error {
	actor, err := sessionActor(c)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if actor.UserType != models.UserTypeSeller {
		return response.Error(c, "Only sellers can view their listings", fiber.StatusForbidden, nil)
	}

	found, err := h.Service.ListBySeller(c.Context(), actor.ID, c.Query("status"))
	if err != nil {
		return response.Error(c, "Failed to fetch listings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Seller listings fetched", found, nil)
}

// GetListingByID GET /api/v1/listings/:listing_id
func (h *Handlers) GetListingByID(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.GetByID(c.Context(), listingID)
	if err != nil {
		if err == ErrNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch listing", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Listing fetched", listing, nil)
}

// RemoveListing DELETE /api/v1/listings/seller — soft delete (status becomes
// removed; the record is kept for impact history).
func (h *Handlers) RemoveListing(c *fiber.Ctx) error {
	actor, err := sessionActor(c)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var body struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ListingID == "" {
		return response.Error(c, "listing_id is required", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(body.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", fiber.StatusBadRequest, nil)
	}

	if err := h.Service.SoftDelete(c.Context(), listingID, actor.ID); err != nil {
		switch err {
		case ErrNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case ErrNotOwner:
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.Error(c, "Failed to remove listing", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Listing removed", nil, nil)
}

// --- helpers ---

type actor struct {
	ID       uuid.UUID
	UserType string
}

func sessionActor(c *fiber.Ctx) (*actor, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return nil, fmt.Errorf("not authenticated")
	}
	m, ok := user.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("not authenticated")
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("not authenticated")
	}
	userType, _ := m["user_type"].(string)
	return &actor{ID: id, UserType: userType}, nil
}

// looseBool normalizes boolean encodings arriving from loosely-typed
// boundaries ("true"/"yes"/"1"); internally recyclable is a strict bool.
func looseBool(v interface{}) (value, present bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
		return false, false
	}
	return false, false
}

func looseFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	}
	return 0
}
