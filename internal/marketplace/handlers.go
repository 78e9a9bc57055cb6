package marketplace

import (
	"strconv"

	"voxnova-backend/internal/geo"
	"voxnova-backend/internal/listings"
	"voxnova-backend/internal/models"
	"voxnova-backend/internal/pkg/response"
	"voxnova-backend/internal/ranking"

	"github.com/gofiber/fiber/v2"
)

// Handlers serve the public browse surface: filtered search with distance
// ranking, and the aggregated map view.
type Handlers struct {
	Listings *listings.Service
}

// Search GET /api/v1/marketplace/search
//
// Filter params: search, toxicity_level, recyclable, min_price, max_price,
// min_lat/max_lat/min_lng/max_lng (all four or none), limit, offset.
// Ranking params: lat+lng order results by distance from the viewer;
// sort=recent|value|toxicity replaces distance ordering entirely.
func (h *Handlers) Search(c *fiber.Ctx) error {
	filters := listings.SearchFilters{
		Query:  c.Query("search"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	if v := c.Query("toxicity_level"); v != "" {
		filters.ToxicityLevel = models.ParseToxicityLevel(v)
	}
	if v := c.Query("recyclable"); v != "" {
		b := v == "true"
		filters.Recyclable = &b
	}
	if f, ok := queryFloat(c, "min_price"); ok {
		filters.MinPrice = &f
	}
	if f, ok := queryFloat(c, "max_price"); ok {
		filters.MaxPrice = &f
	}
	if bounds, ok := queryBounds(c); ok {
		filters.Bounds = bounds
	}

	found, err := h.Listings.Search(c.Context(), filters)
	if err != nil {
		return response.Error(c, "Failed to search listings", fiber.StatusInternalServerError, nil)
	}

	var ref *geo.Point
	if lat, okLat := queryFloat(c, "lat"); okLat {
		if lng, okLng := queryFloat(c, "lng"); okLng {
			ref = &geo.Point{Lat: lat, Lng: lng}
		}
	}
	mode, _ := ranking.ParseSortMode(c.Query("sort"))

	ranked := ranking.Rank(found, ref, mode)
	return response.Success(c, "Listings fetched successfully", fiber.Map{
		"listings": ranked,
		"count":    len(ranked),
	}, nil)
}

// MapView GET /api/v1/marketplace/map — active listings inside the viewport
// collapsed into S2 cell markers.
func (h *Handlers) MapView(c *fiber.Ctx) error {
	bounds, ok := queryBounds(c)
	if !ok {
		return response.Error(c, "min_lat, max_lat, min_lng and max_lng are required", fiber.StatusBadRequest, nil)
	}

	vp := Viewport{
		MinLat:    bounds.MinLat,
		MaxLat:    bounds.MaxLat,
		MinLng:    bounds.MinLng,
		MaxLng:    bounds.MaxLng,
		CenterLat: (bounds.MinLat + bounds.MaxLat) / 2,
		CenterLng: (bounds.MinLng + bounds.MaxLng) / 2,
	}
	if lat, okLat := queryFloat(c, "center_lat"); okLat {
		if lng, okLng := queryFloat(c, "center_lng"); okLng {
			vp.CenterLat, vp.CenterLng = lat, lng
		}
	}

	// The map draws every pin in the viewport, so no pagination here.
	found, err := h.Listings.Search(c.Context(), listings.SearchFilters{
		Bounds: bounds,
		Limit:  mapQueryLimit,
	})
	if err != nil {
		return response.Error(c, "Failed to load map markers", fiber.StatusInternalServerError, nil)
	}

	markers := AggregateMarkers(vp, found)
	return response.Success(c, "Map markers fetched", fiber.Map{
		"markers": markers,
		"count":   len(markers),
	}, nil)
}

const mapQueryLimit = 5000

func queryFloat(c *fiber.Ctx, key string) (float64, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// queryBounds reads the four viewport params; the box only applies when all
// four are present.
func queryBounds(c *fiber.Ctx) (*listings.BoundingBox, bool) {
	minLat, ok1 := queryFloat(c, "min_lat")
	maxLat, ok2 := queryFloat(c, "max_lat")
	minLng, ok3 := queryFloat(c, "min_lng")
	maxLng, ok4 := queryFloat(c, "max_lng")
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil, false
	}
	return &listings.BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}, true
}
