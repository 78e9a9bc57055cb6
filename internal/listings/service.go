package listings

import (
	"context"
	"fmt"
	"strings"

	"voxnova-backend/internal/geo"
	"voxnova-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the listing repository boundary: creation, seller queries,
// public search, and soft deletion. Ranking and impact aggregation operate
// on the slices it returns and never reach into the database themselves.
type Service struct {
	DB *gorm.DB
}

// CreateListingInput carries a normalized classifier assessment plus the
// user-supplied geolocation. Classification fields arrive already strict;
// only coordinates are re-checked here (non-finite pairs are stored as
// missing, not rejected).
type CreateListingInput struct {
	SellerID          uuid.UUID
	ProductName       string
	ToxicityLevel     models.ToxicityLevel
	Recyclable        bool
	HarmfulSubstances []string
	Components        []string
	ResellValue       float64
	MarketEstimateMin float64
	MarketEstimateMax float64
	ImageURL          string
	Latitude          *float64
	Longitude         *float64
	Address           string
}

func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if in.ProductName == "" || in.ToxicityLevel == "" {
		return nil, ErrMissingFields
	}
	if in.ResellValue < 0 {
		in.ResellValue = 0
	}

	lat, lng := in.Latitude, in.Longitude
	if lat != nil && lng != nil {
		if !(geo.Point{Lat: *lat, Lng: *lng}).Valid() {
			lat, lng = nil, nil
		}
	} else {
		lat, lng = nil, nil
	}

	listing := &models.Listing{
		ID:                uuid.New(),
		SellerID:          in.SellerID,
		ProductName:       in.ProductName,
		ToxicityLevel:     in.ToxicityLevel,
		Recyclable:        in.Recyclable,
		HarmfulSubstances: datatypes.NewJSONSlice(emptyIfNil(in.HarmfulSubstances)),
		Components:        datatypes.NewJSONSlice(emptyIfNil(in.Components)),
		ResellValue:       in.ResellValue,
		MarketEstimateMin: in.MarketEstimateMin,
		MarketEstimateMax: in.MarketEstimateMax,
		ImageURL:          in.ImageURL,
		Latitude:          lat,
		Longitude:         lng,
		Address:           in.Address,
		Status:            models.ListingStatusActive,
	}

	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return listing, nil
}

// BoundingBox is the map viewport filter in decimal degrees.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// SearchFilters combine with logical AND. The public search is always
// implicitly restricted to active listings; removed listings never appear.
type SearchFilters struct {
	Query         string
	ToxicityLevel models.ToxicityLevel
	Recyclable    *bool
	MinPrice      *float64
	MaxPrice      *float64
	Bounds        *BoundingBox
	Limit         int
	Offset        int
}

const defaultSearchLimit = 50

// Search queries active listings ordered by created_at descending.
func (s *Service) Search(ctx context.Context, f SearchFilters) ([]models.Listing, error) {
	q := s.DB.WithContext(ctx).
		Where("status = ?", models.ListingStatusActive).
		Order("created_at DESC")

	if f.Query != "" {
		q = q.Where("LOWER(product_name) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}
	if f.ToxicityLevel != "" {
		q = q.Where("toxicity_level = ?", f.ToxicityLevel)
	}
	if f.Recyclable != nil {
		q = q.Where("recyclable = ?", *f.Recyclable)
	}
	if f.MinPrice != nil {
		q = q.Where("market_estimate_min >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("market_estimate_max <= ?", *f.MaxPrice)
	}
	if b := f.Bounds; b != nil {
		q = q.Where("latitude >= ? AND latitude <= ? AND longitude >= ? AND longitude <= ?",
			b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	q = q.Limit(limit).Offset(f.Offset)

	var found []models.Listing
	if err := q.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return found, nil
}

// ListBySeller returns a seller's listings, newest first, optionally
// filtered to one status. An empty statusFilter returns every status,
// which is what the impact aggregation needs.
func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID, statusFilter string) ([]models.Listing, error) {
	q := s.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	var found []models.Listing
	if err := q.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch seller listings: %w", err)
	}
	return found, nil
}

func (s *Service) GetByID(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// SoftDelete transitions a listing to removed without erasing the record.
// Only the owning seller may remove a listing.
func (s *Service) SoftDelete(ctx context.Context, listingID, requestingUserID uuid.UUID) error {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	if listing.SellerID != requestingUserID {
		return ErrNotOwner
	}
	if err := s.DB.WithContext(ctx).Model(&listing).Update("status", models.ListingStatusRemoved).Error; err != nil {
		return fmt.Errorf("failed to remove listing: %w", err)
	}
	return nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
