package listings

import (
	"context"
	"math"
	"testing"
	"time"

	"voxnova-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsDB(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}))
	return &Service{DB: db}
}

func ptrF(v float64) *float64 { return &v }
func ptrB(v bool) *bool       { return &v }

func validInput(sellerID uuid.UUID) CreateListingInput {
	return CreateListingInput{
		SellerID:          sellerID,
		ProductName:       "CRT Monitor",
		ToxicityLevel:     models.ToxicityHigh,
		Recyclable:        true,
		HarmfulSubstances: []string{"Lead", "Phosphor"},
		Components:        []string{"Glass", "Copper coil"},
		ResellValue:       450,
		MarketEstimateMin: 360,
		MarketEstimateMax: 540,
		Latitude:          ptrF(28.6139),
		Longitude:         ptrF(77.2090),
		Address:           "New Delhi",
	}
}

func TestCreateListing_Defaults(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()

	listing, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	assert.Equal(t, sellerID, listing.SellerID)
	assert.NotEqual(t, uuid.Nil, listing.ID)
	require.NotNil(t, listing.Latitude)
	assert.InDelta(t, 28.6139, *listing.Latitude, 1e-9)
}

func TestCreateListing_MissingRequired(t *testing.T) {
	svc := setupListingsDB(t)
	in := validInput(uuid.New())
	in.ProductName = ""
	_, err := svc.CreateListing(context.Background(), in)
	assert.Equal(t, ErrMissingFields, err)
}

func TestCreateListing_InvalidCoordinatesStoredAsMissing(t *testing.T) {
	svc := setupListingsDB(t)
	in := validInput(uuid.New())
	in.Latitude = ptrF(91)
	listing, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, listing.Latitude)
	assert.Nil(t, listing.Longitude)
}

func TestCreateListing_NaNCoordinatesStoredAsMissing(t *testing.T) {
	svc := setupListingsDB(t)
	in := validInput(uuid.New())
	in.Longitude = ptrF(math.NaN())
	listing, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, listing.Latitude)
	assert.Nil(t, listing.Longitude)
}

func TestCreateListing_NegativeResellClamped(t *testing.T) {
	svc := setupListingsDB(t)
	in := validInput(uuid.New())
	in.ResellValue = -50
	listing, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, listing.ResellValue)
}

func TestSearch_OnlyActive(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()

	active, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	removed, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), removed.ID, sellerID))

	found, err := svc.Search(context.Background(), SearchFilters{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, active.ID, found[0].ID)
}

func TestSearch_QueryCaseInsensitive(t *testing.T) {
	svc := setupListingsDB(t)
	in := validInput(uuid.New())
	in.ProductName = "Dell Laptop Battery"
	_, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), SearchFilters{Query: "laptop"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.Search(context.Background(), SearchFilters{Query: "toaster"})
	require.NoError(t, err)
	assert.Len(t, found, 0)
}

func TestSearch_ToxicityAndRecyclable(t *testing.T) {
	svc := setupListingsDB(t)
	high := validInput(uuid.New())
	_, err := svc.CreateListing(context.Background(), high)
	require.NoError(t, err)

	low := validInput(uuid.New())
	low.ToxicityLevel = models.ToxicityLow
	low.Recyclable = false
	_, err = svc.CreateListing(context.Background(), low)
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), SearchFilters{ToxicityLevel: models.ToxicityHigh})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.ToxicityHigh, found[0].ToxicityLevel)

	found, err = svc.Search(context.Background(), SearchFilters{Recyclable: ptrB(false)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.False(t, found[0].Recyclable)
}

func TestSearch_PriceBand(t *testing.T) {
	svc := setupListingsDB(t)
	cheap := validInput(uuid.New())
	cheap.MarketEstimateMin = 80
	cheap.MarketEstimateMax = 120
	_, err := svc.CreateListing(context.Background(), cheap)
	require.NoError(t, err)

	pricey := validInput(uuid.New())
	pricey.MarketEstimateMin = 800
	pricey.MarketEstimateMax = 1200
	_, err = svc.CreateListing(context.Background(), pricey)
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), SearchFilters{MinPrice: ptrF(500)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 800.0, found[0].MarketEstimateMin)

	found, err = svc.Search(context.Background(), SearchFilters{MaxPrice: ptrF(500)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 120.0, found[0].MarketEstimateMax)
}

func TestSearch_BoundingBox(t *testing.T) {
	svc := setupListingsDB(t)
	delhi := validInput(uuid.New())
	_, err := svc.CreateListing(context.Background(), delhi)
	require.NoError(t, err)

	mumbai := validInput(uuid.New())
	mumbai.Latitude = ptrF(19.0760)
	mumbai.Longitude = ptrF(72.8777)
	_, err = svc.CreateListing(context.Background(), mumbai)
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), SearchFilters{Bounds: &BoundingBox{
		MinLat: 28, MaxLat: 29, MinLng: 76, MaxLng: 78,
	}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.InDelta(t, 28.6139, *found[0].Latitude, 1e-9)
}

func TestSearch_LimitOffset(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()
	for i := 0; i < 5; i++ {
		_, err := svc.CreateListing(context.Background(), validInput(sellerID))
		require.NoError(t, err)
	}

	found, err := svc.Search(context.Background(), SearchFilters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(context.Background(), SearchFilters{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestListBySeller_StatusFilter(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()

	kept, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	removed, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), removed.ID, sellerID))

	all, err := svc.ListBySeller(context.Background(), sellerID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := svc.ListBySeller(context.Background(), sellerID, models.ListingStatusActive)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, kept.ID, activeOnly[0].ID)
}

func TestListBySeller_NewestFirst(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()

	first, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)
	// sqlite timestamp resolution needs a visible gap
	require.NoError(t, svc.DB.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)
	second, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)

	found, err := svc.ListBySeller(context.Background(), sellerID, "")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, second.ID, found[0].ID)
	assert.Equal(t, first.ID, found[1].ID)
}

func TestSoftDelete_NotFound(t *testing.T) {
	svc := setupListingsDB(t)
	err := svc.SoftDelete(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, ErrNotFound, err)
}

func TestSoftDelete_NotOwner(t *testing.T) {
	svc := setupListingsDB(t)
	listing, err := svc.CreateListing(context.Background(), validInput(uuid.New()))
	require.NoError(t, err)

	err = svc.SoftDelete(context.Background(), listing.ID, uuid.New())
	assert.Equal(t, ErrNotOwner, err)
}

func TestSoftDelete_KeepsRecord(t *testing.T) {
	svc := setupListingsDB(t)
	sellerID := uuid.New()
	listing, err := svc.CreateListing(context.Background(), validInput(sellerID))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), listing.ID, sellerID))

	got, err := svc.GetByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRemoved, got.Status)
}
