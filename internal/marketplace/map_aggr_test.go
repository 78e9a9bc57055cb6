package marketplace

import (
	"testing"

	"voxnova-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delhiViewport() Viewport {
	return Viewport{
		MinLat: 28.4, MaxLat: 28.9,
		MinLng: 76.8, MaxLng: 77.5,
		CenterLat: 28.65, CenterLng: 77.15,
	}
}

func coordListing(lat, lng float64, tox models.ToxicityLevel) models.Listing {
	return models.Listing{
		Latitude:      &lat,
		Longitude:     &lng,
		ToxicityLevel: tox,
		Status:        models.ListingStatusActive,
	}
}

func TestAggregateMarkers_Empty(t *testing.T) {
	markers := AggregateMarkers(delhiViewport(), nil)
	assert.Empty(t, markers)
}

func TestAggregateMarkers_SingleKeepsPosition(t *testing.T) {
	markers := AggregateMarkers(delhiViewport(), []models.Listing{
		coordListing(28.6139, 77.2090, models.ToxicityHigh),
	})
	require.Len(t, markers, 1)
	assert.Equal(t, int64(1), markers[0].Count)
	// A lone listing stays at its own coordinates, not the cell center.
	assert.InDelta(t, 28.6139, markers[0].Latitude, 0.001)
	assert.InDelta(t, 77.2090, markers[0].Longitude, 0.001)
	assert.Equal(t, models.ToxicityHigh, markers[0].Toxicity)
}

func TestAggregateMarkers_NearbyPointsCluster(t *testing.T) {
	// Two points meters apart share an S2 cell at any viewport level.
	markers := AggregateMarkers(delhiViewport(), []models.Listing{
		coordListing(28.61390, 77.20900, models.ToxicityLow),
		coordListing(28.61391, 77.20901, models.ToxicityMedium),
	})
	require.Len(t, markers, 1)
	assert.Equal(t, int64(2), markers[0].Count)
	assert.Equal(t, models.ToxicityMedium, markers[0].Toxicity)
}

func TestAggregateMarkers_DistantPointsSeparate(t *testing.T) {
	markers := AggregateMarkers(delhiViewport(), []models.Listing{
		coordListing(28.45, 76.85, models.ToxicityLow),
		coordListing(28.85, 77.45, models.ToxicityLow),
	})
	assert.Len(t, markers, 2)
}

func TestAggregateMarkers_WorstToxicityWins(t *testing.T) {
	markers := AggregateMarkers(delhiViewport(), []models.Listing{
		coordListing(28.61390, 77.20900, models.ToxicityHigh),
		coordListing(28.61391, 77.20901, models.ToxicityLow),
		coordListing(28.61392, 77.20902, models.ToxicityMedium),
	})
	require.Len(t, markers, 1)
	assert.Equal(t, int64(3), markers[0].Count)
	assert.Equal(t, models.ToxicityHigh, markers[0].Toxicity)
}

func TestAggregateMarkers_SkipsMissingCoordinates(t *testing.T) {
	markers := AggregateMarkers(delhiViewport(), []models.Listing{
		{ToxicityLevel: models.ToxicityHigh},
		coordListing(28.6139, 77.2090, models.ToxicityLow),
	})
	require.Len(t, markers, 1)
	assert.Equal(t, int64(1), markers[0].Count)
}

func TestCellBaseLevel_ZoomedOutViewportUsesCoarserCells(t *testing.T) {
	city := cellBaseLevel(delhiViewport())
	country := cellBaseLevel(Viewport{
		MinLat: 8, MaxLat: 35,
		MinLng: 68, MaxLng: 97,
		CenterLat: 21.5, CenterLng: 82.5,
	})
	assert.Less(t, country, city)
	assert.GreaterOrEqual(t, country, minLevel)
	assert.LessOrEqual(t, city, maxLevel)
}
