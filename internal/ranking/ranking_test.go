package ranking

import (
	"math"
	"testing"
	"time"

	"voxnova-backend/internal/geo"
	"voxnova-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func named(name string, lat, lng *float64) models.Listing {
	return models.Listing{ProductName: name, Latitude: lat, Longitude: lng}
}

func names(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ProductName
	}
	return out
}

func TestRank_PassThroughWithoutCriteria(t *testing.T) {
	lat, lng := coords(28.6, 77.2)
	in := []models.Listing{
		named("a", lat, lng),
		named("b", nil, nil),
		named("c", lat, lng),
	}
	out := Rank(in, nil, "")
	assert.Equal(t, []string{"a", "b", "c"}, names(out))
	for _, r := range out {
		assert.Nil(t, r.Distance)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	ref := &geo.Point{Lat: 28.6, Lng: 77.2}
	assert.Empty(t, Rank(nil, ref, ""))
	assert.Empty(t, Rank([]models.Listing{}, nil, SortValue))
}

func TestRank_ByDistance(t *testing.T) {
	ref := &geo.Point{Lat: 28.6139, Lng: 77.2090} // Delhi
	farLat, farLng := coords(19.0760, 72.8777)    // Mumbai
	nearLat, nearLng := coords(28.7041, 77.1025)  // nearby
	midLat, midLng := coords(26.9124, 75.7873)    // Jaipur

	in := []models.Listing{
		named("far", farLat, farLng),
		named("near", nearLat, nearLng),
		named("mid", midLat, midLng),
	}
	out := Rank(in, ref, "")
	assert.Equal(t, []string{"near", "mid", "far"}, names(out))

	require.NotNil(t, out[0].Distance)
	require.NotNil(t, out[2].Distance)
	assert.Less(t, *out[0].Distance, *out[2].Distance)
}

func TestRank_MissingCoordinatesGoLast(t *testing.T) {
	ref := &geo.Point{Lat: 28.6139, Lng: 77.2090}
	lat, lng := coords(28.7, 77.1)
	badLat := math.NaN()

	in := []models.Listing{
		named("no-coords-1", nil, nil),
		named("geo", lat, lng),
		named("nan-lat", &badLat, lng),
		named("no-coords-2", nil, nil),
	}
	out := Rank(in, ref, "")
	// Geo-ranked first, then the no-distance group in original relative order.
	assert.Equal(t, []string{"geo", "no-coords-1", "nan-lat", "no-coords-2"}, names(out))
	assert.Nil(t, out[1].Distance)
	assert.Nil(t, out[2].Distance)
}

func TestRank_InvalidReferenceIsPassThrough(t *testing.T) {
	lat, lng := coords(28.7, 77.1)
	in := []models.Listing{named("a", lat, lng), named("b", lat, lng)}
	out := Rank(in, &geo.Point{Lat: math.NaN(), Lng: 77.2}, "")
	assert.Equal(t, []string{"a", "b"}, names(out))
	assert.Nil(t, out[0].Distance)
}

func TestRank_SortValueIgnoresReference(t *testing.T) {
	ref := &geo.Point{Lat: 28.6139, Lng: 77.2090}
	nearLat, nearLng := coords(28.7, 77.1)
	farLat, farLng := coords(19.0, 72.8)

	cheapNear := named("cheap-near", nearLat, nearLng)
	cheapNear.MarketEstimateMin, cheapNear.MarketEstimateMax = 100, 200
	richFar := named("rich-far", farLat, farLng)
	richFar.MarketEstimateMin, richFar.MarketEstimateMax = 1000, 2000

	out := Rank([]models.Listing{cheapNear, richFar}, ref, SortValue)
	assert.Equal(t, []string{"rich-far", "cheap-near"}, names(out))
}

func TestRank_SortRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	old := models.Listing{ProductName: "old", CreatedAt: base}
	newer := models.Listing{ProductName: "newer", CreatedAt: base.Add(time.Hour)}
	newest := models.Listing{ProductName: "newest", CreatedAt: base.Add(2 * time.Hour)}

	out := Rank([]models.Listing{old, newest, newer}, nil, SortRecent)
	assert.Equal(t, []string{"newest", "newer", "old"}, names(out))
}

func TestRank_SortToxicity(t *testing.T) {
	mk := func(name string, level models.ToxicityLevel) models.Listing {
		return models.Listing{ProductName: name, ToxicityLevel: level}
	}
	out := Rank([]models.Listing{
		mk("low", models.ToxicityLow),
		mk("high-1", models.ToxicityHigh),
		mk("med", models.ToxicityMedium),
		mk("high-2", models.ToxicityHigh),
		mk("unknown", models.ToxicityLevel("")),
	}, nil, SortToxicity)
	// Stable: high-1 before high-2, unknown ties with low in input order.
	assert.Equal(t, []string{"high-1", "high-2", "med", "low", "unknown"}, names(out))
}

func TestParseSortMode(t *testing.T) {
	for _, valid := range []string{"recent", "value", "toxicity"} {
		m, ok := ParseSortMode(valid)
		assert.True(t, ok)
		assert.Equal(t, SortMode(valid), m)
	}
	for _, invalid := range []string{"", "distance", "RECENT"} {
		_, ok := ParseSortMode(invalid)
		assert.False(t, ok)
	}
}
