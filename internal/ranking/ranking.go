package ranking

import (
	"sort"

	"voxnova-backend/internal/geo"
	"voxnova-backend/internal/models"
)

// SortMode selects a caller-chosen comparator that replaces geo ranking
// entirely. Geo sort and a sort mode are never combined.
type SortMode string

const (
	SortRecent   SortMode = "recent"
	SortValue    SortMode = "value"
	SortToxicity SortMode = "toxicity"
)

// ParseSortMode returns the mode for a query-string value, or false for
// anything unrecognized (including the empty string).
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case SortRecent, SortValue, SortToxicity:
		return SortMode(s), true
	}
	return "", false
}

// sortRank orders toxicity severity for the toxicity sort mode. Distinct
// from the impact multiplier tables; unknown tiers rank with Low.
var sortRank = map[models.ToxicityLevel]int{
	models.ToxicityHigh:   3,
	models.ToxicityMedium: 2,
	models.ToxicityLow:    1,
}

// Ranked is a listing annotated with its distance from the viewer's
// reference point. Distance is nil when the listing has no usable
// coordinates or no reference point was supplied.
type Ranked struct {
	models.Listing
	Distance *float64 `json:"distance,omitempty"`
}

// Rank orders listings for display.
//
// With a sort mode, the mode's comparator applies and ref is ignored. With a
// reference point and no mode, listings sort ascending by great-circle
// distance; listings without usable coordinates keep their relative order at
// the end. With neither, the input order is passed through unchanged. All
// sorts are stable; an empty input yields an empty output.
func Rank(listings []models.Listing, ref *geo.Point, mode SortMode) []Ranked {
	out := make([]Ranked, len(listings))
	for i := range listings {
		out[i] = Ranked{Listing: listings[i]}
	}

	if mode != "" {
		sortByMode(out, mode)
		return out
	}

	if ref == nil || !ref.Valid() {
		return out
	}

	for i := range out {
		if d, ok := listingDistance(&out[i].Listing, *ref); ok {
			out[i].Distance = &d
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Distance, out[j].Distance
		switch {
		case di != nil && dj != nil:
			return *di < *dj
		case di != nil:
			return true
		default:
			return false
		}
	})
	return out
}

func sortByMode(out []Ranked, mode SortMode) {
	switch mode {
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortValue:
		sort.SliceStable(out, func(i, j int) bool {
			vi := out[i].MarketEstimateMin + out[i].MarketEstimateMax
			vj := out[j].MarketEstimateMin + out[j].MarketEstimateMax
			return vi > vj
		})
	case SortToxicity:
		sort.SliceStable(out, func(i, j int) bool {
			return severity(out[i].ToxicityLevel) > severity(out[j].ToxicityLevel)
		})
	}
}

func severity(level models.ToxicityLevel) int {
	if r, ok := sortRank[level]; ok {
		return r
	}
	return sortRank[models.ToxicityLow]
}

// listingDistance computes the distance to ref, treating absent or
// non-finite coordinates as "missing" rather than an error.
func listingDistance(l *models.Listing, ref geo.Point) (float64, bool) {
	if !l.HasCoordinates() {
		return 0, false
	}
	p := geo.Point{Lat: *l.Latitude, Lng: *l.Longitude}
	if !p.Valid() {
		return 0, false
	}
	return geo.DistanceKm(ref, p), true
}
