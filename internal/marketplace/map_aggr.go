package marketplace

import (
	"voxnova-backend/internal/models"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Viewport is the visible map rectangle plus its center, in decimal degrees.
type Viewport struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	CenterLat      float64
	CenterLng      float64
}

// Marker is one aggregated map pin: a cluster of listings collapsed to a
// single point with a count and the worst toxicity tier in the cluster
// (drives the badge color client-side).
type Marker struct {
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
	Count     int64                `json:"count"`
	Toxicity  models.ToxicityLevel `json:"toxicity"`
}

type aggrUnit struct {
	cnt      int64
	origCell s2.CellID
	worst    models.ToxicityLevel
}

// markerAggregator buckets listing coordinates into S2 cells sized so a
// typical viewport renders a bounded number of markers.
type markerAggregator struct {
	level int
	aggrs map[s2.CellID]*aggrUnit
}

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

func cellBaseLevel(vp Viewport) int {
	minLL := s2.LatLngFromDegrees(vp.MinLat, vp.MinLng)
	maxLL := s2.LatLngFromDegrees(vp.MaxLat, vp.MaxLng)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}

	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(vp.CenterLat, vp.CenterLng))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel // Large enough level
}

func newMarkerAggregator(vp Viewport) markerAggregator {
	return markerAggregator{
		level: cellBaseLevel(vp),
		aggrs: make(map[s2.CellID]*aggrUnit),
	}
}

func (a *markerAggregator) Add(lat, lng float64, toxicity models.ToxicityLevel) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng))
	parent := pc.Parent(a.level)
	unit, ok := a.aggrs[parent]
	if !ok {
		unit = &aggrUnit{worst: models.ToxicityLow}
		a.aggrs[parent] = unit
	}
	unit.cnt++
	unit.origCell = pc
	if toxicity.Severity() > unit.worst.Severity() {
		unit.worst = toxicity
	}
}

func (a *markerAggregator) Markers() []Marker {
	r := make([]Marker, 0, len(a.aggrs))
	for c, unit := range a.aggrs {
		ll := c.LatLng()
		// A lone listing keeps its real position instead of the cell center.
		if unit.cnt == 1 {
			ll = unit.origCell.LatLng()
		}
		r = append(r, Marker{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
			Toxicity:  unit.worst,
		})
	}
	return r
}

// AggregateMarkers clusters the coordinates of the given listings for the
// viewport. Listings without usable coordinates are skipped.
func AggregateMarkers(vp Viewport, listings []models.Listing) []Marker {
	aggr := newMarkerAggregator(vp)
	for i := range listings {
		if !listings[i].HasCoordinates() {
			continue
		}
		aggr.Add(*listings[i].Latitude, *listings[i].Longitude, listings[i].ToxicityLevel)
	}
	return aggr.Markers()
}
