package impact

import (
	"math"

	"voxnova-backend/internal/models"
)

// Profile is the derived per-seller environmental and gamification aggregate.
// It is recomputed from the seller's listings on every profile fetch and is
// never persisted.
type Profile struct {
	LeadKg         float64 `json:"leadKg"`
	MercuryGrams   float64 `json:"mercuryGrams"`
	Points         int     `json:"points"`
	ItemsRecycled  int     `json:"itemsRecycled"`
	ActiveListings int     `json:"activeListings"`
}

// Substance tags that contribute to the hazardous-mass totals. Only sold
// listings count: the mass is considered diverted once the item changes hands.
const (
	tagLead    = "Lead"
	tagMercury = "Mercury"

	leadKgPerItem       = 0.5
	mercuryGramsPerItem = 0.1
)

// Weight tables for gamification points. Sold and active listings use
// different multipliers on purpose; unknown toxicity falls into the Low tier.
var soldMultiplier = map[models.ToxicityLevel]float64{
	models.ToxicityHigh:   3,
	models.ToxicityMedium: 2,
	models.ToxicityLow:    1,
}

var activeMultiplier = map[models.ToxicityLevel]float64{
	models.ToxicityHigh:   2,
	models.ToxicityMedium: 1.5,
	models.ToxicityLow:    1,
}

const (
	soldBasePoints   = 10
	activeBasePoints = 5
)

// Compute folds a seller's listings (any status) into a Profile. Pure
// function: statuses other than sold/active are ignored, an empty input
// yields the zero Profile.
func Compute(listings []models.Listing) Profile {
	var leadKg, mercuryGrams, points float64
	var sold, active int

	for i := range listings {
		l := &listings[i]
		switch l.Status {
		case models.ListingStatusSold:
			sold++
			if containsTag(l.HarmfulSubstances, tagLead) {
				leadKg += leadKgPerItem
			}
			if containsTag(l.HarmfulSubstances, tagMercury) {
				mercuryGrams += mercuryGramsPerItem
			}
			points += soldBasePoints * multiplier(soldMultiplier, l.ToxicityLevel)
		case models.ListingStatusActive:
			active++
			points += activeBasePoints * multiplier(activeMultiplier, l.ToxicityLevel)
		}
	}

	return Profile{
		LeadKg:         round1(leadKg),
		MercuryGrams:   round1(mercuryGrams),
		Points:         int(math.Round(points)),
		ItemsRecycled:  sold,
		ActiveListings: active,
	}
}

func multiplier(table map[models.ToxicityLevel]float64, level models.ToxicityLevel) float64 {
	if m, ok := table[level]; ok {
		return m
	}
	return table[models.ToxicityLow]
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
