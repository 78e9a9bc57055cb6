package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"voxnova-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Assessment is the normalized classifier result. All loose encodings the
// model may emit (string booleans, currency-formatted numbers, scalar
// "arrays") are resolved here, at the ingestion edge; nothing downstream
// re-interprets string variants.
type Assessment struct {
	ProductName       string               `json:"product_name"`
	Components        []string             `json:"components"`
	ToxicityLevel     models.ToxicityLevel `json:"toxicity_level"`
	Recyclable        bool                 `json:"recyclable"`
	HarmfulSubstances []string             `json:"harmful_substances"`
	ResellValue       float64              `json:"resell_value"`
	MarketEstimateMin float64              `json:"market_estimate_min"`
	MarketEstimateMax float64              `json:"market_estimate_max"`
}

type rawAssessment struct {
	ProductName       string          `json:"product_name"`
	Components        json.RawMessage `json:"components"`
	ToxicityLevel     string          `json:"toxicity_level"`
	Recyclable        json.RawMessage `json:"recyclable"`
	HarmfulSubstances json.RawMessage `json:"harmful_substances"`
	ResellValue       json.RawMessage `json:"resell_value"`
	MarketEstimateMin json.RawMessage `json:"market_estimate_min"`
	MarketEstimateMax json.RawMessage `json:"market_estimate_max"`
}

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// Normalize parses the raw model JSON into an Assessment. Missing market
// bounds are derived from the resell value as floor(0.8x) and ceil(1.2x);
// bounds the model does supply are kept as-is, never clamped to that band.
func Normalize(raw []byte) (*Assessment, error) {
	var r rawAssessment
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	a := &Assessment{
		ProductName:       strings.TrimSpace(r.ProductName),
		Components:        stringList(r.Components),
		ToxicityLevel:     models.ParseToxicityLevel(r.ToxicityLevel),
		Recyclable:        looseBool(r.Recyclable),
		HarmfulSubstances: stringList(r.HarmfulSubstances),
		ResellValue:       looseNumber(r.ResellValue),
	}
	if a.ResellValue < 0 {
		a.ResellValue = 0
	}

	a.MarketEstimateMin = looseNumber(r.MarketEstimateMin)
	a.MarketEstimateMax = looseNumber(r.MarketEstimateMax)
	resell := decimal.NewFromFloat(a.ResellValue)
	if a.MarketEstimateMin == 0 {
		a.MarketEstimateMin, _ = resell.Mul(decimal.NewFromFloat(0.8)).Floor().Float64()
	}
	if a.MarketEstimateMax == 0 {
		a.MarketEstimateMax, _ = resell.Mul(decimal.NewFromFloat(1.2)).Ceil().Float64()
	}
	if a.MarketEstimateMin > a.MarketEstimateMax {
		a.MarketEstimateMin, a.MarketEstimateMax = a.MarketEstimateMax, a.MarketEstimateMin
	}

	return a, nil
}

// stringList accepts a JSON array of strings, a bare string (wrapped into a
// single-element list), or anything else (empty list).
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return []string{strings.TrimSpace(single)}
	}
	return []string{}
}

// looseBool accepts true/false, "true"/"yes"/"1" (case-insensitive), or
// anything else (false).
func looseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

// looseNumber accepts a JSON number or a currency-formatted string
// ("₹1,200.50" becomes 1200.50); unparseable values become 0.
func looseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		cleaned := nonNumericRe.ReplaceAllString(s, "")
		if cleaned == "" {
			return 0
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return 0
		}
		out, _ := d.Float64()
		return out
	}
	return 0
}
