package models

import "strings"

// ToxicityLevel is the coarse severity tier assigned by the classifier.
// Ordered Low < Medium < High. Each use site (impact scoring, sort ranking)
// attaches its own weight table; the weights genuinely differ per context.
type ToxicityLevel string

const (
	ToxicityLow    ToxicityLevel = "Low"
	ToxicityMedium ToxicityLevel = "Medium"
	ToxicityHigh   ToxicityLevel = "High"
)

// ParseToxicityLevel normalizes a classifier-provided string to a known tier.
// Unknown values map to ToxicityLow (the bottom tier everywhere it is weighed).
func ParseToxicityLevel(s string) ToxicityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ToxicityHigh
	case "medium":
		return ToxicityMedium
	default:
		return ToxicityLow
	}
}

func (l ToxicityLevel) String() string {
	return string(l)
}

// Severity gives the tier's position in the Low < Medium < High order.
// Unknown tiers compare as Low.
func (l ToxicityLevel) Severity() int {
	switch l {
	case ToxicityHigh:
		return 3
	case ToxicityMedium:
		return 2
	default:
		return 1
	}
}
