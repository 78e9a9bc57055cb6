package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Listing statuses. Transitions are one-directional except
// active -> pending -> active (a pickup reservation may lapse).
const (
	ListingStatusActive  = "active"
	ListingStatusPending = "pending"
	ListingStatusSold    = "sold"
	ListingStatusRemoved = "removed"
)

// Listing is one e-waste item offered for pickup/sale. Classification fields
// (toxicity, substances, resell value) are set once from the classifier
// result at creation and never recomputed.
type Listing struct {
	ID                uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SellerID          uuid.UUID                   `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	ProductName       string                      `gorm:"column:product_name;not null" json:"product_name"`
	ToxicityLevel     ToxicityLevel               `gorm:"column:toxicity_level;type:varchar(10);not null" json:"toxicity_level"`
	Recyclable        bool                        `gorm:"column:recyclable;not null" json:"recyclable"`
	HarmfulSubstances datatypes.JSONSlice[string] `gorm:"column:harmful_substances" json:"harmful_substances"`
	Components        datatypes.JSONSlice[string] `gorm:"column:components" json:"components"`
	ResellValue       float64                     `gorm:"column:resell_value;type:decimal(12,2);default:0" json:"resell_value"`
	MarketEstimateMin float64                     `gorm:"column:market_estimate_min;type:decimal(12,2);default:0" json:"market_estimate_min"`
	MarketEstimateMax float64                     `gorm:"column:market_estimate_max;type:decimal(12,2);default:0" json:"market_estimate_max"`
	ImageURL          string                      `gorm:"column:image_url" json:"image_url"`
	Latitude          *float64                    `gorm:"column:latitude" json:"latitude"`
	Longitude         *float64                    `gorm:"column:longitude" json:"longitude"`
	Address           string                      `gorm:"column:address" json:"address"`
	Status            string                      `gorm:"column:status;type:varchar(20);default:'active';index" json:"status"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// HasCoordinates reports whether both latitude and longitude are present.
// Finiteness is checked by the ranking layer, not here.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
