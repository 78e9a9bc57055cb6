package listings

import "errors"

var (
	ErrNotFound      = errors.New("Listing not found")
	ErrNotOwner      = errors.New("Unauthorized")
	ErrMissingFields = errors.New("Missing required fields: product_name, toxicity_level, recyclable")
	ErrSellerOnly    = errors.New("Only sellers can create listings")
)
