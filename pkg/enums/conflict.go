package enums

import "fmt"

// ConflictType classifies a detected disagreement between platforms.
type ConflictType string

const (
	ConflictTypeQuantityMismatch ConflictType = "quantity_mismatch"
	ConflictTypePriceMismatch    ConflictType = "price_mismatch"
	ConflictTypeSoldOut          ConflictType = "sold_out"
)

var validConflictTypes = []ConflictType{
	ConflictTypeQuantityMismatch,
	ConflictTypePriceMismatch,
	ConflictTypeSoldOut,
}

// IsValid reports whether the value matches the canonical conflict type enum.
func (c ConflictType) IsValid() bool {
	for _, candidate := range validConflictTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ConflictResolution is the strategy used to collapse disagreeing quantities.
type ConflictResolution string

const (
	ConflictResolutionUseLowest    ConflictResolution = "use_lowest"
	ConflictResolutionUseHighest   ConflictResolution = "use_highest"
	ConflictResolutionManualReview ConflictResolution = "manual_review"
)

var validConflictResolutions = []ConflictResolution{
	ConflictResolutionUseLowest,
	ConflictResolutionUseHighest,
	ConflictResolutionManualReview,
}

// IsValid reports whether the value matches the canonical resolution enum.
func (r ConflictResolution) IsValid() bool {
	for _, candidate := range validConflictResolutions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseConflictResolution converts the raw string to ConflictResolution.
func ParseConflictResolution(value string) (ConflictResolution, error) {
	for _, candidate := range validConflictResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid conflict resolution %q", value)
}
