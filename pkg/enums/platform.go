package enums

import "fmt"

// Platform identifies one external sales channel with its own inventory API.
type Platform string

const (
	PlatformEtsy    Platform = "etsy"
	PlatformAmazon  Platform = "amazon"
	PlatformEbay    Platform = "ebay"
	PlatformShopify Platform = "shopify"
)

var validPlatforms = []Platform{
	PlatformEtsy,
	PlatformAmazon,
	PlatformEbay,
	PlatformShopify,
}

// IsValid reports whether the value matches the canonical platform enum.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts the raw string to Platform.
func ParsePlatform(value string) (Platform, error) {
	for _, candidate := range validPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}
