package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// Ebay talks to the eBay sell inventory API, which keys listings by SKU.
type Ebay struct {
	httpConnector
}

// NewEbay builds the eBay connector.
func NewEbay(baseURL, token string, opts ...Option) (*Ebay, error) {
	conn, err := newHTTPConnector(baseURL, token, opts...)
	if err != nil {
		return nil, err
	}
	return &Ebay{httpConnector: conn}, nil
}

func (e *Ebay) Platform() enums.Platform {
	return enums.PlatformEbay
}

type ebayInventoryItem struct {
	Availability struct {
		ShipToLocationAvailability struct {
			Quantity int `json:"quantity"`
		} `json:"shipToLocationAvailability"`
	} `json:"availability"`
}

func (e *Ebay) GetQuantity(ctx context.Context, ref ListingRef) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}

	var resp ebayInventoryItem
	path := fmt.Sprintf("inventory_item/%s", url.PathEscape(e.sku(ref)))
	if err := e.doJSON(ctx, http.MethodGet, path, bearerHeaders(e.token), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Availability.ShipToLocationAvailability.Quantity, nil
}

func (e *Ebay) SetQuantity(ctx context.Context, ref ListingRef, quantity int) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	body := map[string]any{
		"availability": map[string]any{
			"shipToLocationAvailability": map[string]any{
				"quantity": quantity,
			},
		},
	}
	path := fmt.Sprintf("inventory_item/%s", url.PathEscape(e.sku(ref)))
	return e.doJSON(ctx, http.MethodPut, path, bearerHeaders(e.token), body, nil)
}

func (e *Ebay) sku(ref ListingRef) string {
	if ref.SKU != "" {
		return ref.SKU
	}
	return ref.PlatformID
}
