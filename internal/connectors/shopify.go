package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

// Shopify talks to the Shopify admin inventory levels API. The platform ID
// carries "<inventory_item_id>:<location_id>"; a bare ID uses the shop's
// primary location as resolved by Shopify.
type Shopify struct {
	httpConnector
}

// NewShopify builds the Shopify connector.
func NewShopify(baseURL, token string, opts ...Option) (*Shopify, error) {
	conn, err := newHTTPConnector(baseURL, token, opts...)
	if err != nil {
		return nil, err
	}
	return &Shopify{httpConnector: conn}, nil
}

func (s *Shopify) Platform() enums.Platform {
	return enums.PlatformShopify
}

func (s *Shopify) headers() map[string]string {
	return map[string]string{headerShopifyAccessToken: s.token}
}

type shopifyLevelsResponse struct {
	InventoryLevels []struct {
		InventoryItemID int64 `json:"inventory_item_id"`
		LocationID      int64 `json:"location_id"`
		Available       int   `json:"available"`
	} `json:"inventory_levels"`
}

func (s *Shopify) GetQuantity(ctx context.Context, ref ListingRef) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}
	itemID, _ := splitShopifyRef(ref.PlatformID)

	var resp shopifyLevelsResponse
	path := fmt.Sprintf("inventory_levels.json?inventory_item_ids=%s", url.QueryEscape(itemID))
	if err := s.doJSON(ctx, http.MethodGet, path, s.headers(), nil, &resp); err != nil {
		return 0, err
	}

	if len(resp.InventoryLevels) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "inventory level not found")
	}
	return resp.InventoryLevels[0].Available, nil
}

func (s *Shopify) SetQuantity(ctx context.Context, ref ListingRef, quantity int) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	itemID, locationID := splitShopifyRef(ref.PlatformID)

	body := map[string]any{
		"inventory_item_id": itemID,
		"available":         quantity,
	}
	if locationID != "" {
		body["location_id"] = locationID
	}
	return s.doJSON(ctx, http.MethodPost, "inventory_levels/set.json", s.headers(), body, nil)
}

func splitShopifyRef(platformID string) (itemID, locationID string) {
	for i := 0; i < len(platformID); i++ {
		if platformID[i] == ':' {
			return platformID[:i], platformID[i+1:]
		}
	}
	return platformID, ""
}
