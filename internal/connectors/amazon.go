package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

// Amazon talks to the Selling Partner listings API. The platform ID carries
// the seller ID; the SKU selects the listing.
type Amazon struct {
	httpConnector
}

// NewAmazon builds the Amazon connector.
func NewAmazon(baseURL, token string, opts ...Option) (*Amazon, error) {
	conn, err := newHTTPConnector(baseURL, token, opts...)
	if err != nil {
		return nil, err
	}
	return &Amazon{httpConnector: conn}, nil
}

func (a *Amazon) Platform() enums.Platform {
	return enums.PlatformAmazon
}

type amazonListingResponse struct {
	FulfillmentAvailability []struct {
		FulfillmentChannelCode string `json:"fulfillmentChannelCode"`
		Quantity               int    `json:"quantity"`
	} `json:"fulfillmentAvailability"`
}

func (a *Amazon) GetQuantity(ctx context.Context, ref ListingRef) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}

	var resp amazonListingResponse
	path := fmt.Sprintf(
		"listings/2021-08-01/items/%s/%s?includedData=fulfillmentAvailability",
		url.PathEscape(ref.PlatformID),
		url.PathEscape(ref.SKU),
	)
	if err := a.doJSON(ctx, http.MethodGet, path, bearerHeaders(a.token), nil, &resp); err != nil {
		return 0, err
	}

	if len(resp.FulfillmentAvailability) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "listing availability not found")
	}
	return resp.FulfillmentAvailability[0].Quantity, nil
}

func (a *Amazon) SetQuantity(ctx context.Context, ref ListingRef, quantity int) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	body := map[string]any{
		"productType": "PRODUCT",
		"patches": []map[string]any{
			{
				"op":   "replace",
				"path": "/attributes/fulfillment_availability",
				"value": []map[string]any{
					{
						"fulfillment_channel_code": "DEFAULT",
						"quantity":                 quantity,
					},
				},
			},
		},
	}
	path := fmt.Sprintf(
		"listings/2021-08-01/items/%s/%s",
		url.PathEscape(ref.PlatformID),
		url.PathEscape(ref.SKU),
	)
	return a.doJSON(ctx, http.MethodPatch, path, bearerHeaders(a.token), body, nil)
}
