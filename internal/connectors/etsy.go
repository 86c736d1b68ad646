package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

// Etsy talks to the Etsy v3 listing inventory API.
type Etsy struct {
	httpConnector
}

// NewEtsy builds the Etsy connector.
func NewEtsy(baseURL, token string, opts ...Option) (*Etsy, error) {
	conn, err := newHTTPConnector(baseURL, token, opts...)
	if err != nil {
		return nil, err
	}
	return &Etsy{httpConnector: conn}, nil
}

func (e *Etsy) Platform() enums.Platform {
	return enums.PlatformEtsy
}

type etsyInventoryResponse struct {
	Products []struct {
		SKU       string `json:"sku"`
		Offerings []struct {
			Quantity int `json:"quantity"`
		} `json:"offerings"`
	} `json:"products"`
}

func (e *Etsy) GetQuantity(ctx context.Context, ref ListingRef) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}

	var resp etsyInventoryResponse
	path := fmt.Sprintf("application/listings/%s/inventory", url.PathEscape(ref.PlatformID))
	if err := e.doJSON(ctx, http.MethodGet, path, bearerHeaders(e.token), nil, &resp); err != nil {
		return 0, err
	}

	for _, product := range resp.Products {
		if ref.SKU != "" && product.SKU != ref.SKU {
			continue
		}
		if len(product.Offerings) == 0 {
			continue
		}
		return product.Offerings[0].Quantity, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeNotFound, "listing offering not found")
}

func (e *Etsy) SetQuantity(ctx context.Context, ref ListingRef, quantity int) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	body := map[string]any{
		"products": []map[string]any{
			{
				"sku": ref.SKU,
				"offerings": []map[string]any{
					{"quantity": quantity},
				},
			},
		},
	}
	path := fmt.Sprintf("application/listings/%s/inventory", url.PathEscape(ref.PlatformID))
	return e.doJSON(ctx, http.MethodPut, path, bearerHeaders(e.token), body, nil)
}
