package orders

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

// ParsedOrder is the platform-neutral result of decoding a webhook payload.
type ParsedOrder struct {
	PlatformOrderID string
	LineItems       []models.OrderLineItem
}

// parseOrderPayload maps a raw platform webhook body to line items. The
// adapters are pure data mapping; nothing here touches inventory.
func parseOrderPayload(platform enums.Platform, payload []byte) (*ParsedOrder, error) {
	if len(payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty order payload")
	}

	switch platform {
	case enums.PlatformEtsy:
		return parseEtsyOrder(payload)
	case enums.PlatformAmazon:
		return parseAmazonOrder(payload)
	case enums.PlatformEbay:
		return parseEbayOrder(payload)
	case enums.PlatformShopify:
		return parseShopifyOrder(payload)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported platform %q", platform))
	}
}

func parseEtsyOrder(payload []byte) (*ParsedOrder, error) {
	var body struct {
		ReceiptID    int64 `json:"receipt_id"`
		Transactions []struct {
			SKU      string `json:"sku"`
			Quantity int    `json:"quantity"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode etsy order")
	}
	if body.ReceiptID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "etsy order missing receipt_id")
	}

	parsed := &ParsedOrder{PlatformOrderID: strconv.FormatInt(body.ReceiptID, 10)}
	for _, tx := range body.Transactions {
		parsed.LineItems = append(parsed.LineItems, models.OrderLineItem{SKU: tx.SKU, Quantity: tx.Quantity})
	}
	return parsed, validateLineItems(parsed)
}

func parseAmazonOrder(payload []byte) (*ParsedOrder, error) {
	var body struct {
		AmazonOrderID string `json:"AmazonOrderId"`
		OrderItems    []struct {
			SellerSKU       string `json:"SellerSKU"`
			QuantityOrdered int    `json:"QuantityOrdered"`
		} `json:"OrderItems"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode amazon order")
	}
	if body.AmazonOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amazon order missing AmazonOrderId")
	}

	parsed := &ParsedOrder{PlatformOrderID: body.AmazonOrderID}
	for _, item := range body.OrderItems {
		parsed.LineItems = append(parsed.LineItems, models.OrderLineItem{SKU: item.SellerSKU, Quantity: item.QuantityOrdered})
	}
	return parsed, validateLineItems(parsed)
}

func parseEbayOrder(payload []byte) (*ParsedOrder, error) {
	var body struct {
		OrderID   string `json:"orderId"`
		LineItems []struct {
			SKU      string `json:"sku"`
			Quantity int    `json:"quantity"`
		} `json:"lineItems"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode ebay order")
	}
	if body.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ebay order missing orderId")
	}

	parsed := &ParsedOrder{PlatformOrderID: body.OrderID}
	for _, item := range body.LineItems {
		parsed.LineItems = append(parsed.LineItems, models.OrderLineItem{SKU: item.SKU, Quantity: item.Quantity})
	}
	return parsed, validateLineItems(parsed)
}

func parseShopifyOrder(payload []byte) (*ParsedOrder, error) {
	var body struct {
		ID        int64 `json:"id"`
		LineItems []struct {
			SKU      string `json:"sku"`
			Quantity int    `json:"quantity"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode shopify order")
	}
	if body.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopify order missing id")
	}

	parsed := &ParsedOrder{PlatformOrderID: strconv.FormatInt(body.ID, 10)}
	for _, item := range body.LineItems {
		parsed.LineItems = append(parsed.LineItems, models.OrderLineItem{SKU: item.SKU, Quantity: item.Quantity})
	}
	return parsed, validateLineItems(parsed)
}

func validateLineItems(parsed *ParsedOrder) error {
	if len(parsed.LineItems) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no line items")
	}
	for _, line := range parsed.LineItems {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line item %q has non-positive quantity", line.SKU))
		}
	}
	return nil
}
