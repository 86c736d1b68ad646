package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/api/middleware"
	"github.com/lukehargrove/channelstock-backend/api/responses"
	"github.com/lukehargrove/channelstock-backend/api/validators"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

type createItemRequest struct {
	SKU       string                      `json:"sku" validate:"required,min=1,max=120"`
	Title     string                      `json:"title" validate:"required,min=1,max=255"`
	Quantity  int                         `json:"quantity" validate:"min=0"`
	Platforms []createItemPlatformRequest `json:"platforms" validate:"dive"`
}

type createItemPlatformRequest struct {
	Platform   string `json:"platform" validate:"required,oneof=etsy amazon ebay shopify"`
	PlatformID string `json:"platformId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=0"`
}

type updateItemRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Reserved *int    `json:"reserved,omitempty" validate:"omitempty,min=0"`
}

// CreateItem registers a new inventory item with its channel listings.
func CreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.CreateItemParams{
			OwnerID:  ownerID,
			SKU:      body.SKU,
			Title:    body.Title,
			Quantity: body.Quantity,
		}
		for _, p := range body.Platforms {
			params.Platforms = append(params.Platforms, inventory.CreateItemPlatform{
				Platform:   enums.Platform(p.Platform),
				PlatformID: p.PlatformID,
				Quantity:   p.Quantity,
			})
		}

		item, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// GetItem returns one owner-scoped item with its platform states.
func GetItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), ownerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// UpdateItem applies a partial update to an owner-scoped item.
func UpdateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), inventory.UpdateItemParams{
			OwnerID:  ownerID,
			ItemID:   itemID,
			Title:    body.Title,
			Quantity: body.Quantity,
			Reserved: body.Reserved,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ListItems pages through the owner's inventory.
func ListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.ListParams{
			OwnerID: ownerID,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			parsed, err := enums.ParseSyncStatus(status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = parsed
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ownerFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OwnerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner context missing")
	}
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid owner id")
	}
	return ownerID, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
