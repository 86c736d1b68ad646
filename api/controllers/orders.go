package controllers

import (
	"net/http"
	"strings"

	"github.com/lukehargrove/channelstock-backend/api/responses"
	"github.com/lukehargrove/channelstock-backend/api/validators"
	"github.com/lukehargrove/channelstock-backend/internal/orders"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// ListOrders pages through the owner's order audit trail.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.List(r.Context(), orders.ListParams{
			OwnerID: ownerID,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
