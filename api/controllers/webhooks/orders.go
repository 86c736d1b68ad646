package webhooks

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/api/responses"
	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
)

const webhookTokenHeader = "X-Webhook-Token"

// OrderIngestor handles a decoded order-created callback.
type OrderIngestor interface {
	HandleOrderCreated(ctx context.Context, ownerID uuid.UUID, platform enums.Platform, payload []byte) error
}

// OrderWebhook receives platform order-created callbacks. The caller is
// attributed to an owner through the configured per-owner webhook token.
func OrderWebhook(svc OrderIngestor, cfg config.WebhooksConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		platform, err := enums.ParsePlatform(chi.URLParam(r, "platform"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown platform"))
			return
		}

		ownerID, err := resolveOwner(cfg, r.Header.Get(webhookTokenHeader))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := svc.HandleOrderCreated(ctx, ownerID, platform, payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func resolveOwner(cfg config.WebhooksConfig, token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook token missing")
	}
	for candidate, owner := range cfg.OwnerTokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "misconfigured webhook owner")
			}
			return ownerID, nil
		}
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unrecognized webhook token")
}
