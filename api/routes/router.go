package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukehargrove/channelstock-backend/api/controllers"
	webhookcontrollers "github.com/lukehargrove/channelstock-backend/api/controllers/webhooks"
	"github.com/lukehargrove/channelstock-backend/api/middleware"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/internal/notifications"
	"github.com/lukehargrove/channelstock-backend/internal/orders"
	syncsvc "github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Health        map[string]controllers.Pinger
	Inventory     inventory.Service
	Sync          syncsvc.Service
	Scheduler     *syncsvc.Scheduler
	Orders        orders.Service
	Notifications notifications.Service
	Metrics       prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/orders/{platform}", webhookcontrollers.OrderWebhook(deps.Orders, cfg.Webhooks, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListItems(deps.Inventory, logg))
			r.Post("/", controllers.CreateItem(deps.Inventory, logg))
			r.Post("/sync", controllers.SyncAllItems(deps.Scheduler, logg))
			r.Get("/conflicts", controllers.ListConflicts(deps.Sync, logg))
			r.Get("/{itemID}", controllers.GetItem(deps.Inventory, logg))
			r.Patch("/{itemID}", controllers.UpdateItem(deps.Inventory, logg))
			r.Post("/{itemID}/sync", controllers.SyncItem(deps.Sync, logg))
		})

		r.Get("/orders", controllers.ListOrders(deps.Orders, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
