package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homechef-app/homechef-backend/api/controllers"
	"github.com/homechef-app/homechef-backend/api/middleware"
	"github.com/homechef-app/homechef-backend/pkg/config"
	"github.com/homechef-app/homechef-backend/pkg/db"
	"github.com/homechef-app/homechef-backend/pkg/logger"
	"github.com/homechef-app/homechef-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Cfg      *config.Config
	Logg     *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Ledger   controllers.CartLedger
	Viewer   controllers.CartViewer
	Tiers    controllers.TierSource
	Vendors  controllers.VendorLister
	Realtime controllers.StatusChannel
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logg),
		middleware.RequestID(deps.Logg),
		middleware.Logging(deps.Logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Cfg))
		r.Get("/ready", controllers.HealthReady(deps.Cfg, deps.Logg, deps.DB, deps.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(deps.Viewer, deps.Logg))
			r.Delete("/", controllers.CartClearAll(deps.Ledger, deps.Logg))
			r.Get("/can-add", controllers.CartCanAdd(deps.Ledger, deps.Logg))
			r.Post("/lines", controllers.CartAddLine(deps.Ledger, deps.Logg))
			r.Route("/{categoryId}", func(r chi.Router) {
				r.Get("/", controllers.CartDetail(deps.Viewer, deps.Logg))
				r.Delete("/", controllers.CartClearCategory(deps.Ledger, deps.Logg))
				r.Patch("/lines/{itemId}", controllers.CartSetQuantity(deps.Ledger, deps.Logg))
				r.Delete("/lines/{itemId}", controllers.CartRemoveLine(deps.Ledger, deps.Logg))
			})
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Get("/settings", controllers.DeliverySettingsList(deps.Tiers, deps.Logg))
			r.Post("/quote", controllers.DeliveryQuote(deps.Tiers, deps.Logg))
		})

		r.Get("/vendors", controllers.VendorsList(deps.Vendors, deps.Logg))
		r.Get("/vendors/{vendorId}/products", controllers.VendorProducts(deps.Vendors, deps.Logg))

		r.Route("/realtime", func(r chi.Router) {
			r.Get("/status", controllers.RealtimeStatus(deps.Realtime, deps.Logg))
			r.Post("/reconnect", controllers.RealtimeReconnect(deps.Realtime, deps.Logg))
		})
	})

	return r
}
