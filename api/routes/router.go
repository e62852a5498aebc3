package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chocobliss/storefront-backend/api/controllers"
	"github.com/chocobliss/storefront-backend/api/middleware"
	cartsvc "github.com/chocobliss/storefront-backend/internal/cart"
	"github.com/chocobliss/storefront-backend/internal/catalog"
	checkoutsvc "github.com/chocobliss/storefront-backend/internal/checkout"
	ordersvc "github.com/chocobliss/storefront-backend/internal/orders"
	paymentsvc "github.com/chocobliss/storefront-backend/internal/payments"
	"github.com/chocobliss/storefront-backend/pkg/config"
	"github.com/chocobliss/storefront-backend/pkg/db"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	"github.com/chocobliss/storefront-backend/pkg/logger"
	"github.com/chocobliss/storefront-backend/pkg/metrics"
	"github.com/chocobliss/storefront-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       redis.Pinger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Catalog  catalog.Service
	Cart     cartsvc.Service
	Orders   ordersvc.Service
	Payments paymentsvc.Service
	Checkout checkoutsvc.Service
}

// NewRouter assembles the full route tree.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/products", controllers.ProductList(deps.Catalog, logg))
		r.Get("/products/{productID}", controllers.ProductGet(deps.Catalog, logg))

		// Everything else requires an authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/products/{productID}/reviews", controllers.ProductReviewCreate(deps.Catalog, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Post("/add", controllers.CartItemAdd(deps.Cart, logg))
				r.Put("/update", controllers.CartItemUpdate(deps.Cart, logg))
				r.Delete("/remove", controllers.CartItemRemove(deps.Cart, logg))
				r.Delete("/clear", controllers.CartClear(deps.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Post("/", controllers.OrderCreate(deps.Checkout, logg))
				r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
					r.Put("/{orderID}/status", controllers.OrderFulfillmentUpdate(deps.Orders, logg))
					r.Post("/{orderID}/refund", controllers.OrderRefund(deps.Orders, logg))
				})
			})

			r.Route("/payment", func(r chi.Router) {
				r.Post("/create-order", controllers.PaymentOrderCreate(deps.Payments, logg))
				r.Post("/verify", controllers.PaymentVerify(deps.Payments, logg))
			})

			r.Post("/checkout", controllers.CheckoutCreate(deps.Checkout, logg))
		})
	})

	return r
}
