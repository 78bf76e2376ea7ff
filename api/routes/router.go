package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukkanhq/dukkan-backend/api/controllers"
	"github.com/dukkanhq/dukkan-backend/api/middleware"
	cartsvc "github.com/dukkanhq/dukkan-backend/internal/cart"
	checkoutsvc "github.com/dukkanhq/dukkan-backend/internal/checkout"
	notificationsvc "github.com/dukkanhq/dukkan-backend/internal/notifications"
	ordersvc "github.com/dukkanhq/dukkan-backend/internal/orders"
	productsvc "github.com/dukkanhq/dukkan-backend/internal/products"
	suppliersvc "github.com/dukkanhq/dukkan-backend/internal/suppliers"
	"github.com/dukkanhq/dukkan-backend/pkg/config"
	"github.com/dukkanhq/dukkan-backend/pkg/db"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Checkout      checkoutsvc.Service
	Orders        ordersvc.Service
	Cart          cartsvc.Service
	Products      productsvc.Service
	Suppliers     suppliersvc.Service
	Notifications notificationsvc.Service
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Storefront catalog is public; everything else needs a token.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
	})
	r.Route("/api/v1/suppliers", func(r chi.Router) {
		r.Get("/", controllers.ListSuppliers(deps.Suppliers, logg))
		r.Get("/{supplierId}", controllers.SupplierDetail(deps.Suppliers, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/api/v1/ping", controllers.PrivatePing())

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleCustomer), logg))

			r.Route("/api/v1/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Put("/", controllers.CartSetItem(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Post("/api/v1/checkout", controllers.Checkout(deps.Checkout, logg))

			r.Route("/api/v1/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
				r.Post("/{orderId}/finalize", controllers.FinalizeOrder(deps.Orders, logg))
			})
		})

		r.Route("/api/v1/panel", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.RoleSupplier), string(enums.RoleAdmin)))
			r.Use(middleware.SupplierContext(logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.PanelListOrders(deps.Orders, logg))
				r.Get("/{subOrderId}", controllers.PanelOrderDetail(deps.Orders, logg))
				r.Patch("/{subOrderId}/status", controllers.PanelUpdateOrderStatus(deps.Orders, logg))
				r.Patch("/{subOrderId}/payment", controllers.PanelUpdateOrderPayment(deps.Orders, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.PanelListProducts(deps.Products, logg))
				r.Post("/", controllers.PanelCreateProduct(deps.Products, logg))
				r.Patch("/{productId}", controllers.PanelUpdateProduct(deps.Products, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.PanelListNotifications(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.PanelMarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.PanelMarkAllNotificationsRead(deps.Notifications, logg))
			})
		})
	})

	return r
}
