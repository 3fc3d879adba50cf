package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/happycart-io/happycart-backend/api/controllers"
	"github.com/happycart-io/happycart-backend/api/middleware"
	cartsvc "github.com/happycart-io/happycart-backend/internal/cart"
	checkoutsvc "github.com/happycart-io/happycart-backend/internal/checkout"
	ordersvc "github.com/happycart-io/happycart-backend/internal/orders"
	productsvc "github.com/happycart-io/happycart-backend/internal/products"
	usersvc "github.com/happycart-io/happycart-backend/internal/users"
	"github.com/happycart-io/happycart-backend/pkg/config"
	"github.com/happycart-io/happycart-backend/pkg/db"
	"github.com/happycart-io/happycart-backend/pkg/logger"
	"github.com/happycart-io/happycart-backend/pkg/metrics"
	"github.com/happycart-io/happycart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	productService productsvc.Service,
	userService usersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	cartWritePolicy := middleware.NewRateLimitPolicy("cart_write", time.Minute, 120)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{id}", controllers.GetProduct(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cartWritePolicy, redisClient, logg))
				r.Post("/", controllers.CartAddItem(cartService, logg))
				r.Put("/", controllers.CartSetItemQuantity(cartService, logg))
				r.Delete("/", controllers.CartRemoveItem(cartService, logg))
			})
			r.Get("/", controllers.CartGet(cartService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Use(middleware.Idempotency(redisClient, logg))
				r.Post("/merge", controllers.CartMerge(cartService, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/", controllers.CheckoutCreate(checkoutService, logg))
			r.Put("/{id}/pay", controllers.CheckoutMarkPaid(checkoutService, logg))
			r.Post("/{id}/finalize", controllers.CheckoutFinalize(checkoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/my-orders", controllers.MyOrders(orderService, logg))
			r.Get("/{id}", controllers.OrderByID(orderService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(orderService, logg))
				r.Put("/{id}", controllers.AdminUpdateOrderStatus(orderService, logg))
				r.Delete("/{id}", controllers.AdminDeleteOrder(orderService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(productService, logg))
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.Put("/{id}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{id}", controllers.AdminDeleteProduct(productService, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminListUsers(userService, logg))
				r.Post("/", controllers.AdminCreateUser(userService, logg))
				r.Put("/{id}", controllers.AdminUpdateUser(userService, logg))
				r.Delete("/{id}", controllers.AdminDeleteUser(userService, logg))
			})
		})
	})

	return r
}
