package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	analyticscontrollers "github.com/angelmondragon/storefront-backend/api/controllers/analytics"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// rateLimiter is the redis surface the login throttle needs.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the HTTP surface is built from. Redis is
// optional: without it login is not throttled and createOrder is not
// idempotent.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Readiness   []controllers.ReadinessCheck
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	// Location bounds the admin order date filters. Nil means UTC.
	Location *time.Location

	RateLimiter      rateLimiter
	IdempotencyStore pkgredis.IdempotencyStore

	Auth       auth.Service
	Products   products.Service
	Categories categories.Service
	Coupons    coupons.Service
	Discounts  discounts.Service
	Orders     orders.Service
	Analytics  analytics.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigin),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/categories", controllers.ListCatalogTaxonomy(deps.Categories, logg))
		r.Get("/search", controllers.SearchProducts(deps.Products, logg))
		r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
	})

	r.Route("/api/customer", func(r chi.Router) {
		r.With(middleware.Idempotency(deps.IdempotencyStore, middleware.DefaultIdempotencyTTL, logg)).
			Post("/createOrder", controllers.CreateOrder(deps.Orders, logg))
		r.Post("/couponsApply", controllers.ApplyCoupon(deps.Orders, logg))
	})

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/register", controllers.AdminRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).
			Post("/login", controllers.AdminLogin(deps.Auth, cfg, logg))
		r.Post("/logout", controllers.AdminLogout(cfg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/auth/check", controllers.AdminAuthCheck())

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleOperator))
				r.Get("/orders", controllers.AdminListOrders(deps.Orders, loc, logg))
				r.Get("/orders/{id}", controllers.AdminGetOrder(deps.Orders, logg))
				r.Put("/orders/{id}", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

				r.Post("/addProduct", controllers.AdminCreateProduct(deps.Products, cfg.Media, logg))
				r.Put("/product/{id}", controllers.AdminUpdateProduct(deps.Products, cfg.Media, logg))
				r.Delete("/product/{id}", controllers.AdminDeleteProduct(deps.Products, logg))

				r.Post("/addCoupon", controllers.AdminCreateCoupon(deps.Coupons, logg))
				r.Get("/coupons", controllers.AdminListCoupons(deps.Coupons, logg))
				r.Delete("/coupons/{id}", controllers.AdminDeleteCoupon(deps.Coupons, logg))
				r.Put("/coupons/{id}/status", controllers.AdminToggleCoupon(deps.Coupons, logg))

				r.Post("/addDiscount", controllers.AdminCreateDiscount(deps.Discounts, logg))
				r.Get("/discounts", controllers.AdminListDiscounts(deps.Discounts, logg))
				r.Delete("/discounts/{id}", controllers.AdminDeleteDiscount(deps.Discounts, logg))
				r.Patch("/discounts/{id}", controllers.AdminToggleDiscount(deps.Discounts, logg))

				r.Route("/dashboard", func(r chi.Router) {
					r.Get("/summary", analyticscontrollers.Summary(deps.Analytics, logg))
					r.Get("/salesByProduct", analyticscontrollers.SalesByProduct(deps.Analytics, logg))
					r.Get("/salesByCategory", analyticscontrollers.SalesByCategory(deps.Analytics, logg))
					r.Get("/topProducts", analyticscontrollers.TopProducts(deps.Analytics, logg))
					r.Get("/lowStockProducts", analyticscontrollers.LowStockProducts(deps.Analytics, logg))
					r.Get("/couponUsage", analyticscontrollers.CouponUsage(deps.Analytics, logg))
					r.Get("/bestTimeToSell", analyticscontrollers.BestTimeToSell(deps.Analytics, logg))
					r.Get("/monthlySales", analyticscontrollers.MonthlySales(deps.Analytics, logg))
				})

				r.Post("/addCategory", controllers.AdminCreateCatalogItem(deps.Categories, cfg.Media, logg))
				// Static admin paths above take precedence over this catch-all.
				r.Put("/{type}/{id}", controllers.AdminUpdateCatalogItem(deps.Categories, cfg.Media, logg))
				r.Delete("/{type}/{id}", controllers.AdminDeleteCatalogItem(deps.Categories, logg))
			})
		})
	})

	return r
}
