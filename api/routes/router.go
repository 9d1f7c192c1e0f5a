package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aymanezz/bazarly-backend/api/controllers"
	"github.com/aymanezz/bazarly-backend/api/middleware"
	"github.com/aymanezz/bazarly-backend/internal/auth"
	"github.com/aymanezz/bazarly-backend/internal/products"
	"github.com/aymanezz/bazarly-backend/internal/requests"
	"github.com/aymanezz/bazarly-backend/internal/stores"
	"github.com/aymanezz/bazarly-backend/pkg/auth/session"
	"github.com/aymanezz/bazarly-backend/pkg/config"
	"github.com/aymanezz/bazarly-backend/pkg/db"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	storeService stores.Service,
	productService products.Service,
	requestService requests.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// A typed nil *redis.Client would slip past the interface nil checks
	// inside the middleware, so unwrap it here once.
	var cache interface{ Ping(context.Context) error }
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		cache = redisClient
		idemStore = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cache, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	// Public catalog. Only approved listings and storefronts show here.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.BrowseProducts(productService, logg))
		r.Get("/{id}", controllers.GetProduct(productService, logg))
	})
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", controllers.ListStores(storeService, logg))
		r.Get("/{id}", controllers.GetStore(storeService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/api/v1/requests", controllers.SubmitRequest(requestService, logg))
		r.Get("/api/v1/requests", controllers.ListOwnRequests(requestService, logg))
		r.Get("/api/v1/requests/{id}", controllers.GetOwnRequest(requestService, logg))

		r.Route("/api/v1/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleSeller), logg))

			r.Post("/store", controllers.SellerCreateStore(storeService, logg))
			r.Get("/store", controllers.SellerGetOwnStore(storeService, logg))
			r.Patch("/store/{id}", controllers.SellerUpdateStore(storeService, logg))

			r.Post("/products", controllers.SellerCreateProduct(productService, logg))
			r.Get("/products", controllers.SellerListProducts(productService, logg))
			r.Get("/products/{id}", controllers.SellerGetProduct(productService, logg))
			r.Patch("/products/{id}", controllers.SellerUpdateProduct(productService, logg))
			r.Delete("/products/{id}", controllers.SellerDeleteProduct(productService, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/auth/login", controllers.AdminAuthLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Get("/requests", controllers.AdminListRequests(requestService, logg))
			r.Get("/requests/{id}", controllers.AdminGetRequest(requestService, logg))
			r.Put("/requests/{id}/status", controllers.AdminTransitionRequest(requestService, logg))

			r.Get("/products", controllers.AdminListProducts(productService, logg))
			r.Get("/products/{id}", controllers.AdminGetProduct(productService, logg))
			r.Put("/products/{id}/approve", controllers.AdminApproveProduct(requestService, logg))
			r.Put("/products/{id}/reject", controllers.AdminRejectProduct(requestService, logg))
		})
	})

	return r
}
