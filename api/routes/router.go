package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greencartlabs/greencart-backend/api/controllers"
	"github.com/greencartlabs/greencart-backend/api/middleware"
	authsvc "github.com/greencartlabs/greencart-backend/internal/auth"
	cartsvc "github.com/greencartlabs/greencart-backend/internal/cart"
	category "github.com/greencartlabs/greencart-backend/internal/categories"
	"github.com/greencartlabs/greencart-backend/internal/orders"
	products "github.com/greencartlabs/greencart-backend/internal/products"
	"github.com/greencartlabs/greencart-backend/internal/users"
	"github.com/greencartlabs/greencart-backend/pkg/config"
	"github.com/greencartlabs/greencart-backend/pkg/logger"
	"github.com/greencartlabs/greencart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	authService authsvc.Service,
	userService users.Service,
	productService products.Service,
	reviewService products.ReviewService,
	categoryService category.Service,
	cartService cartsvc.Service,
	ordersService orders.Service,
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbP,
			"redis":    redisClient,
		}))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{productId}", controllers.ProductDetail(productService, logg))

		r.Route("/{productId}/reviews", func(r chi.Router) {
			r.Get("/", controllers.ReviewList(reviewService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Post("/", controllers.ReviewCreate(reviewService, logg))
				r.Put("/{reviewId}", controllers.ReviewUpdate(reviewService, logg))
				r.Delete("/{reviewId}", controllers.ReviewDelete(reviewService, logg))
			})
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(categoryService, logg))
		r.Get("/tree", controllers.CategoryTree(categoryService, logg))
		r.Get("/{categoryId}", controllers.CategoryDetail(categoryService, logg))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.UserProfile(userService, logg))
		r.Put("/me", controllers.UserProfileUpdate(userService, logg))
		r.Put("/me/password", controllers.UserChangePassword(userService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.GuestToken(logg))

		r.Get("/", controllers.CartFetch(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, logg))
		r.Put("/items/{itemId}", controllers.CartUpdateItem(cartService, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
		r.Post("/coupon", controllers.CartApplyCoupon(cartService, logg))
		r.Delete("/coupon", controllers.CartRemoveCoupon(cartService, logg))
		r.Put("/shipping-address", controllers.CartSetShippingAddress(cartService, logg))
		r.Put("/shipping-method", controllers.CartSetShippingMethod(cartService, logg))
		r.Put("/payment-method", controllers.CartSetPaymentMethod(cartService, logg))
		r.Put("/notes", controllers.CartSetNotes(cartService, logg))

		r.With(middleware.Auth(cfg.JWT, logg)).Post("/merge", controllers.CartMerge(cartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/", controllers.OrderCreate(ordersService, logg))
		r.Get("/", controllers.OrderList(ordersService, logg))
		r.Get("/stats", controllers.OrderStats(ordersService, logg))
		r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		r.Post("/{orderId}/cancel", controllers.OrderCancel(ordersService, logg))
		r.Get("/{orderId}/tracking", controllers.OrderTracking(ordersService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(categoryService, logg))
			r.Put("/{categoryId}", controllers.AdminCategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(categoryService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Get("/stats", controllers.AdminOrderStats(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, logg))
			r.Post("/{orderId}/tracking", controllers.AdminOrderAddTracking(ordersService, logg))
			r.Post("/{orderId}/deliver", controllers.AdminOrderMarkDelivered(ordersService, logg))
			r.Post("/{orderId}/refund", controllers.AdminOrderRefund(ordersService, logg))
		})
	})

	return r
}
