package routes

import (
	"food-ordering-api/auth"
	"food-ordering-api/handlers"
	"food-ordering-api/metrics"
	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Handler      *handlers.Handler
	Issuer       *auth.Issuer
	DB           *gorm.DB
	LoginLimiter *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	authed := middleware.AuthRequired(d.Issuer, d.DB)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)
	ownerOnly := middleware.RoleRequired(models.RoleOwner, models.RoleAdmin)

	r.GET("/health", handlers.Health)
	r.GET("/metrics", metrics.Handler())
	r.GET("/state-machine", handlers.GetStateMachineInfo)

	// ── Users ──────────────────────────────────────────────────────
	users := r.Group("/users")
	{
		limited := users.Group("", middleware.RateLimit(d.LoginLimiter))
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)

		me := users.Group("", authed)
		me.GET("/me", h.GetProfile)
		me.GET("/addresses", h.ListAddresses)
		me.POST("/addresses", h.AddAddress)
		me.DELETE("/addresses/:address_id", h.DeleteAddress)
		me.POST("/request-owner", h.RequestOwner)

		admin := users.Group("", authed, adminOnly)
		admin.GET("", h.AdminGetAllUsers)
		admin.GET("/owner-requests", h.AdminOwnerRequests)
		admin.PUT("/:id/role", h.AdminChangeRole)
		admin.PUT("/:id/owner-decision", h.AdminOwnerDecision)
		admin.DELETE("/:id", h.AdminDeleteUser)
	}

	// ── Restaurants & menus ────────────────────────────────────────
	restaurants := r.Group("/restaurants")
	{
		restaurants.GET("", h.ListRestaurants)
		restaurants.GET("/cuisines", h.ListCuisines)
		restaurants.GET("/:id", h.GetRestaurant)
		restaurants.GET("/:id/products", h.GetMenu)

		owner := restaurants.Group("", authed, ownerOnly)
		owner.GET("/mine", h.GetMyRestaurants)
		owner.POST("", h.CreateRestaurant)
		owner.PUT("/:id", h.UpdateRestaurant)
		owner.DELETE("/:id", h.DeleteRestaurant)
		owner.POST("/:id/products/import", h.ImportMenu)
		owner.POST("/products", h.AddMenuItem)
		owner.PUT("/products/:product_id", h.UpdateMenuItem)
		owner.DELETE("/products/:product_id", h.DeleteMenuItem)

		admin := restaurants.Group("", authed, adminOnly)
		admin.GET("/applications", h.ListApplications)
		admin.GET("/applications/history", h.ListApplicationHistory)
		admin.GET("/all", h.ListAllRestaurants)
		admin.PUT("/:id/status", h.SetRestaurantStatus)
	}

	// ── Orders & reviews ───────────────────────────────────────────
	orders := r.Group("/orders")
	{
		orders.GET("/:id/reviews", h.GetRestaurantReviews)

		customer := orders.Group("", authed)
		customer.POST("", h.PlaceOrder)
		customer.GET("/my-orders", h.GetMyOrders)
		customer.GET("/active", h.GetActiveOrder)
		customer.GET("/owner", h.GetRestaurantOrders)
		customer.GET("/reviews/mine", h.GetOwnerReviews)
		customer.POST("/reorder", h.Reorder)
		customer.GET("/:id", h.GetOrderDetail)
		customer.PATCH("/:id/status", h.UpdateOrderStatus)
		customer.POST("/:id/review", h.AddReview)

		orders.GET("/admin", authed, adminOnly, h.AdminGetAllOrders)
	}
}
