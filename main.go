package main

import (
	"context"
	"time"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/geocode"
	"food-ordering-api/handlers"
	"food-ordering-api/metrics"
	"food-ordering-api/middleware"
	"food-ordering-api/routes"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg.LogLevel, cfg.GinMode)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := config.OpenDatabase(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	geo := geocode.New(cfg.GeocoderURL, cfg.MapboxToken, cfg.GeocoderTimeout)

	users := services.NewUserService(db, issuer)
	if err := users.SeedAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Error("failed to seed admin account")
	}

	h := &handlers.Handler{
		Users:       users,
		Restaurants: services.NewRestaurantService(db, geo),
		Products:    services.NewProductService(db),
		Orders:      services.NewOrderService(db),
		Reviews:     services.NewReviewService(db),
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.WithError(err).Fatal("invalid TRUSTED_PROXIES")
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware(), middleware.CORS(cfg.AllowedOrigins))

	limiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute)
	limiter.StartCleanup(context.Background(), time.Minute, 10*time.Minute)

	routes.SetupRoutes(r, routes.Deps{
		Handler:      h,
		Issuer:       issuer,
		DB:           db,
		LoginLimiter: limiter,
	})

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
