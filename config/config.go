package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	// JWTSecret signs access tokens
	JWTSecret      string
	AccessTokenTTL time.Duration

	AdminEmail    string
	AdminPassword string

	MapboxToken     string
	GeocoderURL     string
	GeocoderTimeout time.Duration

	AllowedOrigins     []string
	TrustedProxies     []string // may set X-Forwarded-For; empty trusts none
	LogLevel           string
	LoginRatePerMinute int
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBDSN:              getEnv("DB_DSN", "foodapp.db"),
		JWTSecret:          getEnv("JWT_SECRET", "foodapp_super_secret_2024"),
		AccessTokenTTL:     time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@foodapp.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "Admin123!"),
		MapboxToken:        getEnv("MAPBOX_TOKEN", ""),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
		GeocoderTimeout:    getEnvDuration("GEOCODER_TIMEOUT", 5*time.Second),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LoginRatePerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 20),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using %d", v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
