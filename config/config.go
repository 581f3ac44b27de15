package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Stripe     StripeConfig
	Booking    BookingConfig
	Sweeper    SweeperConfig
	Cloudinary CloudinaryConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type StripeConfig struct {
	SecretKey string
}

type BookingConfig struct {
	// Processing fee charged on top of the bay cost: percent of cost + fixed.
	ProcessingFeePercent float64
	ProcessingFeePence   int64
	// Platform cut withheld from the owner's payout, percent of cost.
	PlatformFeePercent float64
	// Cancelling this long before the start time qualifies for an automatic refund.
	AutoRefundWindow time.Duration
}

type SweeperConfig struct {
	SweepInterval time.Duration
	PurgeInterval time.Duration
	// Tombstoned users and car parks older than this are hard-deleted.
	PurgeRetention time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "parkbay:parkbay@tcp(localhost:3306)/parkbay?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "parkbay"),
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		},
		Booking: BookingConfig{
			ProcessingFeePercent: getFloat("PROCESSING_FEE_PERCENT", 1.5),
			ProcessingFeePence:   int64(getInt("PROCESSING_FEE_PENCE", 20)),
			PlatformFeePercent:   getFloat("PLATFORM_FEE_PERCENT", 10),
			AutoRefundWindow:     getDuration("AUTO_REFUND_WINDOW", 24*time.Hour),
		},
		Sweeper: SweeperConfig{
			SweepInterval:  getDuration("SWEEP_INTERVAL", time.Minute),
			PurgeInterval:  getDuration("PURGE_INTERVAL", 24*time.Hour),
			PurgeRetention: getDuration("PURGE_RETENTION", 30*24*time.Hour),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@parkbay.local"),
			Password: getEnv("ADMIN_PASSWORD", "change-me-admin"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
