package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port            int
	APIKey          string
	CORSAllowOrigin string

	// Secrets (from .env)
	GeminiAPIKey string

	// Database (optional — persistence is disabled when unset)
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string

	// Upstream feeds
	SpotAPIBaseURL  string
	GoldHistoryURL  string
	RatioHistoryURL string

	// Live spot cache
	SpotCacheTTL time.Duration
	SpotTimeout  time.Duration

	// Historical tables
	HistoryRefreshHours int
	NearestWindowDays   int

	// Resolution defaults
	DefaultGoldSilverRatio float64
	SeedGoldSpot           float64
	SeedSilverSpot         float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		Port:            envInt("PORT", 3000),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Secrets
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),

		// Database
		DatabaseURL: envStr("DATABASE_URL", ""),
		DBHost:      envStr("DB_HOST", ""),
		DBPort:      envInt("DB_PORT", 5432),
		DBName:      envStr("DB_NAME", "stack_tracker"),
		DBUser:      envStr("DB_USER", ""),
		DBPassword:  envStr("DB_PASSWORD", ""),

		// Upstream feeds
		SpotAPIBaseURL:  envStr("SPOT_API_BASE_URL", "https://api.gold-api.com"),
		GoldHistoryURL:  envStr("GOLD_HISTORY_URL", "https://raw.githubusercontent.com/datasets/gold-prices/main/data/daily.json"),
		RatioHistoryURL: envStr("RATIO_HISTORY_URL", "https://raw.githubusercontent.com/datasets/gold-prices/main/data/gold-silver-ratio.csv"),

		// Live spot cache
		SpotCacheTTL: time.Duration(envInt("SPOT_CACHE_TTL_SECONDS", 300)) * time.Second,
		SpotTimeout:  time.Duration(envInt("SPOT_TIMEOUT_SECONDS", 5)) * time.Second,

		// Historical tables
		HistoryRefreshHours: envInt("HISTORY_REFRESH_HOURS", 24),
		NearestWindowDays:   envInt("NEAREST_WINDOW_DAYS", 30),

		// Resolution defaults
		DefaultGoldSilverRatio: envFloat("DEFAULT_GOLD_SILVER_RATIO", 80),
		SeedGoldSpot:           envFloat("SEED_GOLD_SPOT", 2650),
		SeedSilverSpot:         envFloat("SEED_SILVER_SPOT", 30.5),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	if c.DefaultGoldSilverRatio <= 0 {
		errs = append(errs, "DEFAULT_GOLD_SILVER_RATIO must be positive")
	}
	if c.SeedGoldSpot <= 0 || c.SeedSilverSpot <= 0 {
		errs = append(errs, "SEED_GOLD_SPOT and SEED_SILVER_SPOT must be positive")
	}
	if c.NearestWindowDays <= 0 {
		errs = append(errs, "NEAREST_WINDOW_DAYS must be positive")
	}

	if c.GeminiAPIKey == "" {
		fmt.Println("[WARN] GEMINI_API_KEY not set — receipt analysis endpoint disabled")
	}
	if !c.DatabaseConfigured() {
		fmt.Println("[WARN] No database configured — calibration records kept in memory only")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// DatabaseConfigured reports whether enough settings exist to attempt a
// Postgres connection.
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" || (c.DBHost != "" && c.DBUser != "")
}

func (c *Config) Print() {
	fmt.Println("=== Stack Tracker Backend Configuration ===")
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Printf("Spot API: %s\n", c.SpotAPIBaseURL)
	fmt.Printf("Spot cache TTL: %s (fetch timeout %s)\n", c.SpotCacheTTL, c.SpotTimeout)
	fmt.Println("-------------------------------------------")
	fmt.Println("Historical data:")
	fmt.Printf("  Refresh: every %d hours\n", c.HistoryRefreshHours)
	fmt.Printf("  Nearest-date window: %d days\n", c.NearestWindowDays)
	fmt.Printf("  Default gold/silver ratio: %.0f\n", c.DefaultGoldSilverRatio)
	fmt.Println("-------------------------------------------")
	fmt.Printf("Database: %s\n", boolLabel(c.DatabaseConfigured(), "configured", "not set (in-memory fallback)"))
	fmt.Printf("Vision API: %s\n", boolLabel(c.GeminiAPIKey != "", "configured", "not set"))
	fmt.Printf("API auth: %s\n", boolLabel(c.APIKey != "", "enabled", "disabled"))
	fmt.Println("===========================================")
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
