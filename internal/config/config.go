package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Metrics MetricsConfig

	Credit CreditConfig
}

type MetricsConfig struct {
	Enabled  bool
	Exporter string
	Endpoint string
}

// CreditConfig carries the tunable constants of the credit engine. The
// tiering threshold and the aging-score threshold are deliberately separate
// knobs even though both consume the overdue ratio.
type CreditConfig struct {
	HighRiskRatio      float64
	MediumRiskRatio    float64
	AgingScoreCapRatio float64
	MaxIncreasePct     float64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "salesops"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		LogLevel: getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "salesops"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Metrics: MetricsConfig{
			Enabled:  getenvBool("METRICS_ENABLED", false),
			Exporter: strings.ToLower(getenv("METRICS_EXPORTER", "grpc")),
			Endpoint: strings.TrimSpace(getenv("METRICS_ENDPOINT", "localhost:4317")),
		},

		Credit: CreditConfig{
			HighRiskRatio:      getenvFloat("CREDIT_HIGH_RISK_RATIO", 0.30),
			MediumRiskRatio:    getenvFloat("CREDIT_MEDIUM_RISK_RATIO", 0.10),
			AgingScoreCapRatio: getenvFloat("CREDIT_AGING_SCORE_CAP_RATIO", 50),
			MaxIncreasePct:     getenvFloat("CREDIT_MAX_INCREASE_PCT", 10),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
