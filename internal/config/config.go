package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Paths    PathsConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// PathsConfig holds every artifact location the pipeline stages read or
// write. Stages receive these injected; nothing resolves paths on its own.
type PathsConfig struct {
	DataDir             string
	ProcessedFile       string
	ForecastDir         string
	CombinedForecast    string
	RiskScoresFile      string
	RecommendationsFile string
	ModelsDir           string
	ExpiryModelFile     string
	ActionModelFile     string
	DiscountModelFile   string
}

type ForecastConfig struct {
	HorizonDays     int
	MinObservations int
	UseExisting     bool
	Workers         int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "expirywise")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("APP_DATA_DIR", "./data")
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_MIN_OBSERVATIONS", 5)
		viper.SetDefault("FORECAST_USE_EXISTING", true)
		viper.SetDefault("FORECAST_WORKERS", 4)

		viper.AutomaticEnv()

		dataDir := viper.GetString("APP_DATA_DIR")
		ensureDir(dataDir)

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Paths: DefaultPaths(dataDir),
			Forecast: ForecastConfig{
				HorizonDays:     viper.GetInt("FORECAST_HORIZON_DAYS"),
				MinObservations: viper.GetInt("FORECAST_MIN_OBSERVATIONS"),
				UseExisting:     viper.GetBool("FORECAST_USE_EXISTING"),
				Workers:         viper.GetInt("FORECAST_WORKERS"),
			},
		}
	})

	return instance
}

// DefaultPaths lays out the artifact tree under dataDir. Tests build their
// configs through this against a temp dir instead of going through viper.
func DefaultPaths(dataDir string) PathsConfig {
	return PathsConfig{
		DataDir:             dataDir,
		ProcessedFile:       filepath.Join(dataDir, "processed", "processed_data.csv"),
		ForecastDir:         filepath.Join(dataDir, "forecasts", "product_level"),
		CombinedForecast:    filepath.Join(dataDir, "forecasts", "product_level", "all_products_forecast.csv"),
		RiskScoresFile:      filepath.Join(dataDir, "external", "risk_scores.csv"),
		RecommendationsFile: filepath.Join(dataDir, "external", "recommendations.csv"),
		ModelsDir:           filepath.Join(dataDir, "models"),
		ExpiryModelFile:     filepath.Join(dataDir, "models", "expiry_model.json"),
		ActionModelFile:     filepath.Join(dataDir, "models", "action_classifier.json"),
		DiscountModelFile:   filepath.Join(dataDir, "models", "discount_regressor.json"),
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
