package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Push    PushConfig
	Wallet  WalletConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	DBPath      string
}

type BackendConfig struct {
	BaseURL        string
	AuthToken      string
	RequestTimeout time.Duration
}

type PushConfig struct {
	PollInterval time.Duration
	// Navigation is deferred so the navigation stack exists before the
	// navigate call fires. Cold start has more competing init work, so its
	// delay is longer.
	ColdNavigateDelay time.Duration
	WarmNavigateDelay time.Duration
	DedupWindow       time.Duration
}

type WalletConfig struct {
	ResyncInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/companion.log"),
			DBPath:      getEnv("DB_PATH", "companion.db"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", "http://localhost:3000"),
			AuthToken:      getEnv("BACKEND_AUTH_TOKEN", ""),
			RequestTimeout: getEnvAsDuration("BACKEND_REQUEST_TIMEOUT", 20*time.Second),
		},
		Push: PushConfig{
			PollInterval:      getEnvAsDuration("PUSH_POLL_INTERVAL", 60*time.Second),
			ColdNavigateDelay: getEnvAsDuration("PUSH_COLD_NAVIGATE_DELAY", 1500*time.Millisecond),
			WarmNavigateDelay: getEnvAsDuration("PUSH_WARM_NAVIGATE_DELAY", 300*time.Millisecond),
			DedupWindow:       getEnvAsDuration("PUSH_DEDUP_WINDOW", 10*time.Minute),
		},
		Wallet: WalletConfig{
			ResyncInterval: getEnvAsDuration("WALLET_RESYNC_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
