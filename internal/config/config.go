package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	API        APIConfig
	Listing    ListingConfig
	Onboarding OnboardingConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type ListingConfig struct {
	PageSize        int
	SearchDebounce  time.Duration
	ScrollThreshold int // pixels from the bottom that trigger the next page
}

type OnboardingConfig struct {
	CacheDir string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("API_BASE_URL", "http://localhost:8000/api/v1")
	viper.SetDefault("API_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LISTING_PAGE_SIZE", 12)
	viper.SetDefault("LISTING_SEARCH_DEBOUNCE_MS", 500)
	viper.SetDefault("LISTING_SCROLL_THRESHOLD_PX", 500)
	viper.SetDefault("ONBOARDING_CACHE_DIR", ".ekaro")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Env: viper.GetString("APP_ENV"),
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("API_TIMEOUT_SECONDS")) * time.Second,
			Token:   viper.GetString("API_TOKEN"),
		},
		Listing: ListingConfig{
			PageSize:        viper.GetInt("LISTING_PAGE_SIZE"),
			SearchDebounce:  time.Duration(viper.GetInt("LISTING_SEARCH_DEBOUNCE_MS")) * time.Millisecond,
			ScrollThreshold: viper.GetInt("LISTING_SCROLL_THRESHOLD_PX"),
		},
		Onboarding: OnboardingConfig{
			CacheDir: viper.GetString("ONBOARDING_CACHE_DIR"),
		},
	}
}
