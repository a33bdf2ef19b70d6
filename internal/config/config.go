package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	Port        string `mapstructure:"PORT"`

	SteamAPIKey   string `mapstructure:"STEAM_API_KEY"`
	SteamAPIURL   string `mapstructure:"STEAM_API_URL"`
	SteamStoreURL string `mapstructure:"STEAM_STORE_URL"`

	PSNNpsso     string `mapstructure:"PSN_NPSSO"`
	PSNAuthURL   string `mapstructure:"PSN_AUTH_URL"`
	PSNTrophyURL string `mapstructure:"PSN_TROPHY_URL"`
	PSNSearchURL string `mapstructure:"PSN_SEARCH_URL"`

	// Upper bound on concurrent per-game work during a bulk library sync.
	SyncConcurrency int `mapstructure:"SYNC_CONCURRENCY"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STEAM_API_URL", "https://api.steampowered.com")
	viper.SetDefault("STEAM_STORE_URL", "https://store.steampowered.com")
	viper.SetDefault("PSN_AUTH_URL", "https://ca.account.sony.com/api/authz/v3/oauth")
	viper.SetDefault("PSN_TROPHY_URL", "https://m.np.playstation.com/api/trophy")
	viper.SetDefault("PSN_SEARCH_URL", "https://store.playstation.com/store/api/chihiro/00_09_000/tumbler")
	viper.SetDefault("SYNC_CONCURRENCY", 10)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
