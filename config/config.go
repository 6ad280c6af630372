package config

import (
	"log"

	"github.com/caarlos0/env/v11"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	Dsn           string `env:"DSN"`
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	JwtSecret     string `env:"JWT_SECRET"`
	JwtExpires    string `env:"JWT_EXPIRES"`
	RefreshSecret string `env:"REFRESH_SECRET"`
	RefreshExpiry string `env:"REFRESH_EXPIRY"`

	EmbeddingBaseURL    string `env:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey     string `env:"EMBEDDING_API_KEY"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"256"`

	VideoAIBaseURL string `env:"VIDEO_AI_BASE_URL"`
	VideoAIAPIKey  string `env:"VIDEO_AI_API_KEY"`

	NominatimBaseURL   string `env:"NOMINATIM_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	NominatimUserAgent string `env:"NOMINATIM_USER_AGENT" envDefault:"findlink/1.0"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Printf("[Env]: unable to load .env file %v", loadErr)
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Printf("[Env]: failed to parse environment variables: %v", parseErr)
	}

	return &cfg
}
