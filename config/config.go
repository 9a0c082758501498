package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	GinMode       string        `envconfig:"GIN_MODE" default:"debug"`
	MongoURI      string        `envconfig:"MONGODB_URI" required:"true"`
	MongoDatabase string        `envconfig:"MONGODB_DATABASE" default:"linkup"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173"`

	// Web push is optional; leaving the keys blank disables notifications.
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	PushSubscriber  string `envconfig:"PUSH_SUBSCRIBER" default:"admin@linkup.local"`
}

// Load reads a .env file if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
