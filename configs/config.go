package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string // "production" hides diagnostic fields in 500 bodies
	MongoURI      string
	MongoDB       string
	SessionSecret string
	UploadDir     string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

// Load reads configuration from the environment, honouring a local
// .env file when present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}

	return Config{
		Port:          getEnvOrDefault("PORT", "3000"),
		Env:           getEnvOrDefault("APP_ENV", "development"),
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnvOrDefault("MONGODB_DB", "storefront"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "change-me"),
		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "public/uploads"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
