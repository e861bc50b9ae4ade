package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Gemini text-generation service
	GeminiAPIKey string
	GeminiModel  string

	// File uploads
	UploadDir       string
	UploadMaxBytes  int64
	UploadMaxFiles  int
	UploadRetention time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "kharcha"),
		DBPassword: getEnv("DB_PASSWORD", "kharcha"),
		DBName:     getEnv("DB_NAME", "kharcha"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Gemini
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-pro"),

		// Uploads
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxFiles: getEnvInt("UPLOAD_MAX_FILES", 10),
	}

	expDur, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value, falling back to 24h\n")
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "5242880"), 10, 64)
	if err != nil {
		log.Printf("Warning: invalid UPLOAD_MAX_BYTES value, falling back to 5MB\n")
		maxBytes = 5 << 20
	}
	config.UploadMaxBytes = maxBytes

	retention, err := time.ParseDuration(getEnv("UPLOAD_RETENTION", "24h"))
	if err != nil {
		log.Printf("Warning: invalid UPLOAD_RETENTION value, falling back to 24h\n")
		retention = 24 * time.Hour
	}
	config.UploadRetention = retention

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value, falling back to %d\n", key, defaultValue)
	}
	return defaultValue
}
