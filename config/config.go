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
	Port   string
	JWTKey string

	// Object storage (MinIO / S3 compatible)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StoragePublicURL string // base URL for public document links

	// Transactional email
	SendGridAPIKey  string
	SendFromEmail   string // address on the verified sending domain
	SendFromName    string // fallback sender display name
	VerificationURL string // public verification page, embedded in emails

	// Batch tuning
	BatchChunkSize  int
	MaxEmailRetries int
	BackoffBase     time.Duration
	EmailChunkDelay time.Duration
	ReconcileAfter  time.Duration

	// Learning platform sync (paged REST, API key + subdomain)
	LearnAPIKey    string
	LearnSubdomain string

	FontDir string // TTF files loaded into the font cache at startup
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "certificates"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		SendFromEmail:   getEnv("SEND_FROM_EMAIL", "certificates@certhub.io"),
		SendFromName:    getEnv("SEND_FROM_NAME", "Certification Team"),
		VerificationURL: getEnv("VERIFICATION_URL", "http://localhost:3000/verify"),

		BatchChunkSize:  getEnvInt("BATCH_CHUNK_SIZE", 5),
		MaxEmailRetries: getEnvInt("MAX_EMAIL_RETRIES", 2),
		BackoffBase:     getEnvDuration("EMAIL_BACKOFF_BASE", time.Second),
		EmailChunkDelay: getEnvDuration("EMAIL_CHUNK_DELAY", time.Second),
		ReconcileAfter:  getEnvDuration("RECONCILE_AFTER", time.Hour),

		LearnAPIKey:    getEnv("LEARN_API_KEY", ""),
		LearnSubdomain: getEnv("LEARN_SUBDOMAIN", ""),

		FontDir: getEnv("FONT_DIR", "./fonts"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Email dispatch will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration retrieves an environment variable as a duration (e.g. "2s", "1h")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
