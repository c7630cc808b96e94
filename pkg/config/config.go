package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Extractor ExtractorConfig
	Watcher   WatcherConfig
	Chat      ChatConfig
	Gemini    GeminiConfig
	GigaChat  GigaChatConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
	WebDir       string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type StoreConfig struct {
	Backend  string
	URL      string
	APIToken string
	Table    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type ExtractorConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type WatcherConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

type ChatConfig struct {
	Backend    string
	WebhookURL string
	Timeout    time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found, plain environment variables still apply
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	bodyLimitMB, _ := strconv.Atoi(getEnv("SERVER_BODY_LIMIT_MB", "16"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "30"))
	storeTimeout, _ := strconv.Atoi(getEnv("STORE_TIMEOUT", "10"))
	cacheTTL, _ := strconv.Atoi(getEnv("FETCH_CACHE_TTL", "60"))
	extractorTimeout, _ := strconv.Atoi(getEnv("EXTRACTOR_TIMEOUT", "30"))
	watchAttempts, _ := strconv.Atoi(getEnv("WATCH_MAX_ATTEMPTS", "10"))
	watchInterval, _ := strconv.Atoi(getEnv("WATCH_INTERVAL", "5"))
	chatTimeout, _ := strconv.Atoi(getEnv("CHAT_TIMEOUT", "30"))
	dbMaxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "4"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimitMB:  bodyLimitMB,
			WebDir:       getEnv("WEB_DIR", "./web"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "finagent-session-secret-change-in-production"),
			TTL:    time.Duration(sessionTTL) * time.Minute,
		},
		Store: StoreConfig{
			Backend:  getEnv("STORE_BACKEND", "http"),
			URL:      getEnv("STORE_URL", ""),
			APIToken: getEnv("STORE_API_TOKEN", ""),
			Table:    getEnv("STORE_TABLE", "transactions"),
			Timeout:  time.Duration(storeTimeout) * time.Second,
			CacheTTL: time.Duration(cacheTTL) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finagent"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(dbMaxConns),
		},
		Extractor: ExtractorConfig{
			WebhookURL: getEnv("EXTRACTOR_WEBHOOK_URL", ""),
			Timeout:    time.Duration(extractorTimeout) * time.Second,
		},
		Watcher: WatcherConfig{
			MaxAttempts: watchAttempts,
			Interval:    time.Duration(watchInterval) * time.Second,
		},
		Chat: ChatConfig{
			Backend:    getEnv("CHAT_BACKEND", "gemini"),
			WebhookURL: getEnv("CHAT_WEBHOOK_URL", ""),
			Timeout:    time.Duration(chatTimeout) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
