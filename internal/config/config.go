package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Vector    VectorConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Resumes   ResumesConfig
	Match     MatchConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type VectorConfig struct {
	Backend string
}

type LLMConfig struct {
	Provider     string
	Model        string
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float32
	GeminiAPIKey string
	OpenAIAPIKey string
	OpenAIURL    string
}

type EmbeddingConfig struct {
	Provider   string
	Model      string
	Dimensions int
}

type ResumesConfig struct {
	Path        string
	MaxFileSize int64
}

type MatchConfig struct {
	TopK        int
	Concurrency int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("CATALOG_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resumes"),
		},
		Vector: VectorConfig{
			Backend: strings.ToLower(getEnv("VECTOR_BACKEND", VectorBackendQdrant)),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Model:        getEnv("LLM_MODEL", ""),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", "60s"),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 800),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.3),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", getEnv("HUGGINGFACE_API_KEY", "")),
			OpenAIURL:    getEnv("OPENAI_BASE_URL", ""),
		},
		Embedding: EmbeddingConfig{
			Provider:   strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
			Model:      getEnv("EMBEDDING_MODEL", ""),
			Dimensions: getEnvAsInt("EMBEDDING_DIM", 768),
		},
		Resumes: ResumesConfig{
			Path:        getEnv("RESUMES_FOLDER_PATH", "./data/resumes"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Match: MatchConfig{
			TopK:        getEnvAsInt("MATCH_TOP_K", 10),
			Concurrency: getEnvAsInt("MATCH_CONCURRENCY", 1),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// Validate reports the first setting that would make the services unusable.
func (c *Config) Validate() error {
	switch c.Vector.Backend {
	case VectorBackendQdrant, VectorBackendMemory:
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", c.Vector.Backend)
	}

	for name, provider := range map[string]string{
		"LLM_PROVIDER":       c.LLM.Provider,
		"EMBEDDING_PROVIDER": c.Embedding.Provider,
	} {
		if provider != ProviderGemini && provider != ProviderOpenAI {
			return fmt.Errorf("unknown %s %q", name, provider)
		}
	}

	if c.Match.TopK <= 0 {
		return fmt.Errorf("MATCH_TOP_K must be positive, got %d", c.Match.TopK)
	}
	if c.Match.Concurrency <= 0 {
		return fmt.Errorf("MATCH_CONCURRENCY must be positive, got %d", c.Match.Concurrency)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.Embedding.Dimensions)
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
