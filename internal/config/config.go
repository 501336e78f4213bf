package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	// File uploads
	UploadDir      string
	MaxUploadMB    int
	AllowedFormats []string

	// AI / Gemini
	GoogleAIAPIKey string
	GeminiModel    string
	EmbeddingModel string
	EmbeddingDim   int

	// Vector index backend: "memory" or "pgvector"
	VectorBackend string

	// Vector collections
	ResumesCollection string
	JobsCollection    string

	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 10),
		AllowedFormats:    []string{".pdf", ".docx", ".txt"},
		GoogleAIAPIKey:    os.Getenv("GOOGLE_AI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingModel:    getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
		EmbeddingDim:      getEnvInt("EMBEDDING_DIM", 3072),
		VectorBackend:     getEnv("VECTOR_BACKEND", "pgvector"),
		ResumesCollection: getEnv("RESUMES_COLLECTION", "resumes"),
		JobsCollection:    getEnv("JOBS_COLLECTION", "jobs"),
		Debug:             os.Getenv("DEBUG") == "true",
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AllowsExtension reports whether ext (lowercase, with dot) may be uploaded.
func (c *Config) AllowsExtension(ext string) bool {
	for _, allowed := range c.AllowedFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
