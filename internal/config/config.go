// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	Port int

	// Detection service
	DetectAPIKey      string
	SpacingModelURL   string
	CountingModelURL  string
	DefaultConfidence int
	DefaultOverlap    int

	// Vision language model for drawing parsing and material checks
	VLMEndpoint string
	VLMAPIKey   string
	VLMModel    string

	// Persistence
	DatabasePath string

	// OCR
	OCRLanguages string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnvAsInt("PORT", 5000),
		DetectAPIKey:      getEnv("DETECT_API_KEY", ""),
		SpacingModelURL:   getEnv("SPACING_MODEL_URL", "https://detect.roboflow.com/rebar-4y6jc-vrqiw/3"),
		CountingModelURL:  getEnv("COUNTING_MODEL_URL", "https://detect.roboflow.com/rebar-9zzhq-zm30m/1"),
		DefaultConfidence: getEnvAsInt("DETECT_CONFIDENCE", 40),
		DefaultOverlap:    getEnvAsInt("DETECT_OVERLAP", 40),
		VLMEndpoint:       getEnv("VLM_ENDPOINT", "https://open.bigmodel.cn/api/paas/v4/chat/completions"),
		VLMAPIKey:         getEnv("VLM_API_KEY", ""),
		VLMModel:          getEnv("VLM_MODEL", "glm-4v-flash"),
		DatabasePath:      getEnv("DATABASE_PATH", "rebar-inspect.db"),
		OCRLanguages:      getEnv("OCR_LANGUAGES", "chi_sim+eng"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
