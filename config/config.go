package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings, read once at startup.
type Config struct {
	Port string

	// Chroma server and the two per-side collections.
	ChromaURL      string
	RedCollection  string
	BlueCollection string

	// OpenAI-compatible chat-completion endpoint used for the
	// comparison answers.
	TextGenBaseURL string
	TextGenAPIKey  string

	// Gemini key used by the scraper's summarizer.
	GeminiAPIKey string

	// Ordered image-generation credentials; first listed is tried
	// first when a call fails.
	GlifEndpoint string
	GlifAPIKeys  []string
}

const (
	defaultPort           = "8080"
	defaultChromaURL      = "http://localhost:8000"
	defaultTextGenBaseURL = "https://text.octoai.run/v1"
	defaultGlifEndpoint   = "https://simple-api.glif.app"
)

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Port:           getenvDefault("PORT", defaultPort),
		ChromaURL:      getenvDefault("CHROMA_URL", defaultChromaURL),
		RedCollection:  getenvDefault("RED_COLLECTION", "Red"),
		BlueCollection: getenvDefault("BLUE_COLLECTION", "Blue"),
		TextGenBaseURL: getenvDefault("TEXTGEN_BASE_URL", defaultTextGenBaseURL),
		TextGenAPIKey:  os.Getenv("OCTO_API"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GlifEndpoint:   getenvDefault("GLIF_ENDPOINT", defaultGlifEndpoint),
	}

	// The keys are numbered so that the rotation order is explicit.
	for _, name := range []string{"GLIF_API_KEY_1", "GLIF_API_KEY_2", "GLIF_API_KEY_3"} {
		if key := os.Getenv(name); key != "" {
			cfg.GlifAPIKeys = append(cfg.GlifAPIKeys, key)
		}
	}

	return cfg, nil
}

// RequireTextGen validates the settings the query server depends on.
func (c *Config) RequireTextGen() error {
	if c.TextGenAPIKey == "" {
		return fmt.Errorf("OCTO_API environment variable not set")
	}
	return nil
}

// RequireGemini validates the settings the scraper depends on.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

func getenvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
