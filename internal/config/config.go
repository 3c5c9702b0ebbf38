package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	GeminiAPIKey    string
	GeminiFastModel string
	GeminiDeepModel string

	DeepgramAPIKey   string
	DeepgramTTSModel string

	MediaDir string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	AnimatePollSeconds int
	AnimateMaxPolls    int
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - companion runs with offline stub providers")
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "./media"
	}

	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "solace-media"
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:        addr,
		GeminiAPIKey:       geminiKey,
		GeminiFastModel:    os.Getenv("GEMINI_FAST_MODEL"),
		GeminiDeepModel:    os.Getenv("GEMINI_DEEP_MODEL"),
		DeepgramAPIKey:     os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramTTSModel:   os.Getenv("DEEPGRAM_TTS_MODEL"),
		MediaDir:           mediaDir,
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:     bucket,
		AnimatePollSeconds: envInt("ANIMATE_POLL_SECONDS", 5),
		AnimateMaxPolls:    envInt("ANIMATE_MAX_POLLS", 0),
	}
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("Warning: %s=%q is not a valid non-negative integer, using %d", name, v, def)
		return def
	}
	return n
}
