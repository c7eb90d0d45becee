package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Envs holds all environment configuration. A .env file is honored when
// present so local runs don't need to export everything by hand.
var Envs = initConfig()

type envs struct {
	AllowedOrigins []string
	PostgresURL    string
	JWTKey         string
	Port           string
	GinMode        string
	Debug          bool
}

func initConfig() envs {
	_ = godotenv.Load()

	return envs{
		AllowedOrigins: splitNonEmpty(os.Getenv("ALLOWED_ORIGINS")),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		JWTKey:         os.Getenv("JWT_KEY"),
		Port:           getEnv("PORT", "5000"),
		GinMode:        os.Getenv("GIN_MODE"),
		Debug:          os.Getenv("DEBUG") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
