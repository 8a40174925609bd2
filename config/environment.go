package config

import (
	"os"
	"strconv"
)

// Environment collects every setting the process reads, loaded once at
// startup and passed to the components that need it.
type Environment struct {
	Port           string
	DatabaseURL    string // postgres DSN; empty selects sqlite
	SQLitePath     string
	JWTSecret      string
	WaniKaniToken  string
	WaniKaniAPIURL string
	Placement      string
	UserLevel      int
	AllowedOrigins []string
}

func Load() Environment {
	env := Environment{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DB_URL"),
		SQLitePath:     getenv("WICS_DB_PATH", "wics.db"),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		WaniKaniToken:  os.Getenv("WANIKANI_API_TOKEN"),
		WaniKaniAPIURL: os.Getenv("WANIKANI_API_URL"),
		Placement:      os.Getenv("PLACEMENT"),
	}

	if level, err := strconv.Atoi(os.Getenv("USER_LEVEL")); err == nil && level > 0 {
		env.UserLevel = level
	}

	// The extension's content script runs on the host site's origin.
	env.AllowedOrigins = []string{"https://www.wanikani.com", "https://preview.wanikani.com"}
	if extra := os.Getenv("ALLOWED_ORIGIN"); extra != "" {
		env.AllowedOrigins = append(env.AllowedOrigins, extra)
	}

	return env
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
