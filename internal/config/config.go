// Package config collects the server's environment-driven settings into a
// single snapshot read once at startup.
package config

import (
	"os"
	"strconv"
)

// Defaults for the Google endpoints. Overridable via environment so tests and
// staging deployments can point the relay at stub servers.
const (
	DefaultTokenURL      = "https://oauth2.googleapis.com/token"
	DefaultSheetsBaseURL = "https://sheets.googleapis.com/v4"
	DefaultScope         = "https://www.googleapis.com/auth/spreadsheets"
	DefaultSecretName    = "GOOGLE_SERVICE_ACCOUNT_KEY"
	DefaultSheetName     = "Data"
)

// Config holds everything the server needs to run.
type Config struct {
	Port string

	// Target spreadsheet. SpreadsheetID has no default; main refuses to
	// start without it.
	SpreadsheetID string
	SheetName     string

	// Google endpoints and OAuth scope.
	TokenURL      string
	SheetsBaseURL string
	Scope         string

	// Name under which the service-account key blob is looked up in the
	// secret store.
	SecretName string

	// Optional PostgreSQL-backed secret store. When DatabaseURL is empty the
	// relay reads secrets from the environment.
	DatabaseURL   string
	EncryptionKey string

	// Requests per second allowed per client IP.
	RateLimit int
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	cfg := Config{
		Port:          getenv("PORT", "8090"),
		SpreadsheetID: os.Getenv("SPREADSHEET_ID"),
		SheetName:     getenv("SHEET_NAME", DefaultSheetName),
		TokenURL:      getenv("GOOGLE_TOKEN_URL", DefaultTokenURL),
		SheetsBaseURL: getenv("GOOGLE_SHEETS_BASE_URL", DefaultSheetsBaseURL),
		Scope:         getenv("GOOGLE_SHEETS_SCOPE", DefaultScope),
		SecretName:    getenv("SERVICE_ACCOUNT_SECRET_NAME", DefaultSecretName),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		EncryptionKey: os.Getenv("CREDENTIAL_ENCRYPTION_KEY"),
		RateLimit:     10,
	}

	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit = n
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
