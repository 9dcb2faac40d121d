package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"order-lookup-service/internal/domain"
)

// Ledger backends.
const (
	LedgerDriverCSV      = "csv"
	LedgerDriverSqlite   = "sqlite"
	LedgerDriverPostgres = "postgres"
)

// Config holds the runtime settings of the lookup server.
type Config struct {
	CatalogPath   string
	CatalogSheet  string
	DisplayFields []string

	LedgerDriver string
	LedgerPath   string
	SqlitePath   string
	DatabaseURL  string

	MarkedBy string
	Port     string
	LogLevel string
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		CatalogPath:   Get("CATALOG_PATH", ""),
		CatalogSheet:  Get("CATALOG_SHEET", "SALIMA"),
		DisplayFields: SplitList(Get("DISPLAY_FIELDS", "")),
		LedgerDriver:  Get("LEDGER_DRIVER", LedgerDriverCSV),
		LedgerPath:    Get("LEDGER_PATH", "data/collected_salima.csv"),
		SqlitePath:    Get("SQLITE_PATH", "data/ledger.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MarkedBy:      Get("MARKED_BY", domain.DefaultMarkedBy),
		Port:          Get("PORT", "8080"),
		LogLevel:      Get("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings and fills defaults left empty.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CatalogPath) == "" {
		return errors.New("config: CATALOG_PATH is required")
	}
	if len(c.DisplayFields) == 0 {
		c.DisplayFields = append([]string(nil), domain.DefaultDisplayFields...)
	}
	if strings.TrimSpace(c.MarkedBy) == "" {
		c.MarkedBy = domain.DefaultMarkedBy
	}

	c.LedgerDriver = strings.ToLower(strings.TrimSpace(c.LedgerDriver))
	switch c.LedgerDriver {
	case LedgerDriverCSV:
		if strings.TrimSpace(c.LedgerPath) == "" {
			return errors.New("config: LEDGER_PATH is required for the csv ledger")
		}
	case LedgerDriverSqlite:
		if strings.TrimSpace(c.SqlitePath) == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite ledger")
		}
	case LedgerDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for the postgres ledger")
		}
	default:
		return fmt.Errorf("config: unknown LEDGER_DRIVER %q", c.LedgerDriver)
	}

	return nil
}

// SplitList splits a comma-separated list, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
