package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"order-lookup-service/internal/adapters/ledger"
	"order-lookup-service/internal/config"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/db"
	"order-lookup-service/internal/platform/obs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// ledgertool prepares a SQL-backed ledger and moves records between it and
// the CSV ledger file.
func main() {
	envErr := godotenv.Load()

	fs := flag.NewFlagSet("ledgertool", flag.ExitOnError)
	driver := fs.String("driver", config.Get("LEDGER_DRIVER", config.LedgerDriverSqlite), "sqlite or postgres")
	sqlitePath := fs.String("sqlite", config.Get("SQLITE_PATH", "data/ledger.db"), "SQLite database file")
	importPath := fs.String("import", "", "CSV ledger to import into the database")
	exportPath := fs.String("export", "", "CSV file to write the database ledger to")
	logLevel := fs.String("log-level", config.Get("LOG_LEVEL", "info"), "log level")
	_ = fs.Parse(os.Args[1:])

	logger, err := obs.NewLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	conn, err := openDB(*driver, *sqlitePath)
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}
	defer conn.Close()

	store := newStore(*driver, conn, logger)
	if err := run(context.Background(), conn, store, *importPath, *exportPath, logger); err != nil {
		logger.Fatal("ledgertool failed", zap.Error(err))
	}
}

func openDB(driver, sqlitePath string) (*sql.DB, error) {
	switch strings.ToLower(driver) {
	case config.LedgerDriverSqlite:
		return db.OpenSqlite(sqlitePath)
	case config.LedgerDriverPostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
		return db.Open(databaseURL)
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func newStore(driver string, conn *sql.DB, logger *zap.Logger) *ledger.SQLLedgerStore {
	if strings.ToLower(driver) == config.LedgerDriverPostgres {
		return ledger.NewPostgresLedgerStore(conn, logger)
	}
	return ledger.NewSqliteLedgerStore(conn, logger)
}

func run(ctx context.Context, conn *sql.DB, store *ledger.SQLLedgerStore, importPath, exportPath string, logger *zap.Logger) error {
	logger.Info("initializing ledger schema")
	if err := ledger.InitSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	if importPath != "" {
		n, err := importCSV(ctx, store, importPath)
		if err != nil {
			return err
		}
		logger.Info("import complete", zap.String("path", importPath), zap.Int("records", n))
	}

	if exportPath != "" {
		n, err := exportCSV(ctx, store, exportPath, logger)
		if err != nil {
			return err
		}
		logger.Info("export complete", zap.String("path", exportPath), zap.Int("records", n))
	}

	return nil
}

// importCSV merges the CSV ledger into the database. Orders already in the
// database keep their existing record. The source file is never modified;
// a malformed file is an error.
func importCSV(ctx context.Context, store *ledger.SQLLedgerStore, path string) (int, error) {
	src, err := ledger.ReadCSV(path)
	if err != nil {
		return 0, fmt.Errorf("import ledger: %w", err)
	}

	current, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("import ledger: %w", err)
	}

	merged := domain.NewLedger(current)
	added := 0
	for _, r := range src {
		if merged.Append(r) {
			added++
		}
	}

	if added == 0 {
		return 0, nil
	}
	if err := store.Save(ctx, merged); err != nil {
		return 0, fmt.Errorf("import ledger: %w", err)
	}
	return added, nil
}

func exportCSV(ctx context.Context, store *ledger.SQLLedgerStore, path string, logger *zap.Logger) (int, error) {
	records, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("export ledger: %w", err)
	}

	if err := ledger.NewCSVLedgerStore(path, logger).Save(ctx, domain.NewLedger(records)); err != nil {
		return 0, fmt.Errorf("export ledger: %w", err)
	}
	return len(records), nil
}
