package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"order-lookup-service/internal/adapters/catalog"
	"order-lookup-service/internal/adapters/ledger"
	"order-lookup-service/internal/api"
	"order-lookup-service/internal/config"
	"order-lookup-service/internal/platform/db"
	"order-lookup-service/internal/platform/metrics"
	"order-lookup-service/internal/platform/obs"
	"order-lookup-service/internal/ports"
	"order-lookup-service/internal/services"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// main is the application composition root.
// It loads the catalog once, wires the ledger store behind its port and
// starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	catalogPath := fs.String("catalog", config.Get("CATALOG_PATH", ""), "path to the order workbook (.xlsx) or CSV export")
	sheet := fs.String("sheet", config.Get("CATALOG_SHEET", "SALIMA"), "worksheet holding the orders")
	driver := fs.String("ledger-driver", config.Get("LEDGER_DRIVER", config.LedgerDriverCSV), "ledger backend: csv, sqlite or postgres")
	ledgerPath := fs.String("ledger", config.Get("LEDGER_PATH", "data/collected_salima.csv"), "CSV ledger file")
	port := fs.String("port", config.Get("PORT", "8080"), "HTTP listen port")
	logLevel := fs.String("log-level", config.Get("LOG_LEVEL", "info"), "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	overrides := map[string]string{
		"CATALOG_PATH":  *catalogPath,
		"CATALOG_SHEET": *sheet,
		"LEDGER_DRIVER": *driver,
		"LEDGER_PATH":   *ledgerPath,
		"PORT":          *port,
		"LOG_LEVEL":     *logLevel,
	}
	for k, v := range overrides {
		if err := os.Setenv(k, v); err != nil {
			return config.Config{}, fmt.Errorf("load config: set %s: %w", k, err)
		}
	}

	return config.Load()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The catalog is read once; a failure here aborts startup.
	var loader ports.CatalogLoader = catalog.NewFileLoader(catalog.Source{
		Path:          cfg.CatalogPath,
		Sheet:         cfg.CatalogSheet,
		DisplayFields: cfg.DisplayFields,
	}, logger)
	orders, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	store, closeStore, err := openLedger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := services.NewLookupService(orders, store, cfg.MarkedBy, metrics.New(reg))
	router := api.NewRouter(svc, reg, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("sheet", orders.Sheet()),
			zap.Int("catalog_rows", orders.Len()),
			zap.String("ledger_driver", cfg.LedgerDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openLedger builds the configured ledger store. The returned func releases
// any database handle.
func openLedger(cfg config.Config, logger *zap.Logger) (ports.LedgerStore, func(), error) {
	switch cfg.LedgerDriver {
	case config.LedgerDriverSqlite:
		conn, err := db.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return initSQLStore(conn, ledger.NewSqliteLedgerStore(conn, logger))
	case config.LedgerDriverPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return initSQLStore(conn, ledger.NewPostgresLedgerStore(conn, logger))
	default:
		return ledger.NewCSVLedgerStore(cfg.LedgerPath, logger), func() {}, nil
	}
}

func initSQLStore(conn *sql.DB, store *ledger.SQLLedgerStore) (ports.LedgerStore, func(), error) {
	if err := ledger.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return store, func() { _ = conn.Close() }, nil
}
