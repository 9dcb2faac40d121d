package main

import (
	"context"
	"order-lookup-service/internal/adapters/ledger"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/db"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := filepath.Join(dir, "collected.csv")
	content := "Order No,Contact,MarkedBy,Timestamp\n" +
		"ORD1,0999,AGRONOMIST,2026-01-01 08:00:00\n" +
		"ORD1,0888,AGRONOMIST,2026-01-02 08:00:00\n" +
		"ORD2,0777,AGRONOMIST,2026-01-03 08:00:00\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	conn, err := db.OpenSqlite(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer conn.Close()

	store := ledger.NewSqliteLedgerStore(conn, zap.NewNop())
	outPath := filepath.Join(dir, "export.csv")
	require.NoError(t, run(ctx, conn, store, csvPath, outPath, zap.NewNop()))

	got := store.Load(ctx).Records()
	require.Equal(t, []domain.DeliveryRecord{
		{OrderNo: "ORD1", Contact: "0999", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-01 08:00:00"},
		{OrderNo: "ORD2", Contact: "0777", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-03 08:00:00"},
	}, got)

	exported := ledger.NewCSVLedgerStore(outPath, nil).Load(ctx).Records()
	require.Equal(t, got, exported)

	// Importing again adds nothing.
	n, err := importCSV(ctx, store, csvPath)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestImportMissingFile(t *testing.T) {
	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = importCSV(context.Background(), ledger.NewSqliteLedgerStore(conn, nil), "/nonexistent/ledger.csv")
	require.Error(t, err)
}

func TestImportMalformedFileFailsAndKeepsSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := filepath.Join(dir, "collected.csv")
	content := "Order No,Contact,MarkedBy,Timestamp\n" +
		"ORD1,0999,AGRONOMIST,2026-01-01 08:00:00\n" +
		"ORD2,\"07\"77,AGRONOMIST,2026-01-02 08:00:00\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	conn, err := db.OpenSqlite(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer conn.Close()

	store := ledger.NewSqliteLedgerStore(conn, zap.NewNop())
	require.NoError(t, ledger.InitSchema(conn))

	n, err := importCSV(ctx, store, csvPath)
	require.Error(t, err)
	require.Equal(t, 0, n)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Equal(t, content, string(data), "source ledger must be left untouched")

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExportFailsWhenTableUnreadable(t *testing.T) {
	dir := t.TempDir()

	conn, err := db.OpenSqlite(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer conn.Close()

	// No schema: the ledger table does not exist.
	outPath := filepath.Join(dir, "export.csv")
	_, err = exportCSV(context.Background(), ledger.NewSqliteLedgerStore(conn, nil), outPath, zap.NewNop())
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	require.ErrorIs(t, statErr, os.ErrNotExist, "no empty export should be written")
}
