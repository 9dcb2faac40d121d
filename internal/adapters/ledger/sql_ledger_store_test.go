package ledger

import (
	"context"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/db"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newSqliteStore(t *testing.T) *SQLLedgerStore {
	t.Helper()

	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewSqliteLedgerStore(conn, nil)
}

func TestSqliteLoadInitializesSchema(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	// No table yet: Load starts fresh and creates it.
	require.Equal(t, 0, s.Load(ctx).Len())

	_, err := s.DB.Exec(`SELECT count(*) FROM delivery_ledger;`)
	require.NoError(t, err)
}

func TestSqliteRoundTrip(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	require.NoError(t, InitSchema(s.DB))

	want := sampleRecords()
	require.NoError(t, s.Save(ctx, domain.NewLedger(want)))

	got := s.Load(ctx).Records()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Save is a full overwrite.
	require.NoError(t, s.Save(ctx, domain.NewLedger(want[1:])))
	got = s.Load(ctx).Records()
	if diff := cmp.Diff(want[1:], got); diff != "" {
		t.Fatalf("overwrite mismatch (-want +got):\n%s", diff)
	}
}

func TestSqliteSaveSkipsRepeatedOrders(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	require.NoError(t, InitSchema(s.DB))

	dup := append(sampleRecords(), domain.DeliveryRecord{OrderNo: "ORD100", Contact: "other"})
	require.NoError(t, s.Save(ctx, domain.NewLedger(dup)))

	got := s.Load(ctx).Records()
	require.Len(t, got, 2)
	require.Equal(t, "099911", got[0].Contact)
}

func TestDialectPlaceholder(t *testing.T) {
	require.Equal(t, "?", DialectSqlite.placeholder(3))
	require.Equal(t, "$3", DialectPostgres.placeholder(3))
	require.Equal(t, "postgres", DialectPostgres.String())
}
