package ledger

import (
	"context"
	"errors"
	"order-lookup-service/internal/domain"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyLedgerFile = "Order No,Contact,MarkedBy,Timestamp\n"

func sampleRecords() []domain.DeliveryRecord {
	return []domain.DeliveryRecord{
		{OrderNo: "ORD100", Contact: "099911", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-01 08:00:00"},
		{OrderNo: "ORD101", Contact: "Banda, J", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-01 09:15:00"},
	}
}

func TestCSVLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "collected.csv")
	s := NewCSVLedgerStore(path, nil)

	l := s.Load(context.Background())
	require.Equal(t, 0, l.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, emptyLedgerFile, string(data))
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")
	s := NewCSVLedgerStore(path, nil)
	ctx := context.Background()

	want := sampleRecords()
	require.NoError(t, s.Save(ctx, domain.NewLedger(want)))

	got := s.Load(ctx).Records()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(filePerms), info.Mode().Perm())
}

func TestCSVLoadResetsCorruptFile(t *testing.T) {
	tests := map[string]string{
		"unterminated quote": "Order No,Contact\n\"ORD1,0999\n",
		"no order column":    "Foo,Bar\n1,2\n",
		"empty file":         "",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "collected.csv")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			l := NewCSVLedgerStore(path, nil).Load(context.Background())
			require.Equal(t, 0, l.Len())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, emptyLedgerFile, string(data))
		})
	}
}

func TestCSVLoadMatchesColumnsByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")
	content := "Timestamp,Order No,MarkedBy,Contact\n" +
		"2026-01-01 08:00:00,ORD9,AGRONOMIST,0999\n" +
		",,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got := NewCSVLedgerStore(path, nil).Load(context.Background()).Records()
	want := []domain.DeliveryRecord{
		{OrderNo: "ORD9", Contact: "0999", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-01 08:00:00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVWithLockSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")
	s := NewCSVLedgerStore(path, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.WithLock(ctx, func(ctx context.Context) error {
				l := s.Load(ctx)
				l.Append(domain.DeliveryRecord{OrderNo: string(rune('A' + i))})
				return s.Save(ctx, l)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 8, s.Load(ctx).Len(), "no update should be lost")
}

func TestCSVWithLockTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")

	held, err := acquireFileLock(context.Background(), path+".lock", time.Second)
	require.NoError(t, err)
	defer held.release()

	// A second descriptor cannot take the flock while held is open.
	s := NewCSVLedgerStore(path, nil)
	s.LockTimeout = 50 * time.Millisecond

	called := false
	err = s.WithLock(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.True(t, errors.Is(err, ErrLockTimeout), "got %v", err)
	require.False(t, called)
}

func TestCSVLoadWaitsForLockedSaveBeforeReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")
	require.NoError(t, os.WriteFile(path, []byte("Foo,Bar\n1,2\n"), 0o644))

	s := NewCSVLedgerStore(path, nil)
	ctx := context.Background()
	rec := domain.DeliveryRecord{OrderNo: "ORD1", Contact: "0999", MarkedBy: "AGRONOMIST", Timestamp: "2026-01-01 08:00:00"}

	loaded := make(chan domain.Ledger, 1)
	err := s.WithLock(ctx, func(ctx context.Context) error {
		// Load from outside the lock sees the corrupt file and must wait.
		go func() { loaded <- s.Load(context.Background()) }()
		time.Sleep(50 * time.Millisecond)

		// Load inside the lock does not deadlock.
		require.Equal(t, 0, s.Load(ctx).Len())
		return s.Save(ctx, domain.NewLedger([]domain.DeliveryRecord{rec}))
	})
	require.NoError(t, err)

	l := <-loaded
	require.True(t, l.Has("ORD1"), "reset must not discard a save made under the lock")

	got, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, []domain.DeliveryRecord{rec}, got)
}

func TestReadCSVLeavesMalformedFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collected.csv")
	content := "Order No,Contact,MarkedBy,Timestamp\n" +
		"ORD1,0999,AGRONOMIST,2026-01-01 08:00:00\n" +
		"ORD2,\"07\"77,AGRONOMIST,2026-01-02 08:00:00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadCSV(path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, string(data))

	_, err = ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
