package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/obs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const filePerms = 0o644

var errNoOrderColumn = errors.New("ledger header has no Order No column")

// CSVLedgerStore keeps the delivery ledger in a flat CSV file with the
// header "Order No,Contact,MarkedBy,Timestamp". Every save rewrites the whole
// file through a temp file and rename.
type CSVLedgerStore struct {
	Path        string
	Logger      *zap.Logger
	LockTimeout time.Duration

	// mu serializes writers inside this process; the flock covers other
	// processes.
	mu sync.Mutex
}

func NewCSVLedgerStore(path string, logger *zap.Logger) *CSVLedgerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVLedgerStore{Path: path, Logger: logger, LockTimeout: DefaultLockTimeout}
}

// lockHeldKey marks a context passed to a WithLock callback; the value is
// the store holding the lock.
type lockHeldKey struct{}

// Load reads the ledger file. A missing or corrupt file is replaced with an
// empty ledger (header only) and an empty ledger is returned. The
// replacement happens under the ledger lock so it cannot clobber a
// concurrent save.
func (s *CSVLedgerStore) Load(ctx context.Context) domain.Ledger {
	defer obs.Time(ctx, "ledger.csv.Load")(nil)

	if records, err := ReadCSV(s.Path); err == nil {
		return domain.NewLedger(records)
	}

	if ctx.Value(lockHeldKey{}) == s {
		return s.loadOrReset()
	}

	var l domain.Ledger
	err := s.WithLock(ctx, func(context.Context) error {
		l = s.loadOrReset()
		return nil
	})
	if err != nil {
		s.Logger.Warn("ledger unreadable and lock unavailable, serving empty ledger",
			zap.String("path", s.Path), zap.Error(err))
		return domain.Ledger{}
	}
	return l
}

// loadOrReset re-reads the file and resets it when still unusable.
// The caller holds the lock.
func (s *CSVLedgerStore) loadOrReset() domain.Ledger {
	records, err := ReadCSV(s.Path)
	if err == nil {
		return domain.NewLedger(records)
	}

	if !errors.Is(err, os.ErrNotExist) {
		s.Logger.Warn("ledger corrupt, starting fresh", zap.String("path", s.Path), zap.Error(err))
	}
	s.reset()
	return domain.Ledger{}
}

// ReadCSV parses a ledger file without touching it. Unlike Load it reports
// missing or malformed files as errors.
func ReadCSV(path string) ([]domain.DeliveryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger %q: %w", path, err)
	}

	records, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("read ledger %q: %w", path, err)
	}
	return records, nil
}

// Save overwrites the ledger file with l in the fixed column order.
func (s *CSVLedgerStore) Save(ctx context.Context, l domain.Ledger) (err error) {
	defer obs.Time(ctx, "ledger.csv.Save")(&err)

	data, err := encodeCSV(l.Records())
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	if err := s.write(data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}

// WithLock runs fn while holding both the in-process mutex and an exclusive
// flock on "<path>.lock". Loads made with the context handed to fn do not
// try to take the lock again.
func (s *CSVLedgerStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.Path); err != nil {
		return fmt.Errorf("ledger lock: %w", err)
	}

	timeout := s.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	lock, err := acquireFileLock(ctx, s.Path+".lock", timeout)
	if err != nil {
		return fmt.Errorf("ledger lock: %w", err)
	}
	defer lock.release()

	return fn(context.WithValue(ctx, lockHeldKey{}, s))
}

func (s *CSVLedgerStore) reset() {
	data, err := encodeCSV(nil)
	if err == nil {
		err = s.write(data)
	}
	if err != nil {
		s.Logger.Error("reinitialize ledger failed", zap.String("path", s.Path), zap.Error(err))
	}
}

func (s *CSVLedgerStore) write(data []byte) error {
	if err := ensureDir(s.Path); err != nil {
		return err
	}

	if err := atomic.WriteFile(s.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %q: %w", s.Path, err)
	}

	// atomic.WriteFile leaves temp-file permissions on new files.
	if err := os.Chmod(s.Path, filePerms); err != nil {
		return fmt.Errorf("chmod %q: %w", s.Path, err)
	}

	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// decodeCSV parses ledger rows, matching columns by header name.
func decodeCSV(data []byte) ([]domain.DeliveryRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty ledger file")
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := col[h]; !ok {
			col[h] = i
		}
	}
	if _, ok := col[domain.LedgerColumns[0]]; !ok {
		return nil, errNoOrderColumn
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	out := make([]domain.DeliveryRecord, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		orderNo := get(rec, domain.LedgerColumns[0])
		if strings.TrimSpace(orderNo) == "" {
			continue
		}
		out = append(out, domain.DeliveryRecord{
			OrderNo:   orderNo,
			Contact:   get(rec, domain.LedgerColumns[1]),
			MarkedBy:  get(rec, domain.LedgerColumns[2]),
			Timestamp: get(rec, domain.LedgerColumns[3]),
		})
	}

	return out, nil
}

func encodeCSV(records []domain.DeliveryRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.LedgerColumns); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	for _, r := range records {
		if err := w.Write([]string{r.OrderNo, r.Contact, r.MarkedBy, r.Timestamp}); err != nil {
			return nil, fmt.Errorf("encode order %q: %w", r.OrderNo, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode flush: %w", err)
	}

	return buf.Bytes(), nil
}
