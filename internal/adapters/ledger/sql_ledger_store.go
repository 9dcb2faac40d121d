package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQLLedgerStore keeps the ledger in the delivery_ledger table of a SQLite
// or Postgres database. Save replaces every row inside one transaction.
type SQLLedgerStore struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *zap.Logger
}

func NewSqliteLedgerStore(db *sql.DB, logger *zap.Logger) *SQLLedgerStore {
	return newSQLLedgerStore(db, DialectSqlite, logger)
}

func NewPostgresLedgerStore(db *sql.DB, logger *zap.Logger) *SQLLedgerStore {
	return newSQLLedgerStore(db, DialectPostgres, logger)
}

func newSQLLedgerStore(db *sql.DB, d Dialect, logger *zap.Logger) *SQLLedgerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLLedgerStore{DB: db, Dialect: d, Logger: logger}
}

// Load returns all records in insertion order. Query failures reinitialize
// the schema and yield an empty ledger.
func (s *SQLLedgerStore) Load(ctx context.Context) domain.Ledger {
	records, err := s.List(ctx)
	if err != nil {
		s.Logger.Warn("ledger table unreadable, starting fresh",
			zap.String("dialect", s.Dialect.String()),
			zap.Error(err))

		if s.DB != nil {
			if initErr := InitSchema(s.DB); initErr != nil {
				s.Logger.Error("reinitialize ledger schema failed", zap.Error(initErr))
			}
		}
		return domain.Ledger{}
	}

	return domain.NewLedger(records)
}

// List returns all records in insertion order, reporting query failures
// instead of starting fresh.
func (s *SQLLedgerStore) List(ctx context.Context) (_ []domain.DeliveryRecord, err error) {
	defer obs.Time(ctx, "ledger.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("sql ledger store: DB is nil")
	}

	query := `
	SELECT
		order_no,
		contact,
		marked_by,
		marked_at
	FROM delivery_ledger
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ledger: query delivery_ledger table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.DeliveryRecord, 0, 64)
	for rows.Next() {
		var r domain.DeliveryRecord
		if err := rows.Scan(&r.OrderNo, &r.Contact, &r.MarkedBy, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("list ledger: scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger: row iteration: %w", err)
	}

	return records, nil
}

// Save replaces the table contents with l. Repeated order numbers keep their
// first record.
func (s *SQLLedgerStore) Save(ctx context.Context, l domain.Ledger) (err error) {
	defer obs.Time(ctx, "ledger.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("save ledger: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save ledger: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_ledger;`); err != nil {
		return fmt.Errorf("save ledger: clear table: %w", err)
	}

	d := s.Dialect
	query := fmt.Sprintf(`
	INSERT INTO delivery_ledger (
		seq,
		order_no,
		contact,
		marked_by,
		marked_at
	)
	VALUES (%s, %s, %s, %s, %s);
	`, d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4), d.placeholder(5))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("save ledger: prepare insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, l.Len())
	for i, r := range l.Records() {
		if _, ok := seen[r.OrderNo]; ok {
			continue
		}
		seen[r.OrderNo] = struct{}{}

		if _, err := stmt.ExecContext(ctx, i, r.OrderNo, r.Contact, r.MarkedBy, r.Timestamp); err != nil {
			return fmt.Errorf("save ledger: insert order_no=%q: %w", r.OrderNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save ledger: commit tx: %w", err)
	}

	return nil
}
