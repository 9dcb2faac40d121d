package ports

import (
	"context"
	"order-lookup-service/internal/domain"
)

// Port: persistence boundary for the delivery ledger.
type LedgerStore interface {
	// Return the full ledger. Unreadable or missing storage is reinitialized
	// and reported as an empty ledger rather than an error.
	Load(ctx context.Context) domain.Ledger
	// Replace the stored ledger with l in full.
	Save(ctx context.Context, l domain.Ledger) error
}

// Optional extension of LedgerStore that can serialize a load-modify-save
// sequence against other writers.
type LockingLedgerStore interface {
	LedgerStore
	// Run fn while holding an exclusive lock on the ledger. Store calls
	// inside fn must use the context fn receives.
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}
