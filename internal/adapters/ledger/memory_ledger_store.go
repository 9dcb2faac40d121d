package ledger

import (
	"context"
	"order-lookup-service/internal/domain"
	"sync"
)

// MemoryLedgerStore keeps the ledger in memory. It counts saves so callers
// can tell whether a write happened.
type MemoryLedgerStore struct {
	mu      sync.Mutex
	records []domain.DeliveryRecord
	saves   int
	SaveErr error
}

func NewMemoryLedgerStore(records []domain.DeliveryRecord) *MemoryLedgerStore {
	cp := make([]domain.DeliveryRecord, len(records))
	copy(cp, records)
	return &MemoryLedgerStore{records: cp}
}

func (s *MemoryLedgerStore) Load(ctx context.Context) domain.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewLedger(s.records)
}

func (s *MemoryLedgerStore) Save(ctx context.Context, l domain.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.records = l.Records()
	s.saves++
	return nil
}

// Saves returns how many successful saves have happened.
func (s *MemoryLedgerStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
