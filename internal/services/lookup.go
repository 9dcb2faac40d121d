package services

import (
	"context"
	"fmt"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/metrics"
	"order-lookup-service/internal/platform/obs"
	"order-lookup-service/internal/ports"
	"strings"
	"time"
)

// Delivered status shown next to a search result.
type Status string

const (
	StatusNone         Status = ""
	StatusNotFound     Status = "NOT FOUND"
	StatusDelivered    Status = "DELIVERED"
	StatusNotDelivered Status = "NOT DELIVERED"
)

// Operator-facing messages.
const (
	MsgNotFound   = "No record found."
	MsgNoMatch    = "No matching records to mark."
	MsgMarked     = "Marked as DELIVERED"
	MsgNothingNew = "No new orders to mark (already delivered)."
)

// OrderView is one matched catalog row prepared for display.
type OrderView struct {
	OrderNo string
	// Cells maps each display column to its text. The total price appears
	// formatted under domain.FieldOrderTotalPriceDisplay.
	Cells map[string]string
	// Delivered reports whether this row's own order is in the ledger.
	Delivered bool
}

type SearchResult struct {
	Status  Status
	Message string
	Columns []string
	Rows    []OrderView
}

type MarkResult struct {
	Message string
	Added   []domain.DeliveryRecord
	Ledger  []domain.DeliveryRecord
}

// LookupService answers operator searches against the catalog and records
// deliveries in the ledger.
type LookupService struct {
	Catalog  *domain.Catalog
	Ledger   ports.LedgerStore
	MarkedBy string
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

func NewLookupService(catalog *domain.Catalog, ledger ports.LedgerStore, markedBy string, m *metrics.Metrics) *LookupService {
	if strings.TrimSpace(markedBy) == "" {
		markedBy = domain.DefaultMarkedBy
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &LookupService{
		Catalog:  catalog,
		Ledger:   ledger,
		MarkedBy: markedBy,
		Now:      time.Now,
		Metrics:  m,
	}
}

// Columns returns the display column order used for search rows.
func (s *LookupService) Columns() []string {
	fields := s.Catalog.DisplayFields()
	cols := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if f != domain.FieldOrderTotalPrice {
			cols = append(cols, f)
		}
	}
	return append(cols, domain.FieldOrderTotalPriceDisplay)
}

// Search finds rows whose order number or contact contains query.
// The status covers the whole result: DELIVERED when any matched order is
// in the ledger.
func (s *LookupService) Search(ctx context.Context, query string) SearchResult {
	defer obs.Time(ctx, "lookup.Search")(nil)

	q := strings.TrimSpace(query)
	if q == "" {
		s.Metrics.Searches.WithLabelValues("empty").Inc()
		return SearchResult{Status: StatusNone}
	}

	matches := s.Catalog.Match(q)
	if len(matches) == 0 {
		s.Metrics.Searches.WithLabelValues("not_found").Inc()
		return SearchResult{Status: StatusNotFound, Message: MsgNotFound}
	}

	ledger := s.Ledger.Load(ctx)
	s.Metrics.LedgerSize.Set(float64(ledger.Len()))

	columns := s.Columns()
	rows := make([]OrderView, 0, len(matches))
	for _, m := range matches {
		cells := make(map[string]string, len(columns))
		for _, c := range columns {
			if c == domain.FieldOrderTotalPriceDisplay {
				cells[c] = domain.FormatPrice(m.TotalPrice)
				continue
			}
			cells[c] = m.Field(c)
		}
		rows = append(rows, OrderView{
			OrderNo:   m.OrderNo,
			Cells:     cells,
			Delivered: ledger.Has(m.OrderNo),
		})
	}

	status := StatusNotDelivered
	if ledger.HasAny(domain.DistinctOrderNos(matches)) {
		status = StatusDelivered
	}
	s.Metrics.Searches.WithLabelValues(strings.ToLower(strings.ReplaceAll(string(status), " ", "_"))).Inc()

	return SearchResult{Status: status, Columns: columns, Rows: rows}
}

// MarkDelivered records every matched order that is not yet in the ledger.
// The ledger is written only when at least one record was added.
func (s *LookupService) MarkDelivered(ctx context.Context, query string) (_ MarkResult, err error) {
	defer obs.Time(ctx, "lookup.MarkDelivered")(&err)

	q := strings.TrimSpace(query)
	if q == "" {
		s.Metrics.Marks.WithLabelValues("empty").Inc()
		return MarkResult{Ledger: s.ListLedger(ctx)}, nil
	}

	matches := s.Catalog.Match(q)
	if len(matches) == 0 {
		s.Metrics.Marks.WithLabelValues("no_match").Inc()
		return MarkResult{Message: MsgNoMatch, Ledger: s.ListLedger(ctx)}, nil
	}

	var res MarkResult
	mark := func(ctx context.Context) error {
		current := s.Ledger.Load(ctx)
		updated := current.Clone()
		now := s.Now()

		contacts := make(map[string]string, len(matches))
		for _, m := range matches {
			if _, ok := contacts[m.OrderNo]; !ok {
				contacts[m.OrderNo] = m.Contact
			}
		}

		var added []domain.DeliveryRecord
		for _, orderNo := range domain.DistinctOrderNos(matches) {
			// Rows without an order number cannot be keyed in the ledger.
			if strings.TrimSpace(orderNo) == "" {
				continue
			}
			rec := domain.NewDeliveryRecord(orderNo, contacts[orderNo], s.MarkedBy, now)
			if updated.Append(rec) {
				added = append(added, rec)
			}
		}

		if len(added) == 0 {
			res = MarkResult{Message: MsgNothingNew, Ledger: current.Records()}
			s.Metrics.LedgerSize.Set(float64(current.Len()))
			return nil
		}

		if err := s.Ledger.Save(ctx, updated); err != nil {
			return fmt.Errorf("mark delivered: save ledger: %w", err)
		}

		res = MarkResult{Message: MsgMarked, Added: added, Ledger: updated.Records()}
		s.Metrics.LedgerSize.Set(float64(updated.Len()))
		return nil
	}

	if ls, ok := s.Ledger.(ports.LockingLedgerStore); ok {
		err = ls.WithLock(ctx, mark)
	} else {
		err = mark(ctx)
	}
	if err != nil {
		s.Metrics.Marks.WithLabelValues("error").Inc()
		return MarkResult{}, err
	}

	if len(res.Added) > 0 {
		s.Metrics.Marks.WithLabelValues("marked").Inc()
		s.Metrics.MarkedOrders.Add(float64(len(res.Added)))
	} else {
		s.Metrics.Marks.WithLabelValues("nothing_new").Inc()
	}

	return res, nil
}

// ListLedger returns every delivery record in stored order.
func (s *LookupService) ListLedger(ctx context.Context) []domain.DeliveryRecord {
	l := s.Ledger.Load(ctx)
	s.Metrics.LedgerSize.Set(float64(l.Len()))
	return l.Records()
}
