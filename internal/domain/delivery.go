package domain

import "time"

// LedgerColumns is the fixed column order of the persisted ledger.
var LedgerColumns = []string{"Order No", "Contact", "MarkedBy", "Timestamp"}

// TimestampLayout is the local date-time format used for ledger entries.
const TimestampLayout = "2006-01-02 15:04:05"

// Default operator tag recorded when marking orders.
const DefaultMarkedBy = "AGRONOMIST"

// Records that an order was handed over.
type DeliveryRecord struct {
	OrderNo   string
	Contact   string
	MarkedBy  string
	Timestamp string
}

func NewDeliveryRecord(orderNo, contact, markedBy string, at time.Time) DeliveryRecord {
	return DeliveryRecord{
		OrderNo:   orderNo,
		Contact:   contact,
		MarkedBy:  markedBy,
		Timestamp: at.Format(TimestampLayout),
	}
}

// Ledger is an ordered collection of delivery records keyed by order number.
// The zero value is an empty ledger.
type Ledger struct {
	records []DeliveryRecord
	index   map[string]struct{}
}

func NewLedger(records []DeliveryRecord) Ledger {
	var l Ledger
	l.records = make([]DeliveryRecord, 0, len(records))
	l.index = make(map[string]struct{}, len(records))
	for _, r := range records {
		l.records = append(l.records, r)
		l.index[r.OrderNo] = struct{}{}
	}
	return l
}

// Has reports whether a record exists for orderNo.
func (l Ledger) Has(orderNo string) bool {
	_, ok := l.index[orderNo]
	return ok
}

// HasAny reports whether any of orderNos is recorded.
func (l Ledger) HasAny(orderNos []string) bool {
	for _, o := range orderNos {
		if l.Has(o) {
			return true
		}
	}
	return false
}

func (l Ledger) Len() int { return len(l.records) }

// Records returns a copy of the records in stored order.
func (l Ledger) Records() []DeliveryRecord {
	out := make([]DeliveryRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	return NewLedger(l.records)
}

// Append adds r unless its order number is already present.
// It reports whether the record was added.
func (l *Ledger) Append(r DeliveryRecord) bool {
	if l.Has(r.OrderNo) {
		return false
	}
	if l.index == nil {
		l.index = make(map[string]struct{})
	}
	l.records = append(l.records, r)
	l.index[r.OrderNo] = struct{}{}
	return true
}
