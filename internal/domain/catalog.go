package domain

import "strings"

// Catalog is the read-only table of orders loaded once at startup.
// It is safe for concurrent use because nothing mutates it after NewCatalog.
type Catalog struct {
	sheet         string
	displayFields []string
	rows          []OrderRow
}

func NewCatalog(sheet string, displayFields []string, rows []OrderRow) *Catalog {
	fields := make([]string, len(displayFields))
	copy(fields, displayFields)

	cp := make([]OrderRow, len(rows))
	copy(cp, rows)

	return &Catalog{sheet: sheet, displayFields: fields, rows: cp}
}

func (c *Catalog) Sheet() string { return c.sheet }

func (c *Catalog) Len() int { return len(c.rows) }

// DisplayFields returns the configured column order.
func (c *Catalog) DisplayFields() []string {
	out := make([]string, len(c.displayFields))
	copy(out, c.displayFields)
	return out
}

// Rows returns a copy of all catalog rows.
func (c *Catalog) Rows() []OrderRow {
	out := make([]OrderRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// Match returns the rows whose order number or contact contains query as a
// case-insensitive substring, in catalog order. A blank query matches nothing.
func (c *Catalog) Match(query string) []OrderRow {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}

	var out []OrderRow
	for _, r := range c.rows {
		if r.Matches(q) {
			out = append(out, r)
		}
	}
	return out
}

// DistinctOrderNos returns the order numbers of rows in first-seen order.
func DistinctOrderNos(rows []OrderRow) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.OrderNo]; ok {
			continue
		}
		seen[r.OrderNo] = struct{}{}
		out = append(out, r.OrderNo)
	}
	return out
}
