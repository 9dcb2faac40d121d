package domain

import "testing"

func testCatalog() *Catalog {
	rows := []OrderRow{
		NewOrderRow(map[string]string{FieldOrderNo: "ORD100", FieldContact: "099911", FieldOrderTotalPrice: "2,500"}),
		NewOrderRow(map[string]string{FieldOrderNo: "ord200", FieldContact: "088822"}),
		NewOrderRow(map[string]string{FieldOrderNo: "ORD200", FieldContact: "077733", "Village": "Chipoka"}),
	}
	return NewCatalog("SALIMA", DefaultDisplayFields, rows)
}

func TestCatalogMatchIsCaseInsensitive(t *testing.T) {
	c := testCatalog()

	for _, r := range c.Rows() {
		for _, q := range []string{r.OrderNo, "  " + r.OrderNo + " ", toggleCase(r.OrderNo)} {
			found := false
			for _, m := range c.Match(q) {
				if m.OrderNo == r.OrderNo && m.Contact == r.Contact {
					found = true
				}
			}
			if !found {
				t.Errorf("Match(%q) does not include row %q/%q", q, r.OrderNo, r.Contact)
			}
		}
	}
}

func TestCatalogMatchContact(t *testing.T) {
	c := testCatalog()

	got := c.Match("0888")
	if len(got) != 1 || got[0].Contact != "088822" {
		t.Fatalf("Match(0888) = %+v, want one row with contact 088822", got)
	}

	if got := c.Match("ord2"); len(got) != 2 {
		t.Fatalf("Match(ord2) returned %d rows, want 2", len(got))
	}
}

func TestCatalogMatchBlankQuery(t *testing.T) {
	c := testCatalog()

	for _, q := range []string{"", " ", "\t\n"} {
		if got := c.Match(q); len(got) != 0 {
			t.Errorf("Match(%q) returned %d rows, want 0", q, len(got))
		}
	}
}

func TestOrderRowField(t *testing.T) {
	c := testCatalog()
	rows := c.Rows()

	if got := rows[0].Field(FieldOrderTotalPrice); got != "2,500" {
		t.Errorf("raw price = %q, want 2,500", got)
	}
	if rows[0].TotalPrice != 2500 {
		t.Errorf("TotalPrice = %v, want 2500", rows[0].TotalPrice)
	}
	if got := rows[2].Field("Village"); got != "Chipoka" {
		t.Errorf("extra field = %q, want Chipoka", got)
	}
	if got := rows[1].Field("Village"); got != "" {
		t.Errorf("missing extra field = %q, want empty", got)
	}
}

func TestDistinctOrderNos(t *testing.T) {
	rows := []OrderRow{{OrderNo: "B"}, {OrderNo: "A"}, {OrderNo: "B"}, {OrderNo: "C"}}

	got := DistinctOrderNos(rows)
	want := []string{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("DistinctOrderNos = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistinctOrderNos = %v, want %v", got, want)
		}
	}
}

func toggleCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 32
		case c >= 'A' && c <= 'Z':
			b[i] = c + 32
		}
	}
	return string(b)
}
