package domain

import "strings"

// Column names of the standard order sheet.
const (
	FieldFarmerName       = "Farmer Name"
	FieldContact          = "Contact"
	FieldDistrict         = "District"
	FieldDeliveryMode     = "Delivery Mode"
	FieldDeliveryCentre   = "Delivery Centre"
	FieldOrderNo          = "Order No"
	FieldProductsCode     = "Products Code"
	FieldProductsQuantity = "Products Quantity"
	FieldOrderTotalPrice  = "Order Total Price"
)

// Display column carrying the formatted total price.
const FieldOrderTotalPriceDisplay = "Order Total Price (MWK)"

// DefaultDisplayFields is the column order shown to operators.
var DefaultDisplayFields = []string{
	FieldFarmerName,
	FieldContact,
	FieldDistrict,
	FieldDeliveryMode,
	FieldDeliveryCentre,
	FieldOrderNo,
	FieldProductsCode,
	FieldProductsQuantity,
	FieldOrderTotalPrice,
}

// Represents a single farmer order loaded from the catalog source.
// Every cell is kept as text; TotalPrice is the only derived value.
type OrderRow struct {
	FarmerName       string
	Contact          string
	District         string
	DeliveryMode     string
	DeliveryCentre   string
	OrderNo          string
	ProductsCode     string
	ProductsQuantity string
	RawTotalPrice    string
	TotalPrice       float64

	// extra holds display columns outside the standard set.
	extra map[string]string
}

// NewOrderRow builds a row from a column -> cell mapping. Columns that are
// absent are left empty.
func NewOrderRow(cells map[string]string) OrderRow {
	r := OrderRow{
		FarmerName:       cells[FieldFarmerName],
		Contact:          cells[FieldContact],
		District:         cells[FieldDistrict],
		DeliveryMode:     cells[FieldDeliveryMode],
		DeliveryCentre:   cells[FieldDeliveryCentre],
		OrderNo:          cells[FieldOrderNo],
		ProductsCode:     cells[FieldProductsCode],
		ProductsQuantity: cells[FieldProductsQuantity],
		RawTotalPrice:    cells[FieldOrderTotalPrice],
	}
	r.TotalPrice = ParsePrice(r.RawTotalPrice)

	for k, v := range cells {
		if isStandardField(k) {
			continue
		}
		if r.extra == nil {
			r.extra = make(map[string]string)
		}
		r.extra[k] = v
	}

	return r
}

// Field returns the raw text of the named column.
func (r OrderRow) Field(name string) string {
	switch name {
	case FieldFarmerName:
		return r.FarmerName
	case FieldContact:
		return r.Contact
	case FieldDistrict:
		return r.District
	case FieldDeliveryMode:
		return r.DeliveryMode
	case FieldDeliveryCentre:
		return r.DeliveryCentre
	case FieldOrderNo:
		return r.OrderNo
	case FieldProductsCode:
		return r.ProductsCode
	case FieldProductsQuantity:
		return r.ProductsQuantity
	case FieldOrderTotalPrice:
		return r.RawTotalPrice
	}
	return r.extra[name]
}

// Matches reports whether the order number or the contact contains q,
// ignoring case. q must already be trimmed and non-empty.
func (r OrderRow) Matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(r.OrderNo), q) ||
		strings.Contains(strings.ToLower(r.Contact), q)
}

func isStandardField(name string) bool {
	for _, f := range DefaultDisplayFields {
		if f == name {
			return true
		}
	}
	return false
}
