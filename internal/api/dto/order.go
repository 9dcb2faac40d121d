package dto

type OrderRowResponse struct {
	OrderNo   string            `json:"order_no"`
	Fields    map[string]string `json:"fields"`
	Delivered bool              `json:"delivered"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Status  string             `json:"status"`
	Message string             `json:"message,omitempty"`
	Columns []string           `json:"columns"`
	Rows    []OrderRowResponse `json:"rows"`
}
