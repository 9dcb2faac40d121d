package dto

type MarkDeliveredRequest struct {
	Query string `json:"query"`
}

type DeliveryRecordResponse struct {
	OrderNo   string `json:"order_no"`
	Contact   string `json:"contact"`
	MarkedBy  string `json:"marked_by"`
	Timestamp string `json:"timestamp"`
}

type MarkDeliveredResponse struct {
	Message    string                   `json:"message"`
	Added      []DeliveryRecordResponse `json:"added"`
	Deliveries []DeliveryRecordResponse `json:"deliveries"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryRecordResponse `json:"deliveries"`
}
