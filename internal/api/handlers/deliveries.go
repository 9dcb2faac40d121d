package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"order-lookup-service/internal/api/dto"
	"order-lookup-service/internal/platform/obs"
	"order-lookup-service/internal/services"

	"go.uber.org/zap"
)

// DeliveryHandler lists the delivery ledger and marks orders delivered.
type DeliveryHandler struct {
	Service *services.LookupService
}

// Deliveries serves GET (list) and POST (mark) on the same path.
func (h *DeliveryHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.mark(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet+", "+http.MethodPost)
	}
}

func (h *DeliveryHandler) list(w http.ResponseWriter, r *http.Request) {
	records := h.Service.ListLedger(r.Context())
	writeJSON(w, r, http.StatusOK, dto.ListDeliveriesResponse{
		Deliveries: toDeliveryResponses(records),
	})
}

func (h *DeliveryHandler) mark(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkDeliveredRequest

	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	result, err := h.Service.MarkDelivered(r.Context(), req.Query)
	if err != nil {
		zap.L().Error("mark delivered failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("query", req.Query),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MarkDeliveredResponse{
		Message:    result.Message,
		Added:      toDeliveryResponses(result.Added),
		Deliveries: toDeliveryResponses(result.Ledger),
	})
}
