package handlers

import (
	"encoding/json"
	"net/http"
	"order-lookup-service/internal/api/dto"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/obs"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func toDeliveryResponses(records []domain.DeliveryRecord) []dto.DeliveryRecordResponse {
	out := make([]dto.DeliveryRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.DeliveryRecordResponse{
			OrderNo:   rec.OrderNo,
			Contact:   rec.Contact,
			MarkedBy:  rec.MarkedBy,
			Timestamp: rec.Timestamp,
		})
	}
	return out
}
