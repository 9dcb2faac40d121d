package handlers

import (
	"net/http"
	"order-lookup-service/internal/api/dto"
	"order-lookup-service/internal/services"
)

// OrderHandler exposes catalog search.
type OrderHandler struct {
	Service *services.LookupService
}

// Search matches ?q= against order numbers and contacts.
func (h *OrderHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	query := r.URL.Query().Get("q")
	result := h.Service.Search(r.Context(), query)

	res := dto.SearchResponse{
		Query:   query,
		Status:  string(result.Status),
		Message: result.Message,
		Columns: result.Columns,
		Rows:    make([]dto.OrderRowResponse, 0, len(result.Rows)),
	}
	if res.Columns == nil {
		res.Columns = []string{}
	}
	for _, row := range result.Rows {
		res.Rows = append(res.Rows, dto.OrderRowResponse{
			OrderNo:   row.OrderNo,
			Fields:    row.Cells,
			Delivered: row.Delivered,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
