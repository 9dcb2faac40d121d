package handlers

import (
	"net/http"
	"order-lookup-service/internal/domain"
)

// HealthHandler reports liveness and which catalog is being served.
type HealthHandler struct {
	Catalog *domain.Catalog
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	res := map[string]any{
		"status":       "ok",
		"sheet":        h.Catalog.Sheet(),
		"catalog_rows": h.Catalog.Len(),
	}
	writeJSON(w, r, http.StatusOK, res)
}
