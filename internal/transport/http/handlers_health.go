package httptransport

import "net/http"

type healthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Environment string `json:"environment"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.sessions.Count(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "session count unavailable", "error", err)
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Sessions:    count,
		Environment: h.cfg.Environment,
	})
}
