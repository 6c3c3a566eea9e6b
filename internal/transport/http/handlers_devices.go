package httptransport

import (
	"net/http"

	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
)

type discoverResponse struct {
	Success bool          `json:"success"`
	Devices []tuya.Device `json:"devices"`
	Total   int           `json:"total"`
}

// handleDiscover refreshes the session's device snapshot from the vendor. The
// listing comes back pre-filtered to lighting-capable devices, in vendor order.
func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	devices, err := h.vendor.ListDevices(r.Context(), sess.Token())
	if err != nil {
		h.logger.WarnContext(r.Context(), "device discovery failed", "error", err)
		writeError(w, err)
		return
	}

	sess.Devices = devices
	if err := h.sessions.Put(r.Context(), sess); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to cache devices on session", "error", err)
	}

	writeJSON(w, http.StatusOK, discoverResponse{
		Success: true,
		Devices: devices,
		Total:   len(devices),
	})
}
