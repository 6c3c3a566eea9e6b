package httptransport

import (
	"encoding/json"
	"net/http"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/session"
	derrors "hauntedlights/pkg/domain-errors"
)

type triggerRequest struct {
	Effect string `json:"effect"`
}

type triggerResponse struct {
	Success          bool   `json:"success"`
	Effect           string `json:"effect"`
	DevicesTriggered int    `json:"devicesTriggered"`
	TotalDevices     int    `json:"totalDevices"`
}

// handleTrigger fires one effect at every online device the session has
// cached. Partial device failure is tolerated: the call succeeds as long as
// at least one device took the command. Flicker succeeds once its pulse
// sequence completes, regardless of per-pulse outcomes.
func (h *Handler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.dispatcher.Trigger(r.Context(), sess, req.Effect)
	if err != nil {
		writeError(w, err)
		return
	}

	success := res.DevicesTriggered > 0 || res.Effect == effects.Flicker
	writeJSON(w, http.StatusOK, triggerResponse{
		Success:          success,
		Effect:           res.Effect,
		DevicesTriggered: res.DevicesTriggered,
		TotalDevices:     res.TotalDevices,
	})
}
