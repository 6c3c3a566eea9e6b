package httptransport

import (
	"net/http"

	"hauntedlights/internal/playback"
	"hauntedlights/internal/session"
)

type playbackResponse struct {
	Success    bool           `json:"success"`
	State      playback.State `json:"state"`
	Position   float64        `json:"position"`
	LastEffect string         `json:"lastEffect,omitempty"`
}

func (h *Handler) handlePlaybackStart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	if err := h.playback.Start(sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playbackResponse{Success: true, State: playback.StateRunning})
}

func (h *Handler) handlePlaybackStop(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	h.playback.Stop(sess.ID)
	writeJSON(w, http.StatusOK, playbackResponse{Success: true, State: playback.StateIdle})
}

func (h *Handler) handlePlaybackStatus(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	st := h.playback.Status(sess.ID)
	writeJSON(w, http.StatusOK, playbackResponse{
		Success:    true,
		State:      st.State,
		Position:   st.Position.Seconds(),
		LastEffect: st.LastEffect,
	})
}
