package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zrctl/internal/logging"
	"github.com/zrctl/internal/zoomrooms"
)

// DialRequest is the body of POST /api/call/dial.
type DialRequest struct {
	DialString string `json:"dial_string"`
}

// DialResponse carries the session id of the joined meeting.
type DialResponse struct {
	SessionID string `json:"session_id"`
}

// MuteRequest is the body of the mute PUT endpoints.
type MuteRequest struct {
	Muted *bool `json:"muted"`
}

// MuteResponse reports the microphone mute state.
type MuteResponse struct {
	Microphone zoomrooms.MuteState `json:"microphone"`
}

// StatusHandler returns the latest snapshot; ?refresh=true polls the device.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	var (
		snap *zoomrooms.Snapshot
		err  error
	)
	if r.URL.Query().Get("refresh") == "true" {
		snap, err = s.poller.Refresh(r.Context())
	} else {
		snap, err = s.poller.Latest(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	WriteJSONSuccess(w, snap)
}

// DialHandler starts or joins a meeting.
func (s *Server) DialHandler(w http.ResponseWriter, r *http.Request) {
	var req DialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := s.session.Dial(r.Context(), req.DialString)
	s.poller.Invalidate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Dial requested via API", "caller_id", GetCallerIDFromContext(r.Context()), "session_id", id)
	WriteJSONSuccess(w, DialResponse{SessionID: id})
}

// HangupHandler leaves or ends the current meeting.
func (s *Server) HangupHandler(w http.ResponseWriter, r *http.Request) {
	err := s.session.Hangup(r.Context())
	s.poller.Invalidate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CallStatusHandler reports whether a call id is live.
func (s *Server) CallStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := s.session.CallStatus(r.Context(), r.URL.Query().Get("call_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	WriteJSONSuccess(w, status)
}

// MuteStateHandler reports the microphone mute state.
func (s *Server) MuteStateHandler(w http.ResponseWriter, r *http.Request) {
	state, err := s.session.MuteState(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	WriteJSONSuccess(w, MuteResponse{Microphone: state})
}

// MicrophoneMuteHandler mutes or unmutes the microphone.
func (s *Server) MicrophoneMuteHandler(w http.ResponseWriter, r *http.Request) {
	s.handleMute(w, r, s.session.SetMicrophoneMute)
}

// CameraMuteHandler mutes or unmutes the camera.
func (s *Server) CameraMuteHandler(w http.ResponseWriter, r *http.Request) {
	s.handleMute(w, r, s.session.SetCameraMute)
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, muted bool) error) {
	var req MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Muted == nil {
		WriteJSONError(w, `body must be {"muted": true|false}`, http.StatusBadRequest)
		return
	}
	err := set(r.Context(), *req.Muted)
	s.poller.Invalidate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CameraMoveHandler nudges the camera one step.
func (s *Server) CameraMoveHandler(w http.ResponseWriter, r *http.Request) {
	dir, err := zoomrooms.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.session.MoveCamera(r.Context(), dir); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ControlsHandler applies a batch of controllable properties in order.
func (s *Server) ControlsHandler(w http.ResponseWriter, r *http.Request) {
	var reqs []zoomrooms.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	err := s.session.ControlProperties(r.Context(), reqs)
	s.poller.Invalidate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusForError maps controller error categories to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, zoomrooms.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, zoomrooms.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, zoomrooms.ErrDialFailure):
		return http.StatusBadGateway
	case errors.Is(err, zoomrooms.ErrVerificationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, zoomrooms.ErrCommandFailure):
		return http.StatusBadGateway
	case errors.Is(err, zoomrooms.ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Device operation failed", logging.Err(err), "http_path", r.URL.Path)
	}
	WriteJSONError(w, err.Error(), status)
}
