// Package fare exposes the fare session over HTTP. It is the input
// collaborator and display sink of the prediction pipeline.
package fare

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/kilianp07/taxifare/core/display"
	"github.com/kilianp07/taxifare/core/features"
	"github.com/kilianp07/taxifare/core/model"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/core/session"
)

const (
	// SessionHeader carries the session identifier.
	SessionHeader = "X-Session-ID"
	// SessionCookie is used when the header is absent.
	SessionCookie = "taxifare_session"

	maxBodyBytes = 1 << 16
)

// RenderRequest is the form state of one render cycle. Omitted fields keep
// the default form values.
type RenderRequest struct {
	model.TripRequest
	Predict bool `json:"predict"`
}

// RenderResponse is what the display sink needs to draw the page.
type RenderResponse struct {
	SessionID  string          `json:"session_id"`
	DistanceKm float64         `json:"distance_km"`
	Features   features.Record `json:"features"`
	Fare       *float64        `json:"fare"`
	FareText   string          `json:"fare_text"`
	ModelError string          `json:"model_error,omitempty"`
	Map        display.MapView `json:"map"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRenderHandler returns the handler for POST /api/fare/render.
func NewRenderHandler(mgr *session.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := RenderRequest{TripRequest: model.DefaultTripRequest()}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
			return
		}
		if err := req.TripRequest.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		id := sessionID(r)
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		w.Header().Set(SessionHeader, id)

		view, err := mgr.Render(r.Context(), id, req.TripRequest, req.Predict)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		resp := RenderResponse{
			SessionID:  id,
			DistanceKm: view.DistanceKm,
			Features:   view.Features,
			Fare:       view.LastFare,
			FareText:   view.FareText,
			Map:        view.Map,
		}
		if view.ModelErr != nil {
			resp.ModelError = display.ModelMissingText(mgr.Handle().Path())
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// NewDefaultsHandler returns the handler for GET /api/fare/defaults.
func NewDefaultsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, model.DefaultTripRequest())
	})
}

// NewHealthHandler returns the handler for GET /healthz.
func NewHealthHandler(h *prediction.Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := prediction.ModelUnavailable
		if h != nil {
			state = h.State()
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": state.String()})
	})
}

// sessionID picks the header, then the cookie, and otherwise issues a new ID.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
