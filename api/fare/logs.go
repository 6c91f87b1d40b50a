package fare

import (
	"net/http"
	"time"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/predictionlog"
	"github.com/kilianp07/taxifare/pkg/export"
)

// NewLogHandler returns an HTTP handler exposing prediction logs via GET /api/fare/logs.
// Results are JSON unless format=csv is given. Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store predictionlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			if r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := predictionlog.LogQuery{}
		if s := r.URL.Query().Get("start"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid start", http.StatusBadRequest)
				return
			}
			q.Start = t
		}
		if s := r.URL.Query().Get("end"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid end", http.StatusBadRequest)
				return
			}
			q.End = t
		}
		q.SessionID = r.URL.Query().Get("session_id")
		q.Outcome = events.Outcome(r.URL.Query().Get("outcome"))
		format := r.URL.Query().Get("format")
		contentType := "application/json"
		switch format {
		case "", "json":
		case "csv":
			contentType = "text/csv"
		default:
			http.Error(w, "invalid format", http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if err := export.Write(w, format, records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
