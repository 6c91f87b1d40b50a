package fare

import (
	"net/http"

	"github.com/kilianp07/taxifare/core/predictionlog"
	"github.com/kilianp07/taxifare/core/session"
)

// Register mounts the fare endpoints on mux. The log endpoint is only
// mounted when logs is non-nil.
func Register(mux *http.ServeMux, mgr *session.Manager, logs predictionlog.LogStore, logToken string) {
	mux.Handle("/api/fare/render", NewRenderHandler(mgr))
	mux.Handle("/api/fare/defaults", NewDefaultsHandler())
	mux.Handle("/healthz", NewHealthHandler(mgr.Handle()))
	if logs != nil {
		mux.Handle("/api/fare/logs", NewLogHandler(logs, logToken))
	}
}
