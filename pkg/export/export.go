package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/taxifare/core/features"
	"github.com/kilianp07/taxifare/core/predictionlog"
)

// Header is the CSV header row. The feature columns follow the model schema.
var Header = append([]string{"timestamp", "session_id", "outcome", "fare", "model_version", "latency_ms"}, features.Names[:]...)

// Write encodes records in the given format, "json" or "csv".
func Write(w io.Writer, format string, records []predictionlog.LogRecord) error {
	switch format {
	case "", "json":
		return WriteJSON(w, records)
	case "csv":
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the prediction records to w as a JSON array.
func WriteJSON(w io.Writer, records []predictionlog.LogRecord) error {
	if records == nil {
		records = []predictionlog.LogRecord{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteCSV writes one row per prediction record.
func WriteCSV(w io.Writer, records []predictionlog.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.SessionID,
			string(r.Outcome),
			strconv.FormatFloat(r.Fare, 'f', -1, 64),
			r.ModelVersion,
			strconv.FormatFloat(r.LatencyMS, 'f', -1, 64),
		}
		for _, v := range r.Features.Values() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
