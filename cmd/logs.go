package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/predictionlog"
	"github.com/kilianp07/taxifare/pkg/export"
)

var (
	exportFormat  string
	exportSession string
	exportOutcome string
	exportSince   time.Duration
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Prediction log commands",
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export prediction records as JSON or CSV",
	RunE:  runLogsExport,
}

func init() {
	f := logsExportCmd.Flags()
	f.StringVar(&exportFormat, "format", "json", "output format: json or csv")
	f.StringVar(&exportSession, "session", "", "only records of this session")
	f.StringVar(&exportOutcome, "outcome", "", "only records with this outcome")
	f.DurationVar(&exportSince, "since", 0, "only records newer than this duration")
	logsCmd.AddCommand(logsExportCmd)
	rootCmd.AddCommand(logsCmd)
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := predictionlog.Open(predictionlog.Options{
		Backend: cfg.PredictionLog.Backend,
		Path:    cfg.PredictionLog.Path,
		// Rotation settings select the reader that also scans backups.
		MaxSizeMB:  cfg.PredictionLog.MaxSizeMB,
		MaxBackups: cfg.PredictionLog.MaxBackups,
		MaxAgeDays: cfg.PredictionLog.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("prediction log backend is %q", cfg.PredictionLog.Backend)
	}
	defer func() { _ = store.Close() }()

	q := predictionlog.LogQuery{SessionID: exportSession, Outcome: events.Outcome(exportOutcome)}
	if exportSince > 0 {
		q.Start = time.Now().Add(-exportSince)
	}
	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), exportFormat, records)
}
