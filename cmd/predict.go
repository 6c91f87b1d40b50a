package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/core/display"
	"github.com/kilianp07/taxifare/core/model"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/core/session"
)

var (
	tripFlags = model.DefaultTripRequest()
	modelPath string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate one fare from the command line",
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&tripFlags.Pickup.Lat, "pickup-lat", tripFlags.Pickup.Lat, "pickup latitude")
	f.Float64Var(&tripFlags.Pickup.Lon, "pickup-lon", tripFlags.Pickup.Lon, "pickup longitude")
	f.Float64Var(&tripFlags.Dropoff.Lat, "dropoff-lat", tripFlags.Dropoff.Lat, "dropoff latitude")
	f.Float64Var(&tripFlags.Dropoff.Lon, "dropoff-lon", tripFlags.Dropoff.Lon, "dropoff longitude")
	f.IntVar(&tripFlags.PassengerCount, "passengers", tripFlags.PassengerCount, "passenger count (1-6)")
	f.IntVar(&tripFlags.Hour, "hour", tripFlags.Hour, "pickup hour (0-23)")
	f.IntVar(&tripFlags.DayOfWeek, "day", tripFlags.DayOfWeek, "day of week, 0 is Monday")
	f.StringVar(&modelPath, "model", "", "model artifact path (overrides model.path)")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	req := tripFlags
	if err := req.Validate(); err != nil {
		return err
	}
	path := modelPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Model.Path
	}
	h, err := prediction.LoadHandle(path)
	if err != nil {
		return err
	}

	view, err := session.New(uuid.NewString(), h).Render(cmd.Context(), req, true)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Distance: %.2f km\n", view.DistanceKm)
	b, err := json.Marshal(view.Features)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Features: %s\n", b)
	if view.ModelErr != nil {
		fmt.Fprintln(out, display.ModelMissingText(path))
		return nil
	}
	fmt.Fprintln(out, view.FareText)
	return nil
}
