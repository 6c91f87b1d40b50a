package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/core/features"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/infra/modelfetch"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model artifact commands",
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print the type, version and schema of a model artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModelInspect,
}

var (
	fetchURL     string
	fetchTimeout time.Duration
)

var modelFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the model artifact from the configured source",
	RunE:  runModelFetch,
}

func init() {
	modelFetchCmd.Flags().StringVar(&fetchURL, "url", "", "artifact URL (overrides model.source_url)")
	modelFetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", time.Minute, "download timeout")
	modelCmd.AddCommand(modelInspectCmd, modelFetchCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelInspect(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Model.Path
	}
	art, err := prediction.LoadArtifact(path)
	if err != nil {
		return err
	}
	if _, err := art.Build(); err != nil {
		return err
	}
	schema := art.Features
	if len(schema) == 0 {
		schema = features.Names[:]
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:     %s\n", path)
	fmt.Fprintf(out, "type:     %s\n", art.Type)
	fmt.Fprintf(out, "version:  %s\n", art.Version)
	fmt.Fprintf(out, "features: %s\n", strings.Join(schema, ", "))
	return nil
}

func runModelFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url := fetchURL
	if url == "" {
		url = cfg.Model.SourceURL
	}
	if url == "" {
		return fmt.Errorf("no artifact URL: set model.source_url or --url")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()
	art, err := modelfetch.New(cfg.Model.Auth).Fetch(ctx, url, cfg.Model.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "installed %s model %q at %s\n", art.Type, art.Version, cfg.Model.Path)
	return nil
}
