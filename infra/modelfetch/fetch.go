// Package modelfetch downloads fare model artifacts from an HTTP artifact
// store, optionally authenticated with OAuth2 client credentials.
package modelfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kilianp07/taxifare/auth"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/infra/logger"
)

// Fetcher downloads an artifact and installs it atomically.
type Fetcher struct {
	Client *http.Client
	Auth   auth.TokenSource
	Log    logger.Logger
}

// New returns a Fetcher. A zero auth.Conf downloads anonymously.
func New(conf auth.Conf) *Fetcher {
	f := &Fetcher{Client: http.DefaultClient, Log: logger.New("modelfetch")}
	if conf.Enabled() {
		f.Auth = auth.NewClientCred(conf)
	}
	return f
}

// Fetch downloads url into dest. The body is written next to dest, decoded
// and built as a model, then renamed over dest so a running service never
// observes a partial file.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) (prediction.Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return prediction.Artifact{}, err
	}
	if f.Auth != nil {
		if err := f.Auth.SetAuthHeader(ctx, req); err != nil {
			return prediction.Artifact{}, fmt.Errorf("authorize: %w", err)
		}
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return prediction.Artifact{}, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return prediction.Artifact{}, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return prediction.Artifact{}, err
	}
	tmp, err := os.CreateTemp(dir, ".download-*"+filepath.Ext(dest))
	if err != nil {
		return prediction.Artifact{}, err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return prediction.Artifact{}, fmt.Errorf("write %s: %w", tmpPath, err)
	}

	art, err := prediction.LoadArtifact(tmpPath)
	if err != nil {
		return prediction.Artifact{}, err
	}
	if _, err := art.Build(); err != nil {
		return prediction.Artifact{}, fmt.Errorf("invalid artifact: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return prediction.Artifact{}, err
	}
	if f.Log != nil {
		f.Log.Infof("installed model %s version %q (%d bytes) at %s", art.Type, art.Version, n, dest)
	}
	return art, nil
}
