package modelfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/auth"
	"github.com/kilianp07/taxifare/infra/logger"
)

const artifactYAML = `type: linear
version: "v2"
features: [passenger_count, hour, day_of_week, is_weekend, distance_km]
conf:
  intercept: 2.5
  coefficients: [0.5, 0.02, 0.0, 0.8, 1.6]
`

func TestFetch_WithClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/model.yaml", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(artifactYAML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(auth.Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL + "/token"})
	f.Log = logger.NopLogger{}
	dest := filepath.Join(t.TempDir(), "data", "taxi_fare_model.yaml")

	art, err := f.Fetch(context.Background(), srv.URL+"/model.yaml", dest)
	require.NoError(t, err)
	assert.Equal(t, "linear", art.Type)
	assert.Equal(t, "v2", art.Version)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, artifactYAML, string(b))
}

func TestFetch_RejectsInvalidArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("type: linear\nfeatures: [hour, distance_km]\nconf:\n  coefficients: [1, 2]\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(dest, []byte(artifactYAML), 0o644))

	f := &Fetcher{Client: srv.Client()}
	_, err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, artifactYAML, string(b), "existing artifact must be left untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary download must be removed")
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := &Fetcher{}
	_, err := f.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "m.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
