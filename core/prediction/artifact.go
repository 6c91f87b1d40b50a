package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/taxifare/core/factory"
	"github.com/kilianp07/taxifare/core/features"
)

// ErrUnknownFormat is returned for artifact files with an unsupported extension.
var ErrUnknownFormat = errors.New("unsupported artifact format")

// Artifact is the serialized form of a trained model.
type Artifact struct {
	// Type selects the registered model implementation.
	Type    string `json:"type" yaml:"type"`
	Version string `json:"version" yaml:"version"`
	// Features optionally declares the input columns the model was trained
	// on. When present it must match features.Names exactly.
	Features []string       `json:"features" yaml:"features"`
	Conf     map[string]any `json:"conf" yaml:"conf"`
}

var models = factory.NewRegistry[FareModel]()

// RegisterModel makes a model type available to artifacts.
func RegisterModel(name string, f factory.Factory[FareModel]) error {
	return models.Register(name, f)
}

// ModelTypes lists the registered model types.
func ModelTypes() []string { return models.Names() }

// LoadArtifact reads a JSON or YAML artifact from path. A missing file is
// reported as ErrModelNotFound.
func LoadArtifact(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return Artifact{}, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	art, err := DecodeArtifact(f, format)
	if err != nil {
		return Artifact{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return art, nil
}

// DecodeArtifact reads an artifact in the given format ("json", "yaml" or "yml").
func DecodeArtifact(r io.Reader, format string) (Artifact, error) {
	var art Artifact
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&art); err != nil {
			return art, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&art); err != nil {
			return art, err
		}
	default:
		return art, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if art.Type == "" {
		return art, errors.New("artifact type is required")
	}
	return art, nil
}

// Build validates the declared schema and instantiates the model.
func (a Artifact) Build() (FareModel, error) {
	if len(a.Features) > 0 {
		if err := features.ValidateSchema(a.Features); err != nil {
			return nil, err
		}
	}
	return models.Create(factory.ModuleConfig{Type: a.Type, Conf: a.Conf})
}
