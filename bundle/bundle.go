// Package bundle persists a fitted recommender as a single JSON file.
// The standardizer, the classifier and the label codec are only valid
// together, so they travel as one artifact and a file missing any of
// the three is rejected on load.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"soilsense/classify"
)

// FormatVersion is bumped on any incompatible change to the file
// layout
const FormatVersion = 1

var (
	ErrIncomplete   = errors.New("bundle is missing a component")
	ErrBadVersion   = errors.New("unsupported bundle format version")
	ErrInconsistent = errors.New("bundle components disagree on dimensions")
)

// Bundle is a fitted recommender ready for inference
type Bundle struct {
	Version int                    `json:"version"`
	Scaler  *classify.Standardizer `json:"scaler"`
	Model   *classify.Classifier   `json:"model"`
	Labels  *classify.LabelCodec   `json:"labels"`
}

// New assembles a bundle from freshly fitted components
func New(scaler *classify.Standardizer, model *classify.Classifier, labels *classify.LabelCodec) (*Bundle, error) {
	b := &Bundle{
		Version: FormatVersion,
		Scaler:  scaler,
		Model:   model,
		Labels:  labels,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) validate() error {
	if b.Scaler == nil || b.Model == nil || b.Labels == nil {
		return ErrIncomplete
	}
	if b.Version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, b.Version)
	}
	if len(b.Model.X) == 0 || len(b.Scaler.Mean) == 0 || b.Labels.Len() == 0 {
		return ErrIncomplete
	}
	if len(b.Model.X[0]) != len(b.Scaler.Mean) {
		return fmt.Errorf("%w: model has %d features, scaler has %d",
			ErrInconsistent, len(b.Model.X[0]), len(b.Scaler.Mean))
	}
	if b.Model.Classes > b.Labels.Len() {
		return fmt.Errorf("%w: model has %d classes, codec has %d",
			ErrInconsistent, b.Model.Classes, b.Labels.Len())
	}
	// A hand-edited or truncated file can carry hyperparameters the
	// reference set cannot satisfy; Predict would index past the
	// neighbor or vote slices.
	if b.Model.K < 1 || b.Model.K > len(b.Model.X) {
		return fmt.Errorf("%w: k=%d with %d reference rows",
			ErrInconsistent, b.Model.K, len(b.Model.X))
	}
	if len(b.Model.Y) != len(b.Model.X) {
		return fmt.Errorf("%w: %d reference rows, %d labels",
			ErrInconsistent, len(b.Model.X), len(b.Model.Y))
	}
	for i, label := range b.Model.Y {
		if label < 0 || label >= b.Model.Classes {
			return fmt.Errorf("%w: reference label %d at row %d outside %d classes",
				ErrInconsistent, label, i, b.Model.Classes)
		}
	}
	return nil
}

// Save writes the bundle as indented JSON
func (b *Bundle) Save(path string) error {
	if err := b.validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}

// Load reads and validates a bundle file
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Recommend runs the full inference path: standardize a raw feature
// vector, classify it and decode the species name.
func (b *Bundle) Recommend(vec []float64) (string, error) {
	scaled, err := b.Scaler.Transform(vec)
	if err != nil {
		return "", err
	}
	idx, err := b.Model.Predict(scaled)
	if err != nil {
		return "", err
	}
	return b.Labels.Decode(idx)
}
