package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// artifact is the on-disk representation of a trained model. Model weights,
// scaler parameters, and the trained flag persist as one unit so a partial
// write can never produce a loadable-but-inconsistent file.
type artifact struct {
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Scaler       scaler    `json:"scaler"`
	// Pointer so a legacy artifact without the flag is distinguishable
	// from an explicit false.
	IsTrained *bool `json:"is_trained"`
}

// Save persists the trained model atomically (temp file + rename) at path,
// creating parent directories as needed. Returns ErrNotTrained if the model
// has no fitted parameters.
func (r *Recommender) Save(path string) error {
	if !r.IsTrained() {
		return fmt.Errorf("saving model: %w", ErrNotTrained)
	}

	trained := r.trained
	data, err := json.MarshalIndent(artifact{
		FeatureNames: r.featureNames,
		Weights:      r.weights,
		Bias:         r.bias,
		Scaler:       r.scaler,
		IsTrained:    &trained,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model artifact: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating model directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing model artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing model artifact: %w", err)
	}

	r.logger.Info("model saved", "path", path)
	return nil
}

// Load restores model weights, scaler parameters, and the trained flag from
// the artifact at path. Returns ErrNotFound when the artifact is absent.
// Legacy artifacts without a trained flag default to trained.
func (r *Recommender) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("reading model artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decoding model artifact: %w", err)
	}
	if len(a.Weights) != len(a.FeatureNames) || len(a.Scaler.Means) != len(a.FeatureNames) || len(a.Scaler.Stds) != len(a.FeatureNames) {
		return fmt.Errorf("inconsistent model artifact: %d weights, %d features", len(a.Weights), len(a.FeatureNames))
	}

	trained := true
	if a.IsTrained != nil {
		trained = *a.IsTrained
	} else {
		r.logger.Warn("model artifact has no trained flag, assuming trained", "path", path)
	}

	r.featureNames = a.FeatureNames
	r.weights = a.Weights
	r.bias = a.Bias
	r.scaler = a.Scaler
	r.trained = trained

	r.logger.Info("model loaded", "path", path, "trained", trained)
	return nil
}
