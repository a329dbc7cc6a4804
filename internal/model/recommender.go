// Package model implements the predictive side of the recommendation engine:
// a standard-scaled logistic-regression classifier that estimates the
// probability a user will like a routine, with an explicit neutral default
// while untrained and a JSON artifact for persistence.
package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/merchanha/crossfit-routines/internal/features"
)

var (
	// ErrNotFound is returned by Load when no artifact exists at the path.
	ErrNotFound = errors.New("model artifact not found")
	// ErrNotTrained is returned by Save when the model has not been trained.
	ErrNotTrained = errors.New("model is not trained")
)

const (
	featCompletionRate = "completion_rate"
	featAvgTimeDelta   = "avg_time_delta"
	featRoutineType    = "routine_type_encoded"
)

const (
	trainEpochs       = 500
	trainLearningRate = 0.3
)

// Sample is one labeled training example.
type Sample struct {
	CompletionRate float64
	AvgTimeDelta   float64
	RoutineType    float64 // used only when the dataset carries routine types
	Preference     int     // 1 = liked, 0 = not liked
}

// Dataset is a labeled training set. WithRoutineType selects the optional
// third feature column for every sample.
type Dataset struct {
	Samples         []Sample
	WithRoutineType bool
}

// ClassCounts returns the number of liked and not-liked samples.
func (d Dataset) ClassCounts() (liked, notLiked int) {
	for _, s := range d.Samples {
		if s.Preference == 1 {
			liked++
		} else {
			notLiked++
		}
	}
	return liked, notLiked
}

// Recommender is a binary classifier over user workout features. The zero
// value (or New()) is untrained: Predict returns the neutral (0.5, 0.5) pair
// and Save fails with ErrNotTrained. Training and loading are out-of-band
// operations; a Recommender is read-only during scoring.
type Recommender struct {
	featureNames []string
	weights      []float64
	bias         float64
	scaler       scaler
	trained      bool

	logger *slog.Logger
}

// New returns an untrained Recommender.
func New() *Recommender {
	return &Recommender{logger: slog.Default()}
}

// Detect selects a classifier implementation by name. Only "logreg" exists
// today; an empty kind selects it.
func Detect(kind string) (*Recommender, error) {
	switch kind {
	case "", "logreg":
		return New(), nil
	default:
		return nil, fmt.Errorf("unknown model type %q", kind)
	}
}

// IsTrained reports whether the model has fitted parameters.
func (r *Recommender) IsTrained() bool {
	return r.trained && r.weights != nil
}

// Train fits the scaler and classifier on the dataset. An empty dataset is
// logged and ignored. Single-class data still fits (the resulting
// predictions are degenerate); the train command checks class variety
// before persisting.
func (r *Recommender) Train(ds Dataset) {
	if len(ds.Samples) == 0 {
		r.logger.Warn("no training data provided")
		return
	}

	names := []string{featCompletionRate, featAvgTimeDelta}
	if ds.WithRoutineType {
		names = append(names, featRoutineType)
	}

	x := make([][]float64, len(ds.Samples))
	y := make([]int, len(ds.Samples))
	for i, s := range ds.Samples {
		row := []float64{s.CompletionRate, s.AvgTimeDelta}
		if ds.WithRoutineType {
			row = append(row, s.RoutineType)
		}
		x[i] = row
		y[i] = s.Preference
	}

	r.scaler.fit(x)
	for i := range x {
		x[i] = r.scaler.transform(x[i])
	}

	r.featureNames = names
	r.weights, r.bias = fitLogistic(x, y)
	r.trained = true

	r.logger.Info("model trained", "samples", len(ds.Samples), "features", len(names))
}

// Predict returns the class probability pair (p_not_liked, p_liked) for the
// given feature vector. An untrained model returns the neutral (0.5, 0.5)
// pair, never an error: callers rely on always receiving a usable pair.
// Features the model was not trained on are zero-filled; a loaded artifact
// with inconsistent shapes yields an error.
func (r *Recommender) Predict(v features.Vector) ([]float64, error) {
	if !r.IsTrained() {
		return []float64{0.5, 0.5}, nil
	}
	if len(r.weights) != len(r.featureNames) || len(r.scaler.Means) != len(r.featureNames) {
		return nil, fmt.Errorf("inconsistent model shape: %d weights for %d features", len(r.weights), len(r.featureNames))
	}

	x := make([]float64, len(r.featureNames))
	for i, name := range r.featureNames {
		switch name {
		case featCompletionRate:
			x[i] = v.CompletionRate
		case featAvgTimeDelta:
			x[i] = v.AvgTimeDelta
		default:
			// routine_type_encoded is not part of the request-time
			// vector; zero-fill to match training shape.
			x[i] = 0
		}
	}
	x = r.scaler.transform(x)

	var z float64
	for i, w := range r.weights {
		z += w * x[i]
	}
	z += r.bias

	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// fitLogistic runs deterministic full-batch gradient descent with balanced
// class weighting, so imbalanced datasets do not collapse to the majority
// class. Zero initialization and fixed epochs keep fits reproducible.
func fitLogistic(x [][]float64, y []int) ([]float64, float64) {
	n := len(x)
	dim := len(x[0])

	var nPos, nNeg int
	for _, label := range y {
		if label == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	wPos, wNeg := 1.0, 1.0
	if nPos > 0 && nNeg > 0 {
		wPos = float64(n) / (2 * float64(nPos))
		wNeg = float64(n) / (2 * float64(nNeg))
	}

	weights := make([]float64, dim)
	var bias float64
	grad := make([]float64, dim)

	for epoch := 0; epoch < trainEpochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		var gradBias float64

		for i, row := range x {
			var z float64
			for j, w := range weights {
				z += w * row[j]
			}
			z += bias

			target := float64(y[i])
			sampleWeight := wNeg
			if y[i] == 1 {
				sampleWeight = wPos
			}
			err := (sigmoid(z) - target) * sampleWeight

			for j, v := range row {
				grad[j] += err * v
			}
			gradBias += err
		}

		for j := range weights {
			weights[j] -= trainLearningRate * grad[j] / float64(n)
		}
		bias -= trainLearningRate * gradBias / float64(n)
	}

	return weights, bias
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// scaler standardizes features to zero mean and unit variance, matching the
// transformation applied at training time.
type scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (s *scaler) fit(x [][]float64) {
	dim := len(x[0])
	s.Means = make([]float64, dim)
	s.Stds = make([]float64, dim)

	for j := 0; j < dim; j++ {
		var sum float64
		for _, row := range x {
			sum += row[j]
		}
		mean := sum / float64(len(x))

		var variance float64
		for _, row := range x {
			d := row[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(x)))
		if std == 0 {
			std = 1 // constant feature; avoid division by zero
		}

		s.Means[j] = mean
		s.Stds[j] = std
	}
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out
}
