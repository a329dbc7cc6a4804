// Package training builds the labeled dataset the predictive model is fitted
// on, and generates synthetic workout history for bootstrapping it.
package training

import (
	"github.com/merchanha/crossfit-routines/internal/model"
	"github.com/merchanha/crossfit-routines/internal/storage"
)

// Label thresholds: a user "likes" a routine when they completed it within
// two minutes of the estimate and have done it at least twice.
const (
	likedMaxTimeDelta = 120 // seconds over estimate
	likedMinFrequency = 2
)

// BuildDataset labels completed-workout rows into a training dataset.
// Preference is 1 when the workout finished within the time threshold and
// the user has repeated the routine, 0 otherwise. The routine-type feature
// is not populated here; the model zero-fills it consistently.
func BuildDataset(rows []storage.TrainingRow) model.Dataset {
	frequency := make(map[[2]string]int, len(rows))
	for _, r := range rows {
		frequency[[2]string{r.UserID, r.RoutineID}]++
	}

	samples := make([]model.Sample, 0, len(rows))
	for _, r := range rows {
		timeDelta := r.FinalDuration - float64(r.EstimatedDuration*60)

		preference := 0
		if timeDelta < likedMaxTimeDelta && frequency[[2]string{r.UserID, r.RoutineID}] >= likedMinFrequency {
			preference = 1
		}

		samples = append(samples, model.Sample{
			CompletionRate: r.CompletionRate,
			AvgTimeDelta:   r.AvgTimeDelta,
			Preference:     preference,
		})
	}

	return model.Dataset{Samples: samples}
}
