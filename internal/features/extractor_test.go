package features

import (
	"testing"

	"github.com/merchanha/crossfit-routines/internal/storage"
)

func fptr(v float64) *float64 { return &v }

func TestExtract_EmptyHistory(t *testing.T) {
	v := Extract(nil, []storage.Routine{{Name: "Cardio Blast"}})

	if v != (Vector{}) {
		t.Errorf("expected zero vector for empty history, got %+v", v)
	}
}

func TestExtract_AggregatesFromFirstRow(t *testing.T) {
	history := []storage.Workout{
		{CompletionRate: 0.75, AvgTimeDelta: -30, TotalWorkouts: 8, CompletedWorkouts: 6},
		{CompletionRate: 0.75, AvgTimeDelta: -30, TotalWorkouts: 8, CompletedWorkouts: 6},
	}

	v := Extract(history, nil)

	if v.CompletionRate != 0.75 {
		t.Errorf("completion rate = %v, want 0.75", v.CompletionRate)
	}
	if v.AvgTimeDelta != -30 {
		t.Errorf("avg time delta = %v, want -30", v.AvgTimeDelta)
	}
	if v.TotalWorkouts != 8 || v.CompletedWorkouts != 6 {
		t.Errorf("counts = %d/%d, want 8/6", v.TotalWorkouts, v.CompletedWorkouts)
	}
}

func TestExtract_RoutineTypeDetection(t *testing.T) {
	history := []storage.Workout{{TotalWorkouts: 1}}

	tests := []struct {
		name        string
		routines    []string
		hasCardio   bool
		hasStrength bool
	}{
		{"cardio keyword", []string{"Morning Cardio"}, true, false},
		{"hiit keyword", []string{"HIIT Express"}, true, false},
		{"strength keyword", []string{"Strength Basics"}, false, true},
		{"weight keyword", []string{"Weight Lifting"}, false, true},
		{"both types", []string{"Endurance Run", "Power Hour"}, true, true},
		{"neither", []string{"Yoga Flow", "Mobility"}, false, false},
		{"case insensitive", []string{"RUNNING club"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routines := make([]storage.Routine, len(tt.routines))
			for i, name := range tt.routines {
				routines[i] = storage.Routine{Name: name}
			}

			v := Extract(history, routines)
			if v.HasCardio != tt.hasCardio {
				t.Errorf("HasCardio = %v, want %v", v.HasCardio, tt.hasCardio)
			}
			if v.HasStrength != tt.hasStrength {
				t.Errorf("HasStrength = %v, want %v", v.HasStrength, tt.hasStrength)
			}
		})
	}
}

func TestExtract_AvgDuration(t *testing.T) {
	history := []storage.Workout{
		{Completed: true, FinalDuration: fptr(1800)}, // 30 min
		{Completed: true, FinalDuration: fptr(1200)}, // 20 min
		{Completed: true, FinalDuration: nil},        // no recorded duration
		{Completed: false, FinalDuration: fptr(600)}, // not completed
	}
	history[0].TotalWorkouts = len(history)

	v := Extract(history, nil)

	if v.AvgDuration != 25 {
		t.Errorf("avg duration = %v min, want 25", v.AvgDuration)
	}
}

func TestExtract_NoRecordedDurations(t *testing.T) {
	history := []storage.Workout{
		{Completed: false},
		{Completed: true}, // completed but duration never recorded
	}

	v := Extract(history, nil)

	if v.AvgDuration != 0 {
		t.Errorf("avg duration = %v, want 0", v.AvgDuration)
	}
}
