package recommend

// Static template catalog for synthesized routines. Each entry is keyed by a
// detected user weakness; content is fixed data, not computed. The functions
// return fresh values so callers can never mutate the catalog.

func quickWorkoutTemplate() NewRecommendation {
	return NewRecommendation{
		Name:              "Quick 20-Minute HIIT",
		Description:       "A fast-paced workout designed to improve time efficiency and build consistency.",
		EstimatedDuration: 20,
		Exercises: []Exercise{
			{Name: "Burpees", Sets: 3, Reps: 10, Notes: "Keep your back straight"},
			{Name: "Mountain Climbers", Sets: 3, Reps: 20, Notes: "Maintain steady pace"},
			{Name: "Jump Squats", Sets: 3, Reps: 15, Notes: "Land softly"},
			{Name: "Plank Hold", Sets: 3, Reps: 30, Notes: "Hold for 30 seconds"},
		},
		Reasoning: "This shorter routine will help you build consistency and improve completion rates.",
		Priority:  9,
	}
}

func timeEfficientTemplate() NewRecommendation {
	return NewRecommendation{
		Name:              "Time-Efficient Power Session",
		Description:       "A focused workout designed to maximize results in minimal time.",
		EstimatedDuration: 25,
		Exercises: []Exercise{
			{Name: "Thrusters", Sets: 4, Reps: 8, Notes: "Full range of motion"},
			{Name: "Kettlebell Swings", Sets: 3, Reps: 15, Notes: "Use proper form"},
			{Name: "Box Jumps", Sets: 3, Reps: 10, Notes: "Step down safely"},
			{Name: "Battle Ropes", Sets: 3, Reps: 30, Notes: "30 seconds on, 30 seconds rest"},
		},
		Reasoning: "This routine focuses on efficiency and will help you improve time management.",
		Priority:  8,
	}
}

func cardioTemplate() NewRecommendation {
	return NewRecommendation{
		Name:              "Cardio Endurance Builder",
		Description:       "A cardio-focused routine to improve endurance and cardiovascular fitness.",
		EstimatedDuration: 30,
		Exercises: []Exercise{
			{Name: "Running", Sets: 1, Reps: 1, Notes: "20 minutes steady pace"},
			{Name: "Jump Rope", Sets: 3, Reps: 100, Notes: "Maintain rhythm"},
			{Name: "High Knees", Sets: 3, Reps: 30, Notes: "Lift knees to hip height"},
			{Name: "Burpees", Sets: 3, Reps: 10, Notes: "Full movement, maintain pace"},
		},
		Reasoning: "This routine targets cardio endurance and helps build cardiovascular fitness.",
		Priority:  8,
	}
}

func strengthTemplate() NewRecommendation {
	return NewRecommendation{
		Name:              "Strength Foundation Builder",
		Description:       "A strength-focused routine to build muscle and power.",
		EstimatedDuration: 35,
		Exercises: []Exercise{
			{Name: "Deadlifts", Sets: 4, Reps: 6, Notes: "Keep back straight"},
			{Name: "Bench Press", Sets: 4, Reps: 8, Notes: "Control the weight"},
			{Name: "Squats", Sets: 4, Reps: 10, Notes: "Full depth"},
			{Name: "Pull-ups", Sets: 3, Reps: 8, Notes: "Full range of motion"},
		},
		Reasoning: "This routine focuses on building strength and power.",
		Priority:  8,
	}
}

func balancedTemplate() NewRecommendation {
	return NewRecommendation{
		Name:              "Full Body Blast",
		Description:       "A balanced full-body workout targeting all major muscle groups.",
		EstimatedDuration: 30,
		Exercises: []Exercise{
			{Name: "Burpees", Sets: 3, Reps: 10, Notes: "Full movement"},
			{Name: "Push-ups", Sets: 3, Reps: 15, Notes: "Keep core engaged"},
			{Name: "Squats", Sets: 3, Reps: 20, Notes: "Full depth"},
			{Name: "Plank", Sets: 3, Reps: 45, Notes: "Hold for 45 seconds"},
			{Name: "Mountain Climbers", Sets: 3, Reps: 20, Notes: "Steady pace"},
		},
		Reasoning: "This balanced routine provides a complete full-body workout.",
		Priority:  7,
	}
}
