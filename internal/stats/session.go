// ABOUTME: Aggregate statistics for one workout session.
// ABOUTME: Totals sets, reps, volume and time, and counts categories.
package stats

import "github.com/harperreed/gymlog/internal/models"

// SessionSummary totals the exercises of a session.
type SessionSummary struct {
	TotalExercises int            `json:"totalExercises"`
	TotalSets      int            `json:"totalSets"`
	TotalReps      int            `json:"totalReps"`
	TotalWeight    float64        `json:"totalWeight"` // Σ sets × reps × weight
	TotalTime      float64        `json:"totalTime"`   // seconds
	Categories     map[string]int `json:"categories"`
}

// SessionStats totals a session's exercises. Exercises without a category
// count under models.DefaultCategory.
func SessionStats(exercises []*models.Exercise) SessionSummary {
	sum := SessionSummary{
		TotalExercises: len(exercises),
		Categories:     make(map[string]int),
	}
	for _, e := range exercises {
		sum.TotalSets += e.Sets
		sum.TotalReps += e.Reps
		sum.TotalWeight += e.Volume()
		sum.TotalTime += e.Time

		cat := e.Category
		if cat == "" {
			cat = models.DefaultCategory
		}
		sum.Categories[cat]++
	}
	return sum
}
