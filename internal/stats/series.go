// ABOUTME: Time series and progression helpers for one exercise.
// ABOUTME: Feeds chart rendering and the next-weight hint.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

// Point is one set of an exercise plotted over time. Fields that do not
// apply to the set's type are zero.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Weight    float64   `json:"weight,omitempty"`
	Reps      int       `json:"reps,omitempty"`
	Volume    float64   `json:"volume,omitempty"`
	OneRM     float64   `json:"oneRm,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Distance  float64   `json:"distance,omitempty"`
}

// ExerciseSeries returns the sets of one exercise in ascending time order.
// Weighted points carry a 1RM estimate using formula; formulas that are
// singular for the rep count leave OneRM at zero.
func ExerciseSeries(sets []*models.Set, exercise string, formula Formula) []Point {
	var points []Point
	for _, s := range sets {
		if !strings.EqualFold(s.Exercise, exercise) {
			continue
		}
		p := Point{Timestamp: s.Timestamp}
		switch m := s.Metrics.(type) {
		case models.Weighted:
			p.Weight, p.Reps, p.Volume = m.Weight, m.Reps, m.Volume()
			if e, err := OneRepMax(m.Weight, m.Reps, formula); err == nil {
				p.OneRM = Round1(e.Value)
			}
		case models.Bodyweight:
			p.Reps, p.Weight = m.Reps, m.AddedWeight
		case models.Timed:
			p.Duration = m.Duration
			if m.Distance != nil {
				p.Distance = *m.Distance
			}
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// DayStats averages one exercise's sets within a day.
type DayStats struct {
	Day         time.Time `json:"day"`
	Sets        int       `json:"sets"`
	AvgWeight   float64   `json:"avgWeight"`
	AvgReps     float64   `json:"avgReps"`
	AvgDuration float64   `json:"avgDuration"`
}

// DailyHistory buckets an exercise's sets by calendar day in loc and
// averages each bucket. Days are returned in ascending order.
func DailyHistory(sets []*models.Set, exercise string, loc *time.Location) []DayStats {
	if loc == nil {
		loc = time.Local
	}

	day2sets := make(map[time.Time][]*models.Set)
	for _, s := range sets {
		if !strings.EqualFold(s.Exercise, exercise) {
			continue
		}
		t := s.Timestamp.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		day2sets[day] = append(day2sets[day], s)
	}

	out := make([]DayStats, 0, len(day2sets))
	for day, daySets := range day2sets {
		var weight, reps, duration float64
		for _, s := range daySets {
			f := s.Flatten()
			if f.Weight != nil {
				weight += *f.Weight
			} else if f.AddedWeight != nil {
				weight += *f.AddedWeight
			}
			if f.Reps != nil {
				reps += float64(*f.Reps)
			}
			if f.Duration != nil {
				duration += *f.Duration
			}
		}
		n := float64(len(daySets))
		out = append(out, DayStats{
			Day:         day,
			Sets:        len(daySets),
			AvgWeight:   Round1(weight / n),
			AvgReps:     Round1(reps / n),
			AvgDuration: Round1(duration / n),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// ProgressionStep is the load added by SuggestNextWeight.
const ProgressionStep = 2.5

// SuggestNextWeight proposes last weight + 2.5 kg when the last set was
// weighted with at least 5 reps and the planned set also has at least 5 reps.
// The second return value is false when no suggestion applies.
func SuggestNextWeight(last *models.Set, plannedReps int) (float64, bool) {
	if last == nil || plannedReps < 5 {
		return 0, false
	}
	w, ok := last.AsWeighted()
	if !ok || w.Reps < 5 {
		return 0, false
	}
	return Round1(w.Weight + ProgressionStep), true
}
