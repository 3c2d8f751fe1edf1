// ABOUTME: Grouping, ranking and personal records over logged sets.
// ABOUTME: Pure functions; callers pass a fresh snapshot of the log.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

// Group is every set logged under one exercise name.
type Group struct {
	Name string
	Sets []*models.Set
}

// GroupByExercise groups sets by exact exercise name. Groups appear in the
// order their names were first seen.
func GroupByExercise(sets []*models.Set) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, s := range sets {
		i, ok := index[s.Exercise]
		if !ok {
			i = len(groups)
			index[s.Exercise] = i
			groups = append(groups, Group{Name: s.Exercise})
		}
		groups[i].Sets = append(groups[i].Sets, s)
	}
	return groups
}

// TopExercise is one entry of the frequency ranking.
type TopExercise struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	TotalVolume float64 `json:"totalVolume"`
}

// TopExercises ranks exercises by how many sets were logged. Ties keep
// first-seen order. n <= 0 returns every exercise.
func TopExercises(sets []*models.Set, n int) []TopExercise {
	groups := GroupByExercise(sets)
	out := make([]TopExercise, 0, len(groups))
	for _, g := range groups {
		te := TopExercise{Name: g.Name, Count: len(g.Sets)}
		for _, s := range g.Sets {
			if w, ok := s.AsWeighted(); ok {
				te.TotalVolume += w.Volume()
			}
		}
		out = append(out, te)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PersonalRecord is the best set of one exercise by its type's primary metric.
type PersonalRecord struct {
	Exercise    string         `json:"exercise"`
	Type        models.SetType `json:"type"`
	Weight      float64        `json:"weight,omitempty"`
	Reps        int            `json:"reps,omitempty"`
	AddedWeight float64        `json:"addedWeight,omitempty"`
	Duration    float64        `json:"duration,omitempty"`
	Distance    *float64       `json:"distance,omitempty"`
	SetID       string         `json:"setId"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Value returns the metric the record was chosen by.
func (r PersonalRecord) Value() float64 {
	switch r.Type {
	case models.SetBodyweight:
		return float64(r.Reps)
	case models.SetTimed:
		return r.Duration
	default:
		return r.Weight
	}
}

// PersonalRecords returns one record per exercise name.
//
// Weighted records are the heaviest set, bodyweight the most reps, and timed
// the longest duration; the first set reaching the maximum wins. The result is
// sorted by value descending among records of the same type, while records of
// different types are ordered alphabetically by name. That mixed comparison is
// not a total order, so the relative position of types in a mixed list depends
// on input order.
func PersonalRecords(sets []*models.Set) []PersonalRecord {
	var records []PersonalRecord
	for _, g := range GroupByExercise(sets) {
		best := bestOf(g.Sets)
		if best == nil {
			continue
		}
		records = append(records, recordFrom(best))
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Type == b.Type {
			return a.Value() > b.Value()
		}
		return a.Exercise < b.Exercise
	})
	return records
}

// bestOf picks the best set among those sharing the first set's type.
func bestOf(sets []*models.Set) *models.Set {
	if len(sets) == 0 {
		return nil
	}
	t := sets[0].Type()
	var best *models.Set
	bestVal := math.Inf(-1)
	for _, s := range sets {
		if s.Type() != t {
			continue
		}
		if v := primaryValue(s); v > bestVal {
			best, bestVal = s, v
		}
	}
	return best
}

func primaryValue(s *models.Set) float64 {
	switch m := s.Metrics.(type) {
	case models.Weighted:
		return m.Weight
	case models.Bodyweight:
		return float64(m.Reps)
	case models.Timed:
		return m.Duration
	}
	return 0
}

func recordFrom(s *models.Set) PersonalRecord {
	r := PersonalRecord{
		Exercise:  s.Exercise,
		Type:      s.Type(),
		SetID:     s.ID,
		Timestamp: s.Timestamp,
	}
	switch m := s.Metrics.(type) {
	case models.Weighted:
		r.Weight, r.Reps = m.Weight, m.Reps
	case models.Bodyweight:
		r.Reps, r.AddedWeight = m.Reps, m.AddedWeight
	case models.Timed:
		r.Duration, r.Distance = m.Duration, m.Distance
	}
	return r
}

// NewRecord describes a weight that beats the previous best.
type NewRecord struct {
	Exercise       string  `json:"exercise"`
	PreviousWeight float64 `json:"previousWeight"`
	NewWeight      float64 `json:"newWeight"`
	Improvement    float64 `json:"improvement"`
}

// CheckNewRecord compares weight against the heaviest prior weighted set of
// the exercise (name compared case-insensitively). It returns nil when there
// are no prior sets or the weight does not strictly exceed the previous best.
func CheckNewRecord(prior []*models.Set, exercise string, weight float64) *NewRecord {
	found := false
	best := math.Inf(-1)
	for _, s := range prior {
		if !strings.EqualFold(s.Exercise, exercise) {
			continue
		}
		w, ok := s.AsWeighted()
		if !ok {
			continue
		}
		found = true
		if w.Weight > best {
			best = w.Weight
		}
	}
	if !found || weight <= best {
		return nil
	}
	return &NewRecord{
		Exercise:       exercise,
		PreviousWeight: best,
		NewWeight:      weight,
		Improvement:    round(weight-best, 2),
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return round(v, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
