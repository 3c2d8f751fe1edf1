// ABOUTME: Set model for the flat exercise log.
// ABOUTME: Metrics form a closed sum type: Weighted, Bodyweight, or Timed.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SetType discriminates the metric group carried by a Set.
type SetType string

const (
	SetWeighted   SetType = "weighted"
	SetBodyweight SetType = "bodyweight"
	SetTimed      SetType = "timed"
)

// MaxExerciseNameLen is the maximum length of a sanitized exercise name, in runes.
const MaxExerciseNameLen = 40

// AllSetTypes lists every valid set type.
var AllSetTypes = []SetType{SetWeighted, SetBodyweight, SetTimed}

// SetTypeLabels maps set types to display labels.
var SetTypeLabels = map[SetType]string{
	SetWeighted:   "Weight",
	SetBodyweight: "Bodyweight",
	SetTimed:      "Time",
}

// IsValidSetType checks if a string is a valid set type.
func IsValidSetType(s string) bool {
	for _, st := range AllSetTypes {
		if string(st) == s {
			return true
		}
	}
	return false
}

// ParseSetType converts a string into a SetType.
// An empty string yields SetWeighted, the type of records written before types existed.
func ParseSetType(s string) (SetType, error) {
	if s == "" {
		return SetWeighted, nil
	}
	if !IsValidSetType(s) {
		return "", fmt.Errorf("unknown set type: %q", s)
	}
	return SetType(s), nil
}

// Metrics is the type-specific part of a Set. Only the variants in this
// package implement it.
type Metrics interface {
	Type() SetType
	isMetrics()
}

// Weighted is a set performed with external load.
type Weighted struct {
	Weight float64
	Reps   int
}

func (Weighted) Type() SetType { return SetWeighted }
func (Weighted) isMetrics()    {}

// Volume returns weight × reps.
func (w Weighted) Volume() float64 {
	return w.Weight * float64(w.Reps)
}

// Bodyweight is a set performed with body weight plus optional added load.
type Bodyweight struct {
	Reps        int
	AddedWeight float64
	BodyWeight  float64 // profile weight at the time of logging
}

func (Bodyweight) Type() SetType { return SetBodyweight }
func (Bodyweight) isMetrics()    {}

// Timed is a duration-based set. Distance is in km and elevation in meters.
type Timed struct {
	Duration  float64 // minutes
	Distance  *float64
	Elevation *float64
}

func (Timed) Type() SetType { return SetTimed }
func (Timed) isMetrics()    {}

// Set is one logged performance of an exercise.
type Set struct {
	ID        string
	Exercise  string
	Timestamp time.Time
	Metrics   Metrics
}

// NewSet creates a Set with a generated ID and the current timestamp.
func NewSet(exercise string, m Metrics) *Set {
	return &Set{
		ID:        uuid.New().String(),
		Exercise:  exercise,
		Timestamp: NowMillis(),
		Metrics:   m,
	}
}

// NowMillis returns the current time truncated to millisecond precision,
// which is the precision sets are stored with.
func NowMillis() time.Time {
	return time.UnixMilli(time.Now().UnixMilli())
}

// Type returns the set's type. Sets without metrics count as weighted.
func (s *Set) Type() SetType {
	if s.Metrics == nil {
		return SetWeighted
	}
	return s.Metrics.Type()
}

// AsWeighted returns the weighted metrics if the set is weighted.
func (s *Set) AsWeighted() (Weighted, bool) {
	w, ok := s.Metrics.(Weighted)
	return w, ok
}

// AsBodyweight returns the bodyweight metrics if the set is a bodyweight set.
func (s *Set) AsBodyweight() (Bodyweight, bool) {
	b, ok := s.Metrics.(Bodyweight)
	return b, ok
}

// AsTimed returns the timed metrics if the set is timed.
func (s *Set) AsTimed() (Timed, bool) {
	t, ok := s.Metrics.(Timed)
	return t, ok
}

// FlatSet is the flat field layout shared by storage and file formats.
// Fields of the other types are nil.
type FlatSet struct {
	ID          string
	Exercise    string
	Type        SetType
	Weight      *float64
	Reps        *int
	AddedWeight *float64
	BodyWeight  *float64
	Duration    *float64
	Distance    *float64
	Elevation   *float64
	Timestamp   time.Time
}

// Flatten converts a Set into its flat layout.
func (s *Set) Flatten() FlatSet {
	f := FlatSet{
		ID:        s.ID,
		Exercise:  s.Exercise,
		Type:      s.Type(),
		Timestamp: s.Timestamp,
	}
	switch m := s.Metrics.(type) {
	case Weighted:
		f.Weight = ptr(m.Weight)
		f.Reps = ptr(m.Reps)
	case Bodyweight:
		f.Reps = ptr(m.Reps)
		f.AddedWeight = ptr(m.AddedWeight)
		f.BodyWeight = ptr(m.BodyWeight)
	case Timed:
		f.Duration = ptr(m.Duration)
		f.Distance = m.Distance
		f.Elevation = m.Elevation
	}
	return f
}

// HasPrimaryMetric reports whether the fields that define the set's type are present and positive.
func (f FlatSet) HasPrimaryMetric() bool {
	switch f.Type {
	case SetBodyweight:
		return f.Reps != nil && *f.Reps > 0
	case SetTimed:
		return f.Duration != nil && *f.Duration > 0
	default:
		return f.Weight != nil && f.Reps != nil && *f.Weight > 0 && *f.Reps > 0
	}
}

// Set converts the flat layout back into a Set. Fields that do not belong to
// the type are ignored; missing fields read as zero.
func (f FlatSet) Set() (*Set, error) {
	t, err := ParseSetType(string(f.Type))
	if err != nil {
		return nil, err
	}

	s := &Set{ID: f.ID, Exercise: f.Exercise, Timestamp: f.Timestamp}
	switch t {
	case SetWeighted:
		s.Metrics = Weighted{Weight: deref(f.Weight), Reps: deref(f.Reps)}
	case SetBodyweight:
		s.Metrics = Bodyweight{Reps: deref(f.Reps), AddedWeight: deref(f.AddedWeight), BodyWeight: deref(f.BodyWeight)}
	case SetTimed:
		s.Metrics = Timed{Duration: deref(f.Duration), Distance: f.Distance, Elevation: f.Elevation}
	}
	return s, nil
}

// setDoc is the stored JSON document of a Set. Timestamps are epoch milliseconds.
type setDoc struct {
	ID          string   `json:"id,omitempty"`
	Exercise    string   `json:"exercise"`
	Type        SetType  `json:"type,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	Reps        *int     `json:"reps,omitempty"`
	AddedWeight *float64 `json:"addedWeight,omitempty"`
	BodyWeight  *float64 `json:"bodyWeight,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	Elevation   *float64 `json:"elevation,omitempty"`
	Timestamp   int64    `json:"timestamp"`
}

// MarshalJSON encodes the set in its stored document form.
func (s Set) MarshalJSON() ([]byte, error) {
	f := s.Flatten()
	return json.Marshal(setDoc{
		ID:          f.ID,
		Exercise:    f.Exercise,
		Type:        f.Type,
		Weight:      f.Weight,
		Reps:        f.Reps,
		AddedWeight: f.AddedWeight,
		BodyWeight:  f.BodyWeight,
		Duration:    f.Duration,
		Distance:    f.Distance,
		Elevation:   f.Elevation,
		Timestamp:   f.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON decodes the stored document form.
func (s *Set) UnmarshalJSON(data []byte) error {
	var doc setDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := FlatSet{
		ID:          doc.ID,
		Exercise:    doc.Exercise,
		Type:        doc.Type,
		Weight:      doc.Weight,
		Reps:        doc.Reps,
		AddedWeight: doc.AddedWeight,
		BodyWeight:  doc.BodyWeight,
		Duration:    doc.Duration,
		Distance:    doc.Distance,
		Elevation:   doc.Elevation,
		Timestamp:   time.UnixMilli(doc.Timestamp),
	}.Set()
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
