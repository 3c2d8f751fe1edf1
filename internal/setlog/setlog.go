// ABOUTME: Flat exercise log: free-standing sets over the record store.
// ABOUTME: Enforces sanitized names and one type per exercise name.
package setlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/schema"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

const maxNameLen = models.MaxExerciseNameLen

// SetInput describes a set to log. ID and Timestamp are generated when zero.
type SetInput struct {
	ID        string
	Exercise  string
	Timestamp time.Time
	Metrics   models.Metrics
}

// SetPatch holds the fields to replace on an existing set. Nil fields are kept.
// Replacing Metrics with another variant drops the old variant's fields.
type SetPatch struct {
	Exercise  *string
	Timestamp *time.Time
	Metrics   models.Metrics
}

// Log manages sets in the sets collection.
type Log struct {
	store    store.Store
	migrator *schema.Migrator
	log      logrus.FieldLogger
}

// New creates a Log.
func New(s store.Store, m *schema.Migrator, log logrus.FieldLogger) *Log {
	return &Log{store: s, migrator: m, log: log}
}

// AddSet validates and stores a new set.
func (l *Log) AddSet(ctx context.Context, in SetInput) (*models.Set, error) {
	name := SanitizeName(in.Exercise)
	if name == "" {
		return nil, &ValidationError{Field: "exercise", Reason: "name is empty after sanitization"}
	}
	if err := ValidateMetrics(in.Metrics); err != nil {
		return nil, err
	}

	existing, err := l.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	if err := CheckType(existing, name, in.Metrics.Type(), ""); err != nil {
		return nil, err
	}

	s := &models.Set{
		ID:        in.ID,
		Exercise:  name,
		Timestamp: in.Timestamp,
		Metrics:   in.Metrics,
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = models.NowMillis()
	} else {
		s.Timestamp = time.UnixMilli(s.Timestamp.UnixMilli())
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode set: %w", err)
	}
	if err := l.store.Add(ctx, models.CollectionSets, store.Record{ID: s.ID, Data: data}); err != nil {
		return nil, fmt.Errorf("add set: %w", err)
	}

	l.log.WithFields(logrus.Fields{"id": s.ID, "exercise": s.Exercise, "type": s.Type()}).Debug("added set")
	return s, nil
}

// GetSet returns the set with the given ID, or nil if there is none.
func (l *Log) GetSet(ctx context.Context, id string) (*models.Set, error) {
	rec, err := l.store.Get(ctx, models.CollectionSets, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	s, err := DecodeSet(rec)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSet applies patch to the set with the given ID. It returns false
// when the set does not exist.
func (l *Log) UpdateSet(ctx context.Context, id string, patch SetPatch) (bool, error) {
	s, err := l.GetSet(ctx, id)
	if err != nil {
		return false, err
	}
	if s == nil {
		return false, nil
	}

	if patch.Exercise != nil {
		name := SanitizeName(*patch.Exercise)
		if name == "" {
			return false, &ValidationError{Field: "exercise", Reason: "name is empty after sanitization"}
		}
		s.Exercise = name
	}
	if patch.Metrics != nil {
		if err := ValidateMetrics(patch.Metrics); err != nil {
			return false, err
		}
		s.Metrics = patch.Metrics
	}
	if patch.Timestamp != nil {
		s.Timestamp = time.UnixMilli(patch.Timestamp.UnixMilli())
	}

	all, err := l.ListSets(ctx)
	if err != nil {
		return false, err
	}
	if err := CheckType(all, s.Exercise, s.Type(), s.ID); err != nil {
		return false, err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("encode set: %w", err)
	}
	if err := l.store.Update(ctx, models.CollectionSets, store.Record{ID: s.ID, Data: data}); err != nil {
		return false, fmt.Errorf("update set: %w", err)
	}
	l.log.WithField("id", s.ID).Debug("updated set")
	return true, nil
}

// DeleteSet removes a set. It returns false when the set does not exist.
func (l *Log) DeleteSet(ctx context.Context, id string) (bool, error) {
	_, err := l.store.Get(ctx, models.CollectionSets, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get set: %w", err)
	}
	if err := l.store.Delete(ctx, models.CollectionSets, id); err != nil {
		return false, fmt.Errorf("delete set: %w", err)
	}
	l.log.WithField("id", id).Debug("deleted set")
	return true, nil
}

// ListSets returns every set, newest first.
func (l *Log) ListSets(ctx context.Context) ([]*models.Set, error) {
	recs, err := l.migrator.Load(ctx, models.CollectionSets)
	if err != nil {
		return nil, err
	}

	sets := make([]*models.Set, 0, len(recs))
	for _, rec := range recs {
		s, err := DecodeSet(rec)
		if err != nil {
			l.log.WithError(err).WithField("id", rec.ID).Warn("skipping unreadable set")
			continue
		}
		sets = append(sets, s)
	}
	SortNewestFirst(sets)
	return sets, nil
}

// ExerciseNames returns the distinct exercise names in alphabetical order,
// optionally restricted to one type. Names differing only in case are
// reported once, using the spelling of the newest set.
func (l *Log) ExerciseNames(ctx context.Context, filter *models.SetType) ([]string, error) {
	sets, err := l.ListSets(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, s := range sets {
		if filter != nil && s.Type() != *filter {
			continue
		}
		k := strings.ToLower(s.Exercise)
		if seen[k] {
			continue
		}
		seen[k] = true
		names = append(names, s.Exercise)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

// ExerciseType returns the type an exercise name is logged under, if any.
func (l *Log) ExerciseType(ctx context.Context, exercise string) (models.SetType, bool, error) {
	last, err := l.LastSet(ctx, exercise)
	if err != nil || last == nil {
		return "", false, err
	}
	return last.Type(), true, nil
}

// LastSet returns the most recent set of an exercise, or nil.
func (l *Log) LastSet(ctx context.Context, exercise string) (*models.Set, error) {
	sets, err := l.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	name := SanitizeName(exercise)
	for _, s := range sets {
		if strings.EqualFold(s.Exercise, name) {
			return s, nil
		}
	}
	return nil, nil
}

// CheckNewRecord reports whether weight would beat the stored best for exercise.
func (l *Log) CheckNewRecord(ctx context.Context, exercise string, weight float64) (*stats.NewRecord, error) {
	sets, err := l.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	return stats.CheckNewRecord(sets, SanitizeName(exercise), weight), nil
}

// SuggestNextWeight proposes the next load for exercise given the planned reps.
func (l *Log) SuggestNextWeight(ctx context.Context, exercise string, plannedReps int) (float64, bool, error) {
	last, err := l.LastSet(ctx, exercise)
	if err != nil {
		return 0, false, err
	}
	w, ok := stats.SuggestNextWeight(last, plannedReps)
	return w, ok, nil
}

// ReplaceAll overwrites the whole log with sets in one batch write.
func (l *Log) ReplaceAll(ctx context.Context, sets []*models.Set) error {
	recs := make([]store.Record, 0, len(sets))
	for _, s := range sets {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode set %s: %w", s.ID, err)
		}
		recs = append(recs, store.Record{ID: s.ID, Data: data})
	}
	if err := l.store.ReplaceAll(ctx, models.CollectionSets, recs); err != nil {
		return fmt.Errorf("replace sets: %w", err)
	}
	return nil
}

// ValidateMetrics checks that the metrics defining a set's type are present and positive.
func ValidateMetrics(m models.Metrics) error {
	switch v := m.(type) {
	case nil:
		return &ValidationError{Field: "type", Reason: "missing metrics"}
	case models.Weighted:
		if v.Weight <= 0 {
			return &ValidationError{Field: "weight", Reason: "must be greater than 0"}
		}
		if v.Reps <= 0 {
			return &ValidationError{Field: "reps", Reason: "must be greater than 0"}
		}
	case models.Bodyweight:
		if v.Reps <= 0 {
			return &ValidationError{Field: "reps", Reason: "must be greater than 0"}
		}
		if v.AddedWeight < 0 {
			return &ValidationError{Field: "addedWeight", Reason: "must not be negative"}
		}
	case models.Timed:
		if v.Duration <= 0 {
			return &ValidationError{Field: "duration", Reason: "must be greater than 0"}
		}
		if v.Distance != nil && *v.Distance < 0 {
			return &ValidationError{Field: "distance", Reason: "must not be negative"}
		}
	}
	return nil
}

// CheckType returns a TypeConflictError if name is logged in sets under a
// type other than t. The set with ID skipID is ignored.
func CheckType(sets []*models.Set, name string, t models.SetType, skipID string) error {
	for _, s := range sets {
		if s.ID == skipID && skipID != "" {
			continue
		}
		if strings.EqualFold(s.Exercise, name) && s.Type() != t {
			return &TypeConflictError{Exercise: s.Exercise, Existing: s.Type(), Requested: t}
		}
	}
	return nil
}

// SortNewestFirst orders sets by timestamp descending.
func SortNewestFirst(sets []*models.Set) {
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].Timestamp.After(sets[j].Timestamp)
	})
}

// DecodeSet reads a stored set document. A missing id falls back to the record ID.
func DecodeSet(rec store.Record) (*models.Set, error) {
	var s models.Set
	if err := json.Unmarshal(rec.Data, &s); err != nil {
		return nil, fmt.Errorf("decode set %s: %w", rec.ID, err)
	}
	if s.ID == "" {
		s.ID = rec.ID
	}
	return &s, nil
}

// ResolveID expands a set ID prefix to the full ID.
func (l *Log) ResolveID(ctx context.Context, idOrPrefix string) (string, error) {
	return store.ResolveID(ctx, l.store, models.CollectionSets, idOrPrefix)
}
