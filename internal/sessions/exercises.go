// ABOUTME: Exercise entries within sessions.
// ABOUTME: Each exercise belongs to exactly one existing session.
package sessions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/sirupsen/logrus"
)

// ExerciseInput describes an exercise to add to a session.
type ExerciseInput struct {
	SessionID    string
	ExerciseName string
	Sets         int
	Reps         int
	Weight       float64
	Time         float64 // seconds
	Notes        string
	Photo        *string
	Date         time.Time
	Category     string
	Location     *models.Location
}

// ExercisePatch holds exercise fields to replace. Nil fields are kept.
// ClearPhoto removes the stored photo.
type ExercisePatch struct {
	ExerciseName *string
	Sets         *int
	Reps         *int
	Weight       *float64
	Time         *float64
	Notes        *string
	Photo        *string
	ClearPhoto   bool
	Date         *time.Time
	Category     *string
	Location     *models.Location
	SessionID    *string
}

// AddExercise stores a new exercise in an existing session. The date
// defaults to now and may not lie after the end of the current day.
func (l *Log) AddExercise(ctx context.Context, in ExerciseInput) (*models.Exercise, error) {
	exists, err := l.SessionExists(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("add exercise to %s: %w", in.SessionID, ErrSessionNotFound)
	}

	now := l.now()
	e := &models.Exercise{
		ID:           uuid.New().String(),
		ExerciseName: setlog.SanitizeName(in.ExerciseName),
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
		Time:         in.Time,
		Notes:        in.Notes,
		Photo:        in.Photo,
		Date:         in.Date,
		Category:     setlog.SanitizeName(in.Category),
		Location:     in.Location,
		SessionID:    in.SessionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if e.ExerciseName == "" {
		e.ExerciseName = models.DefaultExerciseName
	}
	if e.Category == "" {
		e.Category = models.DefaultCategory
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if err := l.validateExercise(e); err != nil {
		return nil, err
	}

	if err := l.put(ctx, models.CollectionExercises, e.ID, e, true); err != nil {
		return nil, fmt.Errorf("add exercise: %w", err)
	}
	l.log.WithFields(logrus.Fields{"id": e.ID, "session": e.SessionID, "name": e.ExerciseName}).Debug("added exercise")
	return e, nil
}

// GetExercise returns the exercise, or nil if there is none.
func (l *Log) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	var e models.Exercise
	found, err := l.get(ctx, models.CollectionExercises, id, &e)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

// UpdateExercise applies patch. It returns false when the exercise does not exist.
func (l *Log) UpdateExercise(ctx context.Context, id string, patch ExercisePatch) (bool, error) {
	e, err := l.GetExercise(ctx, id)
	if err != nil || e == nil {
		return false, err
	}

	if patch.ExerciseName != nil {
		if e.ExerciseName = setlog.SanitizeName(*patch.ExerciseName); e.ExerciseName == "" {
			e.ExerciseName = models.DefaultExerciseName
		}
	}
	if patch.Sets != nil {
		e.Sets = *patch.Sets
	}
	if patch.Reps != nil {
		e.Reps = *patch.Reps
	}
	if patch.Weight != nil {
		e.Weight = *patch.Weight
	}
	if patch.Time != nil {
		e.Time = *patch.Time
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	if patch.ClearPhoto {
		e.Photo = nil
	} else if patch.Photo != nil {
		e.Photo = patch.Photo
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Category != nil {
		if e.Category = setlog.SanitizeName(*patch.Category); e.Category == "" {
			e.Category = models.DefaultCategory
		}
	}
	if patch.Location != nil {
		e.Location = patch.Location
	}
	if patch.SessionID != nil && *patch.SessionID != e.SessionID {
		exists, err := l.SessionExists(ctx, *patch.SessionID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("move exercise to %s: %w", *patch.SessionID, ErrSessionNotFound)
		}
		e.SessionID = *patch.SessionID
	}
	if err := l.validateExercise(e); err != nil {
		return false, err
	}
	e.UpdatedAt = l.now()

	if err := l.put(ctx, models.CollectionExercises, e.ID, e, false); err != nil {
		return false, fmt.Errorf("update exercise: %w", err)
	}
	return true, nil
}

// DeleteExercise removes an exercise. It returns false when it does not exist.
func (l *Log) DeleteExercise(ctx context.Context, id string) (bool, error) {
	e, err := l.GetExercise(ctx, id)
	if err != nil || e == nil {
		return false, err
	}
	if err := l.store.Delete(ctx, models.CollectionExercises, id); err != nil {
		return false, fmt.Errorf("delete exercise: %w", err)
	}
	return true, nil
}

// ListExercises returns every exercise, newest first.
func (l *Log) ListExercises(ctx context.Context) ([]*models.Exercise, error) {
	recs, err := l.migrator.Load(ctx, models.CollectionExercises)
	if err != nil {
		return nil, err
	}
	out := decodeAll[models.Exercise](recs, l.log)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// GetExercisesBySession returns a session's exercises, oldest first.
func (l *Log) GetExercisesBySession(ctx context.Context, sessionID string) ([]*models.Exercise, error) {
	return l.byField(ctx, "sessionId", sessionID)
}

// ExercisesByCategory returns exercises in a category, newest first.
func (l *Log) ExercisesByCategory(ctx context.Context, category string) ([]*models.Exercise, error) {
	all, err := l.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Exercise
	for _, e := range all {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ExerciseHistory returns every exercise with the given name, oldest first.
func (l *Log) ExerciseHistory(ctx context.Context, name string) ([]*models.Exercise, error) {
	return l.byField(ctx, "exerciseName", name)
}

func (l *Log) byField(ctx context.Context, field, value string) ([]*models.Exercise, error) {
	recs, err := l.store.GetByField(ctx, models.CollectionExercises, field, value)
	if err != nil {
		return nil, fmt.Errorf("query exercises by %s: %w", field, err)
	}
	out := decodeAll[models.Exercise](recs, l.log)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (l *Log) validateExercise(e *models.Exercise) error {
	now := l.now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_999_999, now.Location())
	switch {
	case e.Date.After(endOfDay):
		return &setlog.ValidationError{Field: "date", Reason: "must not be in the future"}
	case e.Sets < 0:
		return &setlog.ValidationError{Field: "sets", Reason: "must not be negative"}
	case e.Reps < 0:
		return &setlog.ValidationError{Field: "reps", Reason: "must not be negative"}
	case e.Weight < 0:
		return &setlog.ValidationError{Field: "weight", Reason: "must not be negative"}
	case e.Time < 0:
		return &setlog.ValidationError{Field: "time", Reason: "must not be negative"}
	}
	return nil
}
