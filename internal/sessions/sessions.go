// ABOUTME: Session log over the record store.
// ABOUTME: Sessions own exercises through their sessionId field.
package sessions

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
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=store_mock_test.go -package=sessions github.com/harperreed/gymlog/internal/store Store

const maxSessionNameLen = 60

// Settings reads and writes generic key/value settings.
type Settings interface {
	Setting(ctx context.Context, key string, v any) (bool, error)
	PutSetting(ctx context.Context, key string, v any) error
}

// Log manages sessions, their exercises, categories and saved locations.
type Log struct {
	store    store.Store
	migrator *schema.Migrator
	settings Settings
	log      logrus.FieldLogger
	now      func() time.Time
}

// New creates a Log.
func New(s store.Store, m *schema.Migrator, settings Settings, log logrus.FieldLogger) *Log {
	return &Log{
		store:    s,
		migrator: m,
		settings: settings,
		log:      log,
		now:      models.NowMillis,
	}
}

// SessionWithCount is a session plus its number of exercises.
type SessionWithCount struct {
	*models.Session
	ExerciseCount int `json:"exerciseCount"`
}

// SessionPatch holds session fields to replace. Nil fields are kept.
type SessionPatch struct {
	SessionName *string
	Date        *time.Time
}

// CreateSession stores a new session. An empty name becomes a timestamp
// label and a zero date becomes now.
func (l *Log) CreateSession(ctx context.Context, name string, date time.Time) (*models.Session, error) {
	now := l.now()
	name = setlog.Sanitize(name, maxSessionNameLen)
	if name == "" {
		name = models.DefaultSessionName(now)
	}
	if date.IsZero() {
		date = now
	}

	s := &models.Session{
		ID:          uuid.New().String(),
		SessionName: name,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.put(ctx, models.CollectionSessions, s.ID, s, true); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	l.log.WithFields(logrus.Fields{"id": s.ID, "name": s.SessionName}).Debug("created session")
	return s, nil
}

// GetSession returns the session, or nil if there is none.
func (l *Log) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	found, err := l.get(ctx, models.CollectionSessions, id, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns every session newest first with its exercise count.
func (l *Log) ListSessions(ctx context.Context) ([]SessionWithCount, error) {
	all, err := l.allSessions(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := l.ListExercises(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range exercises {
		counts[e.SessionID]++
	}

	out := make([]SessionWithCount, len(all))
	for i, s := range all {
		out[i] = SessionWithCount{Session: s, ExerciseCount: counts[s.ID]}
	}
	return out, nil
}

// UpdateSession applies patch. It returns false when the session does not exist.
func (l *Log) UpdateSession(ctx context.Context, id string, patch SessionPatch) (bool, error) {
	s, err := l.GetSession(ctx, id)
	if err != nil || s == nil {
		return false, err
	}
	if patch.SessionName != nil {
		name := setlog.Sanitize(*patch.SessionName, maxSessionNameLen)
		if name == "" {
			return false, &setlog.ValidationError{Field: "sessionName", Reason: "name is empty after sanitization"}
		}
		s.SessionName = name
	}
	if patch.Date != nil {
		s.Date = *patch.Date
	}
	s.UpdatedAt = l.now()

	if err := l.put(ctx, models.CollectionSessions, s.ID, s, false); err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	return true, nil
}

// DeleteSession removes every exercise of the session and then the session.
// Children are deleted by record ID without decoding them, so unreadable
// exercises go too. A failure partway returns a CascadeError naming the
// failed step. Deleting a missing session is not an error.
func (l *Log) DeleteSession(ctx context.Context, id string) error {
	children, err := l.store.GetByField(ctx, models.CollectionExercises, "sessionId", id)
	if err != nil {
		return &CascadeError{SessionID: id, Step: StepExercises, Err: err}
	}

	deleted := 0
	for _, rec := range children {
		if err := l.store.Delete(ctx, models.CollectionExercises, rec.ID); err != nil {
			return &CascadeError{SessionID: id, Step: StepExercises, Deleted: deleted, Err: err}
		}
		deleted++
	}

	if err := l.store.Delete(ctx, models.CollectionSessions, id); err != nil {
		return &CascadeError{SessionID: id, Step: StepSession, Deleted: deleted, Err: err}
	}

	l.log.WithFields(logrus.Fields{"id": id, "exercises": deleted}).Debug("deleted session")
	return nil
}

// DuplicateSession copies a session and its exercises under fresh IDs,
// dated now. Photos are not copied.
func (l *Log) DuplicateSession(ctx context.Context, id string) (*models.Session, error) {
	orig, err := l.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, fmt.Errorf("duplicate session %s: %w", id, ErrSessionNotFound)
	}
	exercises, err := l.GetExercisesBySession(ctx, id)
	if err != nil {
		return nil, err
	}

	now := l.now()
	dup := &models.Session{
		ID:          uuid.New().String(),
		SessionName: orig.SessionName + " (Copy)",
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.put(ctx, models.CollectionSessions, dup.ID, dup, true); err != nil {
		return nil, fmt.Errorf("duplicate session: %w", err)
	}

	for _, e := range exercises {
		c := e.CopyTo(dup.ID, now)
		if err := l.put(ctx, models.CollectionExercises, c.ID, c, true); err != nil {
			return nil, fmt.Errorf("duplicate exercise %s: %w", e.ID, err)
		}
	}

	l.log.WithFields(logrus.Fields{"from": id, "to": dup.ID, "exercises": len(exercises)}).Debug("duplicated session")
	return dup, nil
}

// SessionsOnDate returns sessions on the same calendar day as day, in day's location.
func (l *Log) SessionsOnDate(ctx context.Context, day time.Time) ([]*models.Session, error) {
	all, err := l.allSessions(ctx)
	if err != nil {
		return nil, err
	}
	y, m, d := day.Date()
	var out []*models.Session
	for _, s := range all {
		sy, sm, sd := s.Date.In(day.Location()).Date()
		if sy == y && sm == m && sd == d {
			out = append(out, s)
		}
	}
	return out, nil
}

// SessionsInRange returns sessions dated within [from, to], newest first.
func (l *Log) SessionsInRange(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	all, err := l.allSessions(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Session
	for _, s := range all {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

// RecentSessions returns sessions from the last days days, newest first.
func (l *Log) RecentSessions(ctx context.Context, days int) ([]*models.Session, error) {
	now := l.now()
	return l.SessionsInRange(ctx, now.AddDate(0, 0, -days), now)
}

// SearchSessions returns sessions whose name contains query, ignoring case.
func (l *Log) SearchSessions(ctx context.Context, query string) ([]*models.Session, error) {
	all, err := l.allSessions(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []*models.Session
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.SessionName), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// SessionCount returns the number of sessions.
func (l *Log) SessionCount(ctx context.Context) (int, error) {
	n, err := l.store.Count(ctx, models.CollectionSessions)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// SessionExists reports whether a session with the given ID exists.
func (l *Log) SessionExists(ctx context.Context, id string) (bool, error) {
	s, err := l.GetSession(ctx, id)
	return s != nil, err
}

// SessionStats totals the exercises of a session.
func (l *Log) SessionStats(ctx context.Context, id string) (*stats.SessionSummary, error) {
	s, err := l.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("session stats %s: %w", id, ErrSessionNotFound)
	}
	exercises, err := l.GetExercisesBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := stats.SessionStats(exercises)
	return &sum, nil
}

func (l *Log) allSessions(ctx context.Context) ([]*models.Session, error) {
	recs, err := l.migrator.Load(ctx, models.CollectionSessions)
	if err != nil {
		return nil, err
	}
	out := decodeAll[models.Session](recs, l.log)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (l *Log) get(ctx context.Context, collection, id string, v any) (bool, error) {
	rec, err := l.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", collection, err)
	}
	if err := json.Unmarshal(rec.Data, v); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (l *Log) put(ctx context.Context, collection, id string, v any, insert bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	rec := store.Record{ID: id, Data: data}
	if insert {
		return l.store.Add(ctx, collection, rec)
	}
	return l.store.Update(ctx, collection, rec)
}

func decodeAll[T any](recs []store.Record, log logrus.FieldLogger) []*T {
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			log.WithError(err).WithField("id", rec.ID).Warn("skipping unreadable record")
			continue
		}
		out = append(out, &v)
	}
	return out
}

// ResolveSessionID expands a session ID prefix to the full ID.
func (l *Log) ResolveSessionID(ctx context.Context, idOrPrefix string) (string, error) {
	return store.ResolveID(ctx, l.store, models.CollectionSessions, idOrPrefix)
}

// ResolveExerciseID expands an exercise ID prefix to the full ID.
func (l *Log) ResolveExerciseID(ctx context.Context, idOrPrefix string) (string, error) {
	return store.ResolveID(ctx, l.store, models.CollectionExercises, idOrPrefix)
}
