// ABOUTME: Singleton user profile, body-weight history and settings.
// ABOUTME: Saving a profile with a weight also appends to the weight history.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/schema"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

const maxNicknameLen = 30

// Service manages the profile, weight history and settings collections.
type Service struct {
	store    store.Store
	migrator *schema.Migrator
	log      logrus.FieldLogger
}

// New creates a Service.
func New(s store.Store, m *schema.Migrator, log logrus.FieldLogger) *Service {
	return &Service{store: s, migrator: m, log: log}
}

// Profile returns the stored profile, or nil if none was saved.
func (s *Service) Profile(ctx context.Context) (*models.Profile, error) {
	rec, err := s.store.Get(ctx, models.CollectionUserProfile, models.ProfileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal(rec.Data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// SaveProfile overwrites the profile. A positive weight is also recorded
// in the weight history.
func (s *Service) SaveProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	p.ID = models.ProfileID
	p.Nickname = setlog.Sanitize(p.Nickname, maxNicknameLen)
	switch {
	case p.Weight < 0:
		return nil, &setlog.ValidationError{Field: "weight", Reason: "must not be negative"}
	case p.Height < 0:
		return nil, &setlog.ValidationError{Field: "height", Reason: "must not be negative"}
	case p.Age < 0:
		return nil, &setlog.ValidationError{Field: "age", Reason: "must not be negative"}
	}
	if p.OneRMFormula != "" {
		f, err := stats.ParseFormula(p.OneRMFormula)
		if err != nil {
			return nil, &setlog.ValidationError{Field: "oneRmFormula", Reason: err.Error()}
		}
		p.OneRMFormula = string(f)
	}
	p.UpdatedAt = models.NowMillis()

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.store.Update(ctx, models.CollectionUserProfile, store.Record{ID: p.ID, Data: data}); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if p.Weight > 0 {
		if _, err := s.AddWeight(ctx, p.Weight); err != nil {
			return nil, err
		}
	}
	s.log.WithField("nickname", p.Nickname).Debug("saved profile")
	return &p, nil
}

// OneRMFormula returns the profile's preferred formula, or fallback when unset.
func (s *Service) OneRMFormula(ctx context.Context, fallback stats.Formula) (stats.Formula, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return "", err
	}
	if p == nil || p.OneRMFormula == "" {
		return fallback, nil
	}
	f, err := stats.ParseFormula(p.OneRMFormula)
	if err != nil {
		s.log.WithError(err).Warn("ignoring stored 1RM formula")
		return fallback, nil
	}
	return f, nil
}

// AddWeight records a body-weight measurement dated now.
func (s *Service) AddWeight(ctx context.Context, weight float64) (*models.WeightEntry, error) {
	if weight <= 0 {
		return nil, &setlog.ValidationError{Field: "weight", Reason: "must be greater than 0"}
	}
	e := models.NewWeightEntry(weight)
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode weight entry: %w", err)
	}
	if err := s.store.Add(ctx, models.CollectionWeightHistory, store.Record{ID: e.ID, Data: data}); err != nil {
		return nil, fmt.Errorf("add weight entry: %w", err)
	}
	return e, nil
}

// WeightHistory returns every weight entry sorted by date.
func (s *Service) WeightHistory(ctx context.Context, ascending bool) ([]*models.WeightEntry, error) {
	recs, err := s.migrator.Load(ctx, models.CollectionWeightHistory)
	if err != nil {
		return nil, err
	}
	out := make([]*models.WeightEntry, 0, len(recs))
	for _, rec := range recs {
		var e models.WeightEntry
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			s.log.WithError(err).WithField("id", rec.ID).Warn("skipping unreadable weight entry")
			continue
		}
		if e.ID == "" {
			e.ID = rec.ID
		}
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// DeleteWeight removes a weight entry. It returns false when it does not exist.
func (s *Service) DeleteWeight(ctx context.Context, id string) (bool, error) {
	return s.deleteIfExists(ctx, models.CollectionWeightHistory, id)
}

// Setting decodes the value stored under key into v. It reports false when
// the key is not set, leaving v untouched.
func (s *Service) Setting(ctx context.Context, key string, v any) (bool, error) {
	rec, err := s.store.Get(ctx, models.CollectionSettings, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}
	var setting models.Setting
	if err := json.Unmarshal(rec.Data, &setting); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	if err := json.Unmarshal(setting.Value, v); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// PutSetting stores v under key.
func (s *Service) PutSetting(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	data, err := json.Marshal(models.Setting{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	if err := s.store.Update(ctx, models.CollectionSettings, store.Record{ID: key, Data: data}); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting. It returns false when the key is not set.
func (s *Service) DeleteSetting(ctx context.Context, key string) (bool, error) {
	return s.deleteIfExists(ctx, models.CollectionSettings, key)
}

func (s *Service) deleteIfExists(ctx context.Context, collection, id string) (bool, error) {
	_, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", collection, err)
	}
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return false, fmt.Errorf("delete %s: %w", collection, err)
	}
	return true, nil
}
