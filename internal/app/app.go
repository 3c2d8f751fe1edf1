// ABOUTME: Application context built once at startup.
// ABOUTME: Owns the store and every service layered on top of it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/profile"
	"github.com/harperreed/gymlog/internal/schema"
	"github.com/harperreed/gymlog/internal/sessions"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/harperreed/gymlog/internal/transfer"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// App wires the store, migrator and services together.
type App struct {
	Config   *config.Config
	Store    store.Store
	Migrator *schema.Migrator
	Sets     *setlog.Log
	Sessions *sessions.Log
	Profile  *profile.Service
	Transfer *transfer.Codec
	Location *time.Location
	Log      *logrus.Entry

	formula stats.Formula
}

// Open opens the configured backend and builds the services on top of it.
func Open(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	s, err := cfg.OpenStore(logrus.NewEntry(logger).WithField("backend", cfg.GetBackend()))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a, err := New(s, cfg, logger)
	if err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	return a, nil
}

// New builds an App over an already open store. The App takes ownership of s.
func New(s store.Store, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, err
	}
	formula, err := cfg.GetOneRMFormula()
	if err != nil {
		return nil, err
	}

	log := logrus.NewEntry(logger)
	m := schema.New(s, log.WithField("component", "schema"))
	prof := profile.New(s, m, log.WithField("component", "profile"))
	sets := setlog.New(s, m, log.WithField("component", "setlog"))

	return &App{
		Config:   cfg,
		Store:    s,
		Migrator: m,
		Sets:     sets,
		Sessions: sessions.New(s, m, prof, log.WithField("component", "sessions")),
		Profile:  prof,
		Transfer: transfer.New(sets, s, m, loc, log.WithField("component", "transfer")),
		Location: loc,
		Log:      log,
		formula:  formula,
	}, nil
}

// OneRMFormula returns the profile's formula, falling back to the configured one.
func (a *App) OneRMFormula(ctx context.Context) (stats.Formula, error) {
	return a.Profile.OneRMFormula(ctx, a.formula)
}

// OneRepMax estimates a one-rep max with f, or with every formula when all
// is set. Estimates outside the reliable rep range are logged at Warn.
func (a *App) OneRepMax(weight float64, reps int, f stats.Formula, all bool) ([]stats.Estimate, error) {
	var estimates []stats.Estimate
	if all {
		var err error
		if estimates, err = stats.AllFormulas(weight, reps); err != nil {
			return nil, err
		}
	} else {
		e, err := stats.OneRepMax(weight, reps, f)
		if err != nil {
			return nil, err
		}
		estimates = []stats.Estimate{e}
	}

	for _, e := range estimates {
		if e.LowConfidence {
			a.Log.WithFields(logrus.Fields{"weight": weight, "reps": reps}).
				Warn("1RM estimate outside the reliable rep range")
			break
		}
	}
	return estimates, nil
}

// Close releases the store.
func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = multierr.Append(err, a.Store.Close())
		a.Store = nil
	}
	return err
}

// BodyWeight returns the profile's weight, or 0 when no profile is saved.
func (a *App) BodyWeight(ctx context.Context) (float64, error) {
	p, err := a.Profile.Profile(ctx)
	if err != nil || p == nil {
		return 0, err
	}
	return p.Weight, nil
}
