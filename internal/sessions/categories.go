// ABOUTME: Exercise categories and saved locations.
// ABOUTME: Custom categories live in the customCategories setting.
package sessions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
)

// CustomCategoriesKey is the settings key holding user-defined categories.
const CustomCategoriesKey = "customCategories"

// Categories returns the predefined categories followed by custom ones.
func (l *Log) Categories(ctx context.Context) ([]string, error) {
	custom, err := l.customCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]string{}, models.PredefinedCategories...)
	return append(out, custom...), nil
}

// AddCustomCategory adds a category unless one with the same name exists.
// It reports whether the category was added.
func (l *Log) AddCustomCategory(ctx context.Context, name string) (bool, error) {
	name = setlog.SanitizeName(name)
	if name == "" {
		return false, &setlog.ValidationError{Field: "category", Reason: "name is empty after sanitization"}
	}

	all, err := l.Categories(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range all {
		if strings.EqualFold(c, name) {
			return false, nil
		}
	}

	custom, err := l.customCategories(ctx)
	if err != nil {
		return false, err
	}
	if err := l.settings.PutSetting(ctx, CustomCategoriesKey, append(custom, name)); err != nil {
		return false, fmt.Errorf("save custom categories: %w", err)
	}
	return true, nil
}

func (l *Log) customCategories(ctx context.Context) ([]string, error) {
	var custom []string
	if _, err := l.settings.Setting(ctx, CustomCategoriesKey, &custom); err != nil {
		return nil, fmt.Errorf("load custom categories: %w", err)
	}
	return custom, nil
}

// SaveLocation stores a named location.
func (l *Log) SaveLocation(ctx context.Context, loc models.Location) (*models.Location, error) {
	loc.LocationName = setlog.Sanitize(loc.LocationName, maxSessionNameLen)
	if loc.LocationName == "" {
		return nil, &setlog.ValidationError{Field: "locationName", Reason: "name is empty after sanitization"}
	}
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	loc.SavedAt = l.now()

	if err := l.put(ctx, models.CollectionLocations, loc.ID, &loc, true); err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}
	return &loc, nil
}

// Locations returns saved locations, most recently saved first.
func (l *Log) Locations(ctx context.Context) ([]*models.Location, error) {
	recs, err := l.migrator.Load(ctx, models.CollectionLocations)
	if err != nil {
		return nil, err
	}
	out := decodeAll[models.Location](recs, l.log)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}
