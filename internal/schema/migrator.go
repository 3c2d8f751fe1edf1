// ABOUTME: Versioned migration-on-read for stored collections.
// ABOUTME: Stale records are upgraded and written back in one batch.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

// Step upgrades one document of a collection. Apply returns true when it
// changed the document. Steps must be safe to run on already-upgraded documents.
type Step struct {
	Version    int
	Collection string
	Name       string
	Apply      func(id string, doc map[string]any) bool
}

// Steps is the ordered upgrade history.
var Steps = []Step{
	{
		Version:    1,
		Collection: models.CollectionSets,
		Name:       "default set type",
		Apply: func(_ string, doc map[string]any) bool {
			return setDefault(doc, "type", string(models.SetWeighted))
		},
	},
	{
		Version:    2,
		Collection: models.CollectionSets,
		Name:       "backfill set id",
		Apply: func(id string, doc map[string]any) bool {
			return setDefault(doc, "id", id)
		},
	},
	{
		Version:    2,
		Collection: models.CollectionExercises,
		Name:       "default category and updatedAt",
		Apply: func(_ string, doc map[string]any) bool {
			changed := setDefault(doc, "category", models.DefaultCategory)
			if _, ok := doc["updatedAt"]; !ok {
				if created, ok := doc["createdAt"]; ok {
					doc["updatedAt"] = created
					changed = true
				}
			}
			return changed
		},
	},
}

// CurrentVersion is the highest version in Steps.
var CurrentVersion = func() int {
	v := 0
	for _, s := range Steps {
		if s.Version > v {
			v = s.Version
		}
	}
	return v
}()

// MarkerKey returns the settings key holding a collection's schema version.
func MarkerKey(collection string) string {
	return "schemaVersion:" + collection
}

// Migrator loads collections, upgrading stale records on the way.
type Migrator struct {
	store store.Store
	steps []Step
	log   logrus.FieldLogger
}

// New creates a Migrator using the default Steps.
func New(s store.Store, log logrus.FieldLogger) *Migrator {
	return &Migrator{store: s, steps: Steps, log: log}
}

// Load returns every record of the collection with all steps applied. If any
// record changed, the whole batch is written back before returning.
func (m *Migrator) Load(ctx context.Context, collection string) ([]store.Record, error) {
	recs, err := m.store.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	steps := m.stepsFor(collection)
	if len(steps) == 0 {
		return recs, nil
	}

	dirty := 0
	for i, rec := range recs {
		doc, err := decode(rec.Data)
		if err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{"collection": collection, "id": rec.ID}).
				Warn("skipping undecodable record during migration")
			continue
		}

		changed := false
		for _, step := range steps {
			if step.Apply(rec.ID, doc) {
				changed = true
			}
		}
		if !changed {
			continue
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode migrated %s/%s: %w", collection, rec.ID, err)
		}
		recs[i].Data = data
		dirty++
	}

	if dirty > 0 {
		if err := m.store.ReplaceAll(ctx, collection, recs); err != nil {
			return nil, fmt.Errorf("persist migrated %s: %w", collection, err)
		}
		m.log.WithFields(logrus.Fields{"collection": collection, "records": dirty}).Warn("migrated stale records")
	}

	if err := m.markVersion(ctx, collection); err != nil {
		return nil, err
	}
	return recs, nil
}

// Version returns the recorded schema version of a collection, 0 if none.
func (m *Migrator) Version(ctx context.Context, collection string) (int, error) {
	rec, err := m.store.Get(ctx, models.CollectionSettings, MarkerKey(collection))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	var setting models.Setting
	if err := json.Unmarshal(rec.Data, &setting); err != nil {
		return 0, fmt.Errorf("decode schema version: %w", err)
	}
	v, err := strconv.Atoi(string(setting.Value))
	if err != nil {
		return 0, fmt.Errorf("decode schema version: %w", err)
	}
	return v, nil
}

func (m *Migrator) markVersion(ctx context.Context, collection string) error {
	current, err := m.Version(ctx, collection)
	if err != nil {
		return err
	}
	if current >= CurrentVersion {
		return nil
	}

	data, err := json.Marshal(models.Setting{
		Key:   MarkerKey(collection),
		Value: json.RawMessage(strconv.Itoa(CurrentVersion)),
	})
	if err != nil {
		return fmt.Errorf("encode schema version: %w", err)
	}
	if err := m.store.Update(ctx, models.CollectionSettings, store.Record{ID: MarkerKey(collection), Data: data}); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

func (m *Migrator) stepsFor(collection string) []Step {
	var out []Step
	for _, s := range m.steps {
		if s.Collection == collection {
			out = append(out, s)
		}
	}
	return out
}

func decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not an object")
	}
	return doc, nil
}

// setDefault assigns value to key when the key is missing or an empty string.
func setDefault(doc map[string]any, key, value string) bool {
	if v, ok := doc[key]; ok && v != nil && v != "" {
		return false
	}
	doc[key] = value
	return true
}
