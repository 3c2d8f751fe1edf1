// ABOUTME: Full backup of every collection as one JSON document.
// ABOUTME: Restore merges per collection and never overwrites existing records.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

// ExportBackup writes every collection, migrated to the current schema, as
// a JSON object keyed by collection name plus an exportDate.
func (c *Codec) ExportBackup(ctx context.Context, w io.Writer) error {
	out := make(map[string]any, len(models.AllCollections)+1)
	out["exportDate"] = time.Now().UTC().Format(isoLayout)

	for _, coll := range models.AllCollections {
		recs, err := c.migrator.Load(ctx, coll)
		if err != nil {
			return err
		}
		docs := make([]json.RawMessage, 0, len(recs))
		for _, r := range recs {
			docs = append(docs, json.RawMessage(r.Data))
		}
		out[coll] = docs
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportBackup restores a backup written by ExportBackup. Each collection is
// merged and persisted on its own; records whose ID already exists are kept
// as they are. A failure part way leaves earlier collections restored.
func (c *Codec) ImportBackup(ctx context.Context, r io.Reader) (map[string]Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, &FormatError{Format: "backup", Reason: "expected a JSON object"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Format: "backup", Reason: err.Error()}
	}

	found := false
	for _, coll := range models.AllCollections {
		if _, ok := doc[coll]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil, &FormatError{Format: "backup", Reason: "no known collections"}
	}

	results := make(map[string]Result)
	for _, coll := range models.AllCollections {
		raw, ok := doc[coll]
		if !ok {
			continue
		}
		res, err := c.restoreCollection(ctx, coll, raw)
		if err != nil {
			return results, err
		}
		results[coll] = res
	}
	return results, nil
}

func (c *Codec) restoreCollection(ctx context.Context, coll string, raw json.RawMessage) (Result, error) {
	var res Result
	log := c.log.WithField("collection", coll)

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return res, &FormatError{Format: "backup", Reason: fmt.Sprintf("%s is not an array", coll)}
	}
	if len(items) == 0 {
		return res, nil
	}

	existing, err := c.store.GetAll(ctx, coll)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(existing))
	for _, rec := range existing {
		seen[rec.ID] = true
	}

	merged := existing
	for i, item := range items {
		id, err := recordKey(coll, item)
		if err != nil {
			res.Invalid++
			log.WithError(err).WithField("index", i).Warn("skipping backup record")
			continue
		}
		if seen[id] {
			res.Skipped++
			continue
		}
		seen[id] = true
		merged = append(merged, store.Record{ID: id, Data: item})
		res.Imported++
	}

	if res.Imported == 0 {
		return res, nil
	}
	if err := c.store.ReplaceAll(ctx, coll, merged); err != nil {
		return res, fmt.Errorf("restore %s: %w", coll, err)
	}
	log.WithFields(logrus.Fields{"imported": res.Imported, "skipped": res.Skipped}).Info("restored collection")
	return res, nil
}

// recordKey extracts the storage key of a backed-up document. Settings are
// keyed by "key"; everything else by "id", which older weight entries store
// as a number.
func recordKey(coll string, item json.RawMessage) (string, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("decode record: %w", err)
	}
	if doc == nil {
		return "", fmt.Errorf("record is not an object")
	}

	field := "id"
	if coll == models.CollectionSettings {
		field = "key"
	}

	switch v := doc[field].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		return v.String(), nil
	}
	return "", fmt.Errorf("record has no %s", field)
}
