// ABOUTME: JSON export and import of sets with ISO-8601 timestamps.
// ABOUTME: Import also accepts epoch-millisecond timestamps from older exports.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

// isoLayout matches the millisecond ISO-8601 form used in JSON files.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// jsonSet is the file form of a set. Numbers are pointers so absent
// fields stay absent.
type jsonSet struct {
	ID          string          `json:"id,omitempty"`
	Exercise    string          `json:"exercise"`
	Type        string          `json:"type,omitempty"`
	Weight      *float64        `json:"weight,omitempty"`
	Reps        *int            `json:"reps,omitempty"`
	AddedWeight *float64        `json:"addedWeight,omitempty"`
	BodyWeight  *float64        `json:"bodyWeight,omitempty"`
	Duration    *float64        `json:"duration,omitempty"`
	Distance    *float64        `json:"distance,omitempty"`
	Elevation   *float64        `json:"elevation,omitempty"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

func toJSONSet(s *models.Set) jsonSet {
	f := s.Flatten()
	ts, _ := json.Marshal(f.Timestamp.UTC().Format(isoLayout))
	return jsonSet{
		ID:          f.ID,
		Exercise:    f.Exercise,
		Type:        string(f.Type),
		Weight:      f.Weight,
		Reps:        f.Reps,
		AddedWeight: f.AddedWeight,
		BodyWeight:  f.BodyWeight,
		Duration:    f.Duration,
		Distance:    f.Distance,
		Elevation:   f.Elevation,
		Timestamp:   ts,
	}
}

func (j jsonSet) flat() (models.FlatSet, error) {
	ts, err := parseTimestamp(j.Timestamp)
	if err != nil {
		return models.FlatSet{}, err
	}
	return models.FlatSet{
		ID:          j.ID,
		Exercise:    j.Exercise,
		Type:        models.SetType(j.Type),
		Weight:      j.Weight,
		Reps:        j.Reps,
		AddedWeight: j.AddedWeight,
		BodyWeight:  j.BodyWeight,
		Duration:    j.Duration,
		Distance:    j.Distance,
		Elevation:   j.Elevation,
		Timestamp:   ts,
	}, nil
}

// parseTimestamp accepts an ISO-8601 string or epoch milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("timestamp: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return time.UnixMilli(t.UnixMilli()), nil
}

// ExportJSON writes every set as an indented JSON array, newest first.
func (c *Codec) ExportJSON(ctx context.Context, w io.Writer) error {
	sets, err := c.sets.ListSets(ctx)
	if err != nil {
		return err
	}

	out := make([]jsonSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, toJSONSet(s))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sets: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ImportJSON merges a JSON array of sets into the log.
func (c *Codec) ImportJSON(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	data, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return res, &FormatError{Format: "json", Reason: "expected an array of sets"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return res, &FormatError{Format: "json", Reason: err.Error()}
	}
	if len(items) == 0 {
		return res, &FormatError{Format: "json", Reason: "no sets in file"}
	}

	m, err := c.newMerge(ctx)
	if err != nil {
		return res, err
	}

	for i, raw := range items {
		var js jsonSet
		if err := json.Unmarshal(raw, &js); err != nil {
			res.Invalid++
			c.log.WithError(err).WithField("index", i).Warn("skipping invalid json set")
			continue
		}
		f, err := js.flat()
		if err != nil {
			res.Invalid++
			c.log.WithError(err).WithField("index", i).Warn("skipping invalid json set")
			continue
		}
		m.add(f, &res)
	}

	if err := m.commit(ctx, res); err != nil {
		return Result{}, err
	}
	return res, nil
}
