// ABOUTME: CSV export and import of sets.
// ABOUTME: Timestamps round-trip at minute resolution via Date and Time columns.
package transfer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	csvDateLayout = "2006-01-02"
	csvTimeLayout = "15:04"
)

// Column headers of the CSV export.
var csvColumns = []string{
	"Date", "Time", "Exercise", "Weight(kg)", "Reps", "Type",
	"AddedWeight(kg)", "BodyWeight(kg)", "Duration(min)", "Distance(km)", "Elevation(m)",
}

var (
	csvDateLayouts = []string{csvDateLayout, "2.01.2006", "2.1.2006", "2006/01/02"}
	csvTimeLayouts = []string{csvTimeLayout, "15:04:05"}
	unitSuffix     = regexp.MustCompile(`\s*\(.*\)\s*$`)
)

// CSVOptions controls CSV export.
type CSVOptions struct {
	IncludeID bool
	// Location overrides the codec's zone for the Date and Time columns.
	Location *time.Location
}

// ExportCSV writes every set, newest first.
func (c *Codec) ExportCSV(ctx context.Context, w io.Writer, opts CSVOptions) error {
	sets, err := c.sets.ListSets(ctx)
	if err != nil {
		return err
	}

	loc := c.loc
	if opts.Location != nil {
		loc = opts.Location
	}

	cw := csv.NewWriter(w)
	header := csvColumns
	if opts.IncludeID {
		header = append([]string{"ID"}, csvColumns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range sets {
		f := s.Flatten()
		ts := f.Timestamp.In(loc)
		row := []string{
			ts.Format(csvDateLayout),
			ts.Format(csvTimeLayout),
			f.Exercise,
			formatFloat(f.Weight),
			formatInt(f.Reps),
			string(f.Type),
			formatFloat(f.AddedWeight),
			formatFloat(f.BodyWeight),
			formatFloat(f.Duration),
			formatFloat(f.Distance),
			formatFloat(f.Elevation),
		}
		if opts.IncludeID {
			row = append([]string{f.ID}, row...)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportCSV merges sets from CSV into the log. Columns are located by
// header name, so extra or reordered columns are fine. Rows that fail to
// parse are counted as invalid and skipped; nothing is written until the
// whole file has been read.
func (c *Codec) ImportCSV(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, &FormatError{Format: "csv", Reason: "file is empty"}
	}
	if err != nil {
		return res, &FormatError{Format: "csv", Reason: err.Error()}
	}

	cols := indexColumns(header)
	if _, ok := cols["date"]; !ok {
		return res, &FormatError{Format: "csv", Reason: "missing Date column"}
	}
	if _, ok := cols["exercise"]; !ok {
		return res, &FormatError{Format: "csv", Reason: "missing Exercise column"}
	}

	m, err := c.newMerge(ctx)
	if err != nil {
		return res, err
	}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			res.Invalid++
			c.log.WithError(err).WithField("line", line).Warn("skipping unreadable csv row")
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("read csv: %w", err)
		}
		if isBlank(row) {
			continue
		}

		f, err := c.parseRow(cols, row)
		if err != nil {
			res.Invalid++
			c.log.WithError(err).WithField("line", line).Warn("skipping invalid csv row")
			continue
		}
		m.add(f, &res)
	}

	if err := m.commit(ctx, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (c *Codec) parseRow(cols map[string]int, row []string) (models.FlatSet, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var f models.FlatSet
	var err error

	f.ID = get("id")
	f.Exercise = get("exercise")
	t, err := models.ParseSetType(strings.ToLower(get("type")))
	if err != nil {
		return f, err
	}
	f.Type = t

	if f.Timestamp, err = c.parseDateTime(get("date"), get("time")); err != nil {
		return f, err
	}

	if f.Weight, err = parseFloat(get("weight")); err != nil {
		return f, fmt.Errorf("weight: %w", err)
	}
	if f.Reps, err = parseInt(get("reps")); err != nil {
		return f, fmt.Errorf("reps: %w", err)
	}
	if f.AddedWeight, err = parseFloat(get("addedweight")); err != nil {
		return f, fmt.Errorf("addedWeight: %w", err)
	}
	if f.BodyWeight, err = parseFloat(get("bodyweight")); err != nil {
		return f, fmt.Errorf("bodyWeight: %w", err)
	}
	if f.Duration, err = parseFloat(get("duration")); err != nil {
		return f, fmt.Errorf("duration: %w", err)
	}
	if f.Distance, err = parseFloat(get("distance")); err != nil {
		return f, fmt.Errorf("distance: %w", err)
	}
	if f.Elevation, err = parseFloat(get("elevation")); err != nil {
		return f, fmt.Errorf("elevation: %w", err)
	}
	return f, nil
}

func (c *Codec) parseDateTime(date, clock string) (time.Time, error) {
	var day time.Time
	var err error
	for _, layout := range csvDateLayouts {
		if day, err = time.ParseInLocation(layout, date, c.loc); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", date, err)
	}
	if clock == "" {
		return day, nil
	}

	for _, layout := range csvTimeLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, c.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("time %q: unrecognized format", clock)
}

// indexColumns maps normalized header names to column positions.
// "Weight(kg)" and "weight" both normalize to "weight".
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimPrefix(h, "\ufeff")
		name = unitSuffix.ReplaceAllString(name, "")
		name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// merge accumulates imported sets on top of the stored records. Stored
// records are written back byte-for-byte, including ones that no longer
// decode as sets.
type merge struct {
	codec *Codec
	base  []store.Record
	sets  []*models.Set
	added []store.Record
	seen  map[string]bool
}

func (c *Codec) newMerge(ctx context.Context) (*merge, error) {
	recs, err := c.migrator.Load(ctx, models.CollectionSets)
	if err != nil {
		return nil, err
	}
	m := &merge{codec: c, base: recs, seen: make(map[string]bool, len(recs))}
	for _, rec := range recs {
		m.seen[rec.ID] = true
		s, err := setlog.DecodeSet(rec)
		if err != nil {
			c.log.WithError(err).WithField("id", rec.ID).Warn("keeping unreadable set as stored")
			continue
		}
		m.seen[s.ID] = true
		m.sets = append(m.sets, s)
	}
	return m, nil
}

// add validates one flat record and appends it unless its ID is known.
func (m *merge) add(f models.FlatSet, res *Result) {
	log := m.codec.log.WithField("exercise", f.Exercise)

	f.Exercise = setlog.SanitizeName(f.Exercise)
	if f.Exercise == "" || !f.HasPrimaryMetric() {
		res.Invalid++
		log.Warn("skipping record without name or primary metric")
		return
	}
	if f.ID != "" && m.seen[f.ID] {
		res.Skipped++
		return
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	s, err := f.Set()
	if err == nil {
		err = setlog.ValidateMetrics(s.Metrics)
	}
	if err == nil {
		err = setlog.CheckType(m.sets, s.Exercise, s.Type(), "")
	}
	var data []byte
	if err == nil {
		s.Timestamp = time.UnixMilli(s.Timestamp.UnixMilli())
		data, err = json.Marshal(s)
	}
	if err != nil {
		res.Invalid++
		log.WithError(err).Warn("skipping rejected record")
		return
	}

	m.seen[s.ID] = true
	m.sets = append(m.sets, s)
	m.added = append(m.added, store.Record{ID: s.ID, Data: data})
	res.Imported++
}

// commit writes the stored and imported records in one batch when anything
// was imported.
func (m *merge) commit(ctx context.Context, res Result) error {
	if len(m.added) == 0 {
		return nil
	}
	recs := make([]store.Record, 0, len(m.base)+len(m.added))
	recs = append(recs, m.base...)
	recs = append(recs, m.added...)
	if err := m.codec.store.ReplaceAll(ctx, models.CollectionSets, recs); err != nil {
		return fmt.Errorf("persist import: %w", err)
	}
	m.codec.log.WithFields(logrus.Fields{
		"imported": res.Imported,
		"skipped":  res.Skipped,
		"invalid":  res.Invalid,
	}).Info("import complete")
	return nil
}
