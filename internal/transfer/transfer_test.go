// ABOUTME: Tests for CSV, JSON, YAML, Markdown and backup transfer.
// ABOUTME: Each test runs against a fresh SQLite store in a temp directory.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/schema"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	codec *Codec
	sets  *setlog.Log
	store store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)

	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	m := schema.New(s, l)
	sets := setlog.New(s, m, l)
	return &fixture{codec: New(sets, s, m, time.UTC, l), sets: sets, store: s}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	dist := 5.2
	inputs := []setlog.SetInput{
		{Exercise: "Bench Press", Timestamp: time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC), Metrics: models.Weighted{Weight: 82.5, Reps: 8}},
		{Exercise: "Pull Up", Timestamp: time.Date(2024, 3, 2, 7, 5, 0, 0, time.UTC), Metrics: models.Bodyweight{Reps: 12, AddedWeight: 10, BodyWeight: 82}},
		{Exercise: "Run", Timestamp: time.Date(2024, 3, 3, 6, 0, 0, 0, time.UTC), Metrics: models.Timed{Duration: 30, Distance: &dist}},
	}
	for _, in := range inputs {
		_, err := f.sets.AddSet(ctx, in)
		require.NoError(t, err)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t)

	var buf bytes.Buffer
	require.NoError(t, src.codec.ExportCSV(ctx, &buf, CSVOptions{IncludeID: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID,Date,Time,Exercise,Weight(kg),Reps,Type,AddedWeight(kg),BodyWeight(kg),Duration(min),Distance(km),Elevation(m)", lines[0])
	assert.Contains(t, lines[1], ",2024-03-03,06:00,Run,,,timed,,,30,5.2,")
	assert.Contains(t, lines[2], ",2024-03-02,07:05,Pull Up,,12,bodyweight,10,82,,,")

	dst := newFixture(t)
	res, err := dst.codec.ImportCSV(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 3}, res)

	want, err := src.sets.ListSets(ctx)
	require.NoError(t, err)
	got, err := dst.sets.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Exercise, got[i].Exercise)
		assert.Equal(t, want[i].Metrics, got[i].Metrics)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d", i)
	}

	again, err := dst.codec.ImportCSV(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 3}, again)
}

func TestImportKeepsExistingRecordOnIDMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	orig, err := f.sets.AddSet(ctx, setlog.SetInput{
		Exercise:  "Squat",
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Metrics:   models.Weighted{Weight: 100, Reps: 5},
	})
	require.NoError(t, err)

	csvIn := "ID,Date,Time,Exercise,Weight(kg),Reps,Type\n" +
		orig.ID + ",2024-03-01,10:00,Squat,140,5,weighted\n"
	res, err := f.codec.ImportCSV(ctx, strings.NewReader(csvIn))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	jsonIn := `[{"id":"` + orig.ID + `","exercise":"Squat","type":"weighted","weight":150,"reps":3,"timestamp":"2024-03-01T10:00:00.000Z"}]`
	res, err = f.codec.ImportJSON(ctx, strings.NewReader(jsonIn))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	got, err := f.sets.GetSet(ctx, orig.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.Weighted{Weight: 100, Reps: 5}, got.Metrics)

	sets, err := f.sets.ListSets(ctx)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}

func TestImportPreservesUnreadableSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	legacy := `{"id":"legacy","exercise":"Bike","type":"cardio","duration":20,"timestamp":1700000000000}`
	require.NoError(t, f.store.Add(ctx, models.CollectionSets, store.Record{ID: "legacy", Data: []byte(legacy)}))

	sets, err := f.sets.ListSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)

	in := "Date,Exercise,Weight,Reps\n2024-03-01,Squat,100,5\n"
	res, err := f.codec.ImportCSV(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	rec, err := f.store.Get(ctx, models.CollectionSets, "legacy")
	require.NoError(t, err)
	assert.JSONEq(t, legacy, string(rec.Data))

	jsonIn := `[{"exercise":"Row","type":"weighted","weight":60,"reps":10,"timestamp":1709287200000}]`
	res, err = f.codec.ImportJSON(ctx, strings.NewReader(jsonIn))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	n, err := f.store.Count(ctx, models.CollectionSets)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImportCSVHeaderDriven(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := "exercise,Reps,notes,WEIGHT (kg),date\n" +
		"Squat,5,felt good,100,01.03.2024\n" +
		"Squat,5,,102.5,2024-03-04\n"
	res, err := f.codec.ImportCSV(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	sets, err := f.sets.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, models.Weighted{Weight: 102.5, Reps: 5}, sets[0].Metrics)
	assert.True(t, sets[1].Timestamp.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.NotEmpty(t, sets[0].ID)
}

func TestImportCSVStripsByteOrderMark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := "\ufeffDate,Exercise,Weight(kg),Reps\n2024-03-01,Deadlift,140,3\n"
	res, err := f.codec.ImportCSV(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	sets, err := f.sets.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Deadlift", sets[0].Exercise)
}

func TestImportCSVCountsInvalidRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.sets.AddSet(ctx, setlog.SetInput{Exercise: "Dips", Metrics: models.Weighted{Weight: 20, Reps: 8}})
	require.NoError(t, err)

	in := "Date,Time,Exercise,Weight(kg),Reps,Type\n" +
		"2024-03-01,10:00,Row,60,10,weighted\n" +
		"2024-03-01,10:05,Row,,10,weighted\n" +
		"2024-03-01,10:10,Row,abc,10,weighted\n" +
		"2024-03-01,10:15,Plank,,,yoga\n" +
		"not-a-date,10:20,Row,60,10,\n" +
		"2024-03-01,10:25,Dips,,12,bodyweight\n" +
		"2024-03-01,10:30,<b></b>,60,10,\n" +
		",,,,,\n"
	res, err := f.codec.ImportCSV(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Invalid: 6}, res)

	sets, err := f.sets.ListSets(ctx)
	require.NoError(t, err)
	assert.Len(t, sets, 2)
}

func TestImportCSVFormatErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, in := range map[string]string{
		"empty":       "",
		"no date":     "Exercise,Weight,Reps\nSquat,100,5\n",
		"no exercise": "Date,Weight,Reps\n2024-03-01,100,5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.codec.ImportCSV(ctx, strings.NewReader(in))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "csv", fe.Format)
		})
	}
}

func TestExportCSVUsesLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	tokyo := time.FixedZone("JST", 9*3600)
	var buf bytes.Buffer
	require.NoError(t, f.codec.ExportCSV(ctx, &buf, CSVOptions{Location: tokyo}))
	assert.Contains(t, buf.String(), "2024-03-02,03:30,Bench Press,82.5,8,weighted")
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	_, err := src.sets.AddSet(ctx, setlog.SetInput{
		Exercise:  "Deadlift",
		Timestamp: time.Date(2024, 5, 1, 9, 15, 30, 123000000, time.UTC),
		Metrics:   models.Weighted{Weight: 140, Reps: 3},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.codec.ExportJSON(ctx, &buf))
	assert.Contains(t, buf.String(), `"timestamp": "2024-05-01T09:15:30.123Z"`)

	dst := newFixture(t)
	res, err := dst.codec.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	want, err := src.sets.ListSets(ctx)
	require.NoError(t, err)
	got, err := dst.sets.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, want[0].Metrics, got[0].Metrics)
	assert.Equal(t, want[0].Timestamp.UnixMilli(), got[0].Timestamp.UnixMilli())
}

func TestImportJSON(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := `[
		{"exercise": "<b>Row</b>", "weight": 60, "reps": 10, "timestamp": 1709287200000},
		{"exercise": "Plank", "type": "timed", "duration": 2, "timestamp": "2024-03-01T10:00:00Z"},
		{"exercise": "Curl", "weight": 12, "timestamp": "2024-03-01T10:00:00Z"},
		{"exercise": "Curl", "weight": 12, "reps": 10},
		"nonsense"
	]`
	res, err := f.codec.ImportJSON(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2, Invalid: 3}, res)

	names, err := f.sets.ExerciseNames(ctx, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Row", "Plank"}, names)

	row, err := f.sets.LastSet(ctx, "Row")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(1709287200000), row.Timestamp.UnixMilli())
}

func TestImportJSONFormatErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, in := range map[string]string{
		"object": `{"sets": []}`,
		"empty":  `[]`,
		"blank":  ``,
		"broken": `[{"exercise": `,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.codec.ImportJSON(ctx, strings.NewReader(in))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
		})
	}
}

func TestExportYAML(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	var buf bytes.Buffer
	require.NoError(t, f.codec.ExportYAML(ctx, &buf))

	var out struct {
		Tool      string                      `yaml:"tool"`
		Exercises map[string][]map[string]any `yaml:"exercises"`
		Records   []map[string]any            `yaml:"personal_records"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "gymlog", out.Tool)
	assert.Len(t, out.Exercises, 3)
	require.Len(t, out.Exercises["Bench Press"], 1)
	assert.Equal(t, 82.5, out.Exercises["Bench Press"][0]["weight"])
	assert.Len(t, out.Records, 3)
}

func TestExportMarkdown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	var buf bytes.Buffer
	require.NoError(t, f.codec.ExportMarkdown(ctx, &buf, MarkdownOptions{}))
	md := buf.String()

	assert.Contains(t, md, "# Workout Export - ")
	assert.Contains(t, md, "## Bench Press")
	assert.Contains(t, md, "| 2024-03-01 18:30 | 82.5 kg | 8 | 660 kg |")
	assert.Contains(t, md, "| 2024-03-02 07:05 | 12 | +10 kg |")
	assert.Contains(t, md, "| 2024-03-03 06:00 | 30 min | 5.2 km |  |")
	assert.Contains(t, md, "## Personal Records")

	buf.Reset()
	require.NoError(t, f.codec.ExportMarkdown(ctx, &buf, MarkdownOptions{Exercise: "run"}))
	assert.NotContains(t, buf.String(), "## Bench Press")
	assert.Contains(t, buf.String(), "## Run")

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	buf.Reset()
	require.NoError(t, f.codec.ExportMarkdown(ctx, &buf, MarkdownOptions{Since: &since}))
	assert.Contains(t, buf.String(), "No sets logged.")
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t)

	entry := []byte(`{"id":"w1","weight":80.5,"date":"2024-03-01T08:00:00Z"}`)
	require.NoError(t, src.store.Add(ctx, models.CollectionWeightHistory, store.Record{ID: "w1", Data: entry}))

	var buf bytes.Buffer
	require.NoError(t, src.codec.ExportBackup(ctx, &buf))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "exportDate")
	for _, coll := range models.AllCollections {
		assert.Contains(t, doc, coll)
	}

	dst := newFixture(t)
	results, err := dst.codec.ImportBackup(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 3, results[models.CollectionSets].Imported)
	assert.Equal(t, 1, results[models.CollectionWeightHistory].Imported)

	got, err := dst.sets.ListSets(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	again, err := dst.codec.ImportBackup(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 3}, again[models.CollectionSets])
	assert.Equal(t, Result{Skipped: 1}, again[models.CollectionWeightHistory])
}

func TestImportBackupLegacyIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := `{
		"exportDate": "2024-03-01T00:00:00.000Z",
		"weightHistory": [{"id": 1, "weight": 80, "date": "2024-01-01T00:00:00Z"}, {"weight": 81}],
		"settings": [{"key": "theme", "value": "dark"}]
	}`
	results, err := f.codec.ImportBackup(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Invalid: 1}, results[models.CollectionWeightHistory])
	assert.Equal(t, Result{Imported: 1}, results[models.CollectionSettings])

	_, err = f.store.Get(ctx, models.CollectionWeightHistory, "1")
	require.NoError(t, err)
	_, err = f.store.Get(ctx, models.CollectionSettings, "theme")
	require.NoError(t, err)
}

func TestImportBackupFormatErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, in := range map[string]string{
		"array":     `[]`,
		"unknown":   `{"exportDate": "x", "other": []}`,
		"not array": `{"sets": {"id": "a"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.codec.ImportBackup(ctx, strings.NewReader(in))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "backup", fe.Format)
		})
	}
}
