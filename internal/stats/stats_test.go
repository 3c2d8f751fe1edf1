// ABOUTME: Tests for the statistics engine.
// ABOUTME: Covers records, rankings, 1RM, BMI, session totals and series.
package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

func weighted(name string, weight float64, reps int, at time.Time) *models.Set {
	return &models.Set{ID: name + at.String(), Exercise: name, Timestamp: at, Metrics: models.Weighted{Weight: weight, Reps: reps}}
}

func bodyweight(name string, reps int, at time.Time) *models.Set {
	return &models.Set{ID: name + at.String(), Exercise: name, Timestamp: at, Metrics: models.Bodyweight{Reps: reps}}
}

func timed(name string, minutes float64, at time.Time) *models.Set {
	return &models.Set{ID: name + at.String(), Exercise: name, Timestamp: at, Metrics: models.Timed{Duration: minutes}}
}

func TestGroupByExercise_FirstSeenOrder(t *testing.T) {
	sets := []*models.Set{
		weighted("Bench", 80, 5, t0),
		weighted("Squat", 100, 5, t0),
		weighted("Bench", 85, 5, t0.Add(time.Minute)),
	}
	groups := GroupByExercise(sets)
	require.Len(t, groups, 2)
	assert.Equal(t, "Bench", groups[0].Name)
	assert.Len(t, groups[0].Sets, 2)
	assert.Equal(t, "Squat", groups[1].Name)
}

func TestTopExercises(t *testing.T) {
	sets := []*models.Set{
		weighted("Bench", 80, 5, t0),
		bodyweight("Pull-up", 10, t0),
		weighted("Squat", 100, 5, t0),
		weighted("Squat", 100, 3, t0),
		bodyweight("Pull-up", 8, t0),
		weighted("Row", 60, 10, t0),
	}

	top := TopExercises(sets, 3)
	require.Len(t, top, 3)
	// Pull-up and Squat tie on count; Pull-up was seen first.
	assert.Equal(t, "Pull-up", top[0].Name)
	assert.Equal(t, 2, top[0].Count)
	assert.Zero(t, top[0].TotalVolume)
	assert.Equal(t, "Squat", top[1].Name)
	assert.Equal(t, 800.0, top[1].TotalVolume)
	assert.Equal(t, "Bench", top[2].Name)

	assert.Len(t, TopExercises(sets, 0), 4)
	assert.Empty(t, TopExercises(nil, 5))
}

func TestPersonalRecords_Weighted(t *testing.T) {
	sets := []*models.Set{
		weighted("Squat", 100, 5, t0),
		weighted("Squat", 120, 3, t0.Add(time.Hour)),
	}
	records := PersonalRecords(sets)
	require.Len(t, records, 1)
	assert.Equal(t, "Squat", records[0].Exercise)
	assert.Equal(t, 120.0, records[0].Weight)
	assert.Equal(t, 3, records[0].Reps)
}

func TestPersonalRecords_TieKeepsFirst(t *testing.T) {
	first := weighted("Bench", 100, 5, t0)
	sets := []*models.Set{first, weighted("Bench", 100, 8, t0.Add(time.Hour))}

	records := PersonalRecords(sets)
	require.Len(t, records, 1)
	assert.Equal(t, first.ID, records[0].SetID)
	assert.Equal(t, 5, records[0].Reps)
}

func TestPersonalRecords_PerTypeMetric(t *testing.T) {
	sets := []*models.Set{
		bodyweight("Pull-up", 8, t0),
		bodyweight("Pull-up", 12, t0),
		timed("Plank", 2, t0),
		timed("Plank", 3.5, t0),
	}
	records := PersonalRecords(sets)
	require.Len(t, records, 2)

	byName := map[string]PersonalRecord{}
	for _, r := range records {
		byName[r.Exercise] = r
	}
	assert.Equal(t, 12, byName["Pull-up"].Reps)
	assert.Equal(t, 3.5, byName["Plank"].Duration)
}

func TestPersonalRecords_SameTypeSortedByValue(t *testing.T) {
	sets := []*models.Set{
		weighted("Curl", 20, 10, t0),
		weighted("Deadlift", 180, 3, t0),
		weighted("Bench", 100, 5, t0),
	}
	records := PersonalRecords(sets)
	require.Len(t, records, 3)
	assert.Equal(t, "Deadlift", records[0].Exercise)
	assert.Equal(t, "Bench", records[1].Exercise)
	assert.Equal(t, "Curl", records[2].Exercise)
}

func TestPersonalRecords_CrossTypeAlphabetical(t *testing.T) {
	sets := []*models.Set{
		timed("Run", 30, t0),
		weighted("Bench", 100, 5, t0),
	}
	records := PersonalRecords(sets)
	require.Len(t, records, 2)
	assert.Equal(t, "Bench", records[0].Exercise)
	assert.Equal(t, "Run", records[1].Exercise)
}

func TestCheckNewRecord(t *testing.T) {
	prior := []*models.Set{
		weighted("Bench", 90, 5, t0),
		weighted("Bench", 100, 3, t0),
	}

	rec := CheckNewRecord(prior, "Bench", 105)
	require.NotNil(t, rec)
	assert.Equal(t, 5.0, rec.Improvement)
	assert.Equal(t, 100.0, rec.PreviousWeight)
	assert.Equal(t, 105.0, rec.NewWeight)

	assert.Nil(t, CheckNewRecord(prior, "Bench", 100), "equal weight is not a record")
	assert.Nil(t, CheckNewRecord([]*models.Set{weighted("Bench", 110, 1, t0)}, "Bench", 105))
	assert.Nil(t, CheckNewRecord(nil, "Bench", 105), "first set is not a record")
	assert.NotNil(t, CheckNewRecord(prior, "bench", 101), "names compare case-insensitively")
}

func TestOneRepMax(t *testing.T) {
	tests := []struct {
		formula Formula
		want    float64
	}{
		{Epley, 116.7},
		{Brzycki, 112.5},
		{Lombardi, 117.5},
		{Landers, 113.7},
		{OConner, 112.5},
		{Average, 114.6},
	}
	for _, tt := range tests {
		t.Run(string(tt.formula), func(t *testing.T) {
			e, err := OneRepMax(100, 5, tt.formula)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Round1(e.Value))
			assert.False(t, e.LowConfidence)
		})
	}
}

func TestOneRepMax_LowConfidenceStillComputes(t *testing.T) {
	e, err := OneRepMax(60, 15, Epley)
	require.NoError(t, err)
	assert.True(t, e.LowConfidence)
	assert.Equal(t, 90.0, e.Value)

	e, err = OneRepMax(60, 0, Epley)
	require.NoError(t, err)
	assert.True(t, e.LowConfidence)
	assert.Equal(t, 60.0, e.Value)
}

func TestOneRepMax_Singular(t *testing.T) {
	_, err := OneRepMax(50, 37, Brzycki)
	assert.True(t, errors.Is(err, ErrSingularFormula))

	_, err = OneRepMax(50, 37, Average)
	assert.ErrorIs(t, err, ErrSingularFormula)

	_, err = OneRepMax(50, 37, Epley)
	assert.NoError(t, err)
}

func TestOneRepMax_InvalidInput(t *testing.T) {
	_, err := OneRepMax(0, 5, Epley)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = OneRepMax(100, -1, Epley)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = OneRepMax(100, 5, Formula("mayhew"))
	assert.Error(t, err)
}

func TestAllFormulas(t *testing.T) {
	all, err := AllFormulas(100, 5)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, Epley, all[0].Formula)
	assert.Equal(t, Average, all[5].Formula)
}

func TestParseFormula(t *testing.T) {
	for in, want := range map[string]Formula{
		"epley":     Epley,
		"Brzycki":   Brzycki,
		"O'Conner":  OConner,
		" average ": Average,
	} {
		got, err := ParseFormula(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormula("wathan")
	assert.Error(t, err)
}

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		height   float64
		value    float64
		category string
	}{
		{"normal", 80, 180, 24.7, Normal},
		{"underweight", 50, 180, 15.4, Underweight},
		{"overweight", 90, 180, 27.8, Overweight},
		{"obese", 110, 180, 34.0, Obese},
		{"rounds up into overweight", 24.96, 100, 25.0, Overweight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BMI(tt.weight, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got.Value)
			assert.Equal(t, tt.category, got.Category)
		})
	}

	_, err := BMI(80, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessionStats(t *testing.T) {
	exercises := []*models.Exercise{
		{Sets: 3, Reps: 10, Weight: 50, Time: 0, Category: "Chest"},
		{Sets: 4, Reps: 8, Weight: 100, Time: 0, Category: "Legs"},
		{Sets: 1, Reps: 0, Weight: 0, Time: 600, Category: ""},
		{Sets: 3, Reps: 12, Weight: 20, Category: "Chest"},
	}
	sum := SessionStats(exercises)
	assert.Equal(t, 4, sum.TotalExercises)
	assert.Equal(t, 11, sum.TotalSets)
	assert.Equal(t, 30, sum.TotalReps)
	assert.Equal(t, 1500.0+3200.0+720.0, sum.TotalWeight)
	assert.Equal(t, 600.0, sum.TotalTime)
	assert.Equal(t, map[string]int{"Chest": 2, "Legs": 1, models.DefaultCategory: 1}, sum.Categories)

	empty := SessionStats(nil)
	assert.Zero(t, empty.TotalExercises)
	assert.Empty(t, empty.Categories)
}

func TestExerciseSeries(t *testing.T) {
	sets := []*models.Set{
		weighted("Bench", 90, 5, t0.Add(2*time.Hour)),
		weighted("Squat", 100, 5, t0),
		weighted("bench", 80, 5, t0),
	}
	points := ExerciseSeries(sets, "Bench", Epley)
	require.Len(t, points, 2)
	assert.Equal(t, 80.0, points[0].Weight)
	assert.Equal(t, 400.0, points[0].Volume)
	assert.Equal(t, 93.3, points[0].OneRM)
	assert.Equal(t, 90.0, points[1].Weight)
}

func TestDailyHistory(t *testing.T) {
	day1 := time.Date(2021, 5, 4, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2021, 5, 5, 18, 0, 0, 0, time.UTC)
	sets := []*models.Set{
		weighted("Bench", 75, 10, day1),
		weighted("Bench", 80, 12, day1.Add(10*time.Minute)),
		weighted("Bench", 50, 13, day1.Add(20*time.Minute)),
		weighted("Bench", 20, 10, day2),
		weighted("Squat", 200, 1, day2),
	}
	hist := DailyHistory(sets, "Bench", time.UTC)
	require.Len(t, hist, 2)
	assert.Equal(t, 3, hist[0].Sets)
	assert.Equal(t, 68.3, hist[0].AvgWeight)
	assert.Equal(t, 11.7, hist[0].AvgReps)
	assert.Equal(t, 1, hist[1].Sets)
	assert.Equal(t, 20.0, hist[1].AvgWeight)
	assert.True(t, hist[0].Day.Before(hist[1].Day))
}

func TestSuggestNextWeight(t *testing.T) {
	w, ok := SuggestNextWeight(weighted("Bench", 80, 5, t0), 5)
	assert.True(t, ok)
	assert.Equal(t, 82.5, w)

	_, ok = SuggestNextWeight(weighted("Bench", 80, 4, t0), 8)
	assert.False(t, ok)
	_, ok = SuggestNextWeight(weighted("Bench", 80, 8, t0), 3)
	assert.False(t, ok)
	_, ok = SuggestNextWeight(bodyweight("Dip", 10, t0), 8)
	assert.False(t, ok)
	_, ok = SuggestNextWeight(nil, 8)
	assert.False(t, ok)
}

func TestShareText(t *testing.T) {
	text := ShareText(PersonalRecord{Exercise: "Squat", Type: models.SetWeighted, Weight: 120, Reps: 3, Timestamp: t0})
	assert.Contains(t, text, "Squat")
	assert.Contains(t, text, "120kg × 3 reps")
	assert.Contains(t, text, "2024-05-05")

	dist := 5.0
	text = ShareText(PersonalRecord{Exercise: "Run", Type: models.SetTimed, Duration: 30, Distance: &dist, Timestamp: t0})
	assert.Contains(t, text, "30 minutes | 5 km")

	msg := NewRecordShareText(NewRecord{Exercise: "Bench", NewWeight: 105, Improvement: 5}, 3)
	assert.Contains(t, msg, "105kg × 3 (+5kg)")
}
