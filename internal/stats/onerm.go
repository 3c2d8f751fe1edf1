// ABOUTME: One-rep-max estimation formulas.
// ABOUTME: Estimates outside 1-10 reps still compute but are flagged low confidence.
package stats

import (
	"fmt"
	"math"
	"strings"
)

// Formula names a 1RM estimation formula.
type Formula string

const (
	Epley    Formula = "epley"
	Brzycki  Formula = "brzycki"
	Lombardi Formula = "lombardi"
	Landers  Formula = "landers"
	OConner  Formula = "oconner"
	Average  Formula = "average"
)

// Formulas lists the individual formulas in display order. Average is not included.
var Formulas = []Formula{Epley, Brzycki, Lombardi, Landers, OConner}

// FormulaLabels maps formulas to display names.
var FormulaLabels = map[Formula]string{
	Epley:    "Epley",
	Brzycki:  "Brzycki",
	Lombardi: "Lombardi",
	Landers:  "Landers",
	OConner:  "O'Conner",
	Average:  "Average",
}

const (
	minConfidentReps = 1
	maxConfidentReps = 10
)

// ParseFormula converts a name into a Formula, ignoring case and apostrophes.
func ParseFormula(s string) (Formula, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "'", ""))
	f := Formula(norm)
	if f == Average {
		return f, nil
	}
	for _, known := range Formulas {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown 1RM formula: %q", s)
}

// Estimate is one 1RM estimate.
type Estimate struct {
	Formula       Formula `json:"formula"`
	Value         float64 `json:"value"`
	LowConfidence bool    `json:"lowConfidence"`
}

// OneRepMax estimates the one-rep max for weight lifted reps times.
func OneRepMax(weight float64, reps int, f Formula) (Estimate, error) {
	if weight <= 0 || reps < 0 {
		return Estimate{}, fmt.Errorf("%w: weight %v, reps %d", ErrInvalidInput, weight, reps)
	}

	var (
		v   float64
		err error
	)
	if f == Average {
		v, err = average(weight, reps)
	} else {
		v, err = compute(f, weight, float64(reps))
	}
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		Formula:       f,
		Value:         v,
		LowConfidence: reps < minConfidentReps || reps > maxConfidentReps,
	}, nil
}

// AllFormulas returns an estimate for every formula followed by their average.
func AllFormulas(weight float64, reps int) ([]Estimate, error) {
	out := make([]Estimate, 0, len(Formulas)+1)
	for _, f := range append(append([]Formula{}, Formulas...), Average) {
		e, err := OneRepMax(weight, reps, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func average(w float64, reps int) (float64, error) {
	sum := 0.0
	for _, f := range Formulas {
		v, err := compute(f, w, float64(reps))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", f, err)
		}
		sum += v
	}
	return sum / float64(len(Formulas)), nil
}

func compute(f Formula, w, r float64) (float64, error) {
	switch f {
	case Epley:
		return w * (1 + r/30), nil
	case Brzycki:
		d := 37 - r
		if d <= 0 {
			return 0, ErrSingularFormula
		}
		return w * (36 / d), nil
	case Lombardi:
		return w * math.Pow(r, 0.10), nil
	case Landers:
		d := 101.3 - 2.67123*r
		if d <= 0 {
			return 0, ErrSingularFormula
		}
		return (100 * w) / d, nil
	case OConner:
		return w * (1 + r/40), nil
	default:
		return 0, fmt.Errorf("unknown 1RM formula: %q", f)
	}
}
