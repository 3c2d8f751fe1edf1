// ABOUTME: Body mass index calculation and classification.
package stats

import "fmt"

// BMI categories.
const (
	Underweight = "underweight"
	Normal      = "normal"
	Overweight  = "overweight"
	Obese       = "obese"
)

// BMIResult is a BMI value rounded to one decimal and its category.
type BMIResult struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// BMI computes weight / height² with height in centimeters. The category is
// taken from the rounded value, so 24.96 reads as 25.0 and is overweight.
func BMI(weightKg, heightCm float64) (BMIResult, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return BMIResult{}, fmt.Errorf("%w: weight %v kg, height %v cm", ErrInvalidInput, weightKg, heightCm)
	}
	m := heightCm / 100
	v := Round1(weightKg / (m * m))
	return BMIResult{Value: v, Category: bmiCategory(v)}, nil
}

func bmiCategory(v float64) string {
	switch {
	case v < 18.5:
		return Underweight
	case v < 25:
		return Normal
	case v < 30:
		return Overweight
	default:
		return Obese
	}
}
