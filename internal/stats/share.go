// ABOUTME: Plain-text summaries handed to the share layer.
package stats

import (
	"fmt"
	"strings"

	"github.com/harperreed/gymlog/internal/models"
)

// ShareText renders a personal record as a short shareable message.
func ShareText(r PersonalRecord) string {
	var b strings.Builder
	b.WriteString("🏋️ GymLog - My Record!\n\n")
	fmt.Fprintf(&b, "💪 %s\n", r.Exercise)

	switch r.Type {
	case models.SetBodyweight:
		fmt.Fprintf(&b, "⚡ %d reps", r.Reps)
		if r.AddedWeight > 0 {
			fmt.Fprintf(&b, " (+%gkg)", r.AddedWeight)
		}
		b.WriteString("\n")
	case models.SetTimed:
		fmt.Fprintf(&b, "⚡ %g minutes", r.Duration)
		if r.Distance != nil && *r.Distance > 0 {
			fmt.Fprintf(&b, " | %g km", *r.Distance)
		}
		b.WriteString("\n")
	default:
		fmt.Fprintf(&b, "⚡ %gkg × %d reps\n", r.Weight, r.Reps)
	}

	fmt.Fprintf(&b, "📅 %s\n\n", r.Timestamp.Format("2006-01-02"))
	b.WriteString("#GymLog #Training #Fitness")
	return b.String()
}

// NewRecordShareText renders a freshly beaten weight record.
func NewRecordShareText(r NewRecord, reps int) string {
	return fmt.Sprintf("My %s record is now %gkg × %d (+%gkg)! 💪 Logged with #GymLog",
		r.Exercise, r.NewWeight, reps, r.Improvement)
}
