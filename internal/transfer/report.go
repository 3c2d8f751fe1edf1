// ABOUTME: YAML and Markdown exports of the set log.
// ABOUTME: Both are read-only views; neither format is imported back.
package transfer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"gopkg.in/yaml.v3"
)

// ExportVersion identifies the layout of YAML exports.
const ExportVersion = "1.0"

const toolName = "gymlog"

type yamlExport struct {
	Version    string               `yaml:"version"`
	ExportedAt string               `yaml:"exported_at"`
	Tool       string               `yaml:"tool"`
	Exercises  map[string][]yamlSet `yaml:"exercises"`
	Records    []yamlPersonalRecord `yaml:"personal_records,omitempty"`
}

type yamlSet struct {
	ID          string   `yaml:"id"`
	Type        string   `yaml:"type"`
	Timestamp   string   `yaml:"timestamp"`
	Weight      *float64 `yaml:"weight,omitempty"`
	Reps        *int     `yaml:"reps,omitempty"`
	AddedWeight *float64 `yaml:"added_weight,omitempty"`
	Duration    *float64 `yaml:"duration,omitempty"`
	Distance    *float64 `yaml:"distance,omitempty"`
	Elevation   *float64 `yaml:"elevation,omitempty"`
}

type yamlPersonalRecord struct {
	Exercise string  `yaml:"exercise"`
	Type     string  `yaml:"type"`
	Value    float64 `yaml:"value"`
	Date     string  `yaml:"date"`
}

// ExportYAML writes the sets grouped by exercise plus the personal records.
func (c *Codec) ExportYAML(ctx context.Context, w io.Writer) error {
	sets, err := c.sets.ListSets(ctx)
	if err != nil {
		return err
	}

	out := yamlExport{
		Version:    ExportVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       toolName,
		Exercises:  make(map[string][]yamlSet),
	}

	for _, s := range sets {
		f := s.Flatten()
		out.Exercises[f.Exercise] = append(out.Exercises[f.Exercise], yamlSet{
			ID:          shortID(f.ID),
			Type:        string(f.Type),
			Timestamp:   f.Timestamp.In(c.loc).Format(time.RFC3339),
			Weight:      f.Weight,
			Reps:        f.Reps,
			AddedWeight: f.AddedWeight,
			Duration:    f.Duration,
			Distance:    f.Distance,
			Elevation:   f.Elevation,
		})
	}

	for _, r := range stats.PersonalRecords(sets) {
		out.Records = append(out.Records, yamlPersonalRecord{
			Exercise: r.Exercise,
			Type:     string(r.Type),
			Value:    r.Value(),
			Date:     r.Timestamp.In(c.loc).Format("2006-01-02"),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// MarkdownOptions filters the Markdown export.
type MarkdownOptions struct {
	// Exercise limits the report to one exercise, matched case-insensitively.
	Exercise string
	// Since drops sets logged before it.
	Since *time.Time
}

// ExportMarkdown writes a human-readable report: one table per exercise
// followed by the personal records.
func (c *Codec) ExportMarkdown(ctx context.Context, w io.Writer, opts MarkdownOptions) error {
	all, err := c.sets.ListSets(ctx)
	if err != nil {
		return err
	}

	var sets []*models.Set
	for _, s := range all {
		if opts.Exercise != "" && !strings.EqualFold(s.Exercise, opts.Exercise) {
			continue
		}
		if opts.Since != nil && s.Timestamp.Before(*opts.Since) {
			continue
		}
		sets = append(sets, s)
	}

	var sb strings.Builder
	now := time.Now().In(c.loc)

	sb.WriteString(fmt.Sprintf("# Workout Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(sets) == 0 {
		sb.WriteString("No sets logged.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	groups := stats.GroupByExercise(sets)
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})

	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("## %s\n\n", g.Name))
		switch g.Sets[0].Type() {
		case models.SetBodyweight:
			sb.WriteString("| Date | Reps | Added |\n")
			sb.WriteString("|------|------|-------|\n")
		case models.SetTimed:
			sb.WriteString("| Date | Duration | Distance | Elevation |\n")
			sb.WriteString("|------|----------|----------|-----------|\n")
		default:
			sb.WriteString("| Date | Weight | Reps | Volume |\n")
			sb.WriteString("|------|--------|------|--------|\n")
		}
		for _, s := range g.Sets {
			sb.WriteString(c.markdownRow(s))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Personal Records\n\n")
	sb.WriteString("| Exercise | Best | Date |\n")
	sb.WriteString("|----------|------|------|\n")
	for _, r := range stats.PersonalRecords(sets) {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			r.Exercise, describeRecord(r), r.Timestamp.In(c.loc).Format("2006-01-02")))
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func (c *Codec) markdownRow(s *models.Set) string {
	date := s.Timestamp.In(c.loc).Format("2006-01-02 15:04")
	switch m := s.Metrics.(type) {
	case models.Bodyweight:
		added := ""
		if m.AddedWeight > 0 {
			added = fmt.Sprintf("+%g kg", m.AddedWeight)
		}
		return fmt.Sprintf("| %s | %d | %s |\n", date, m.Reps, added)
	case models.Timed:
		return fmt.Sprintf("| %s | %g min | %s | %s |\n", date, m.Duration,
			optional(m.Distance, "km"), optional(m.Elevation, "m"))
	case models.Weighted:
		return fmt.Sprintf("| %s | %g kg | %d | %g kg |\n", date, m.Weight, m.Reps, m.Volume())
	}
	return ""
}

func describeRecord(r stats.PersonalRecord) string {
	switch r.Type {
	case models.SetBodyweight:
		return fmt.Sprintf("%d reps", r.Reps)
	case models.SetTimed:
		return fmt.Sprintf("%g min", r.Duration)
	default:
		return fmt.Sprintf("%g kg × %d", r.Weight, r.Reps)
	}
}

func optional(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g %s", *v, unit)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
