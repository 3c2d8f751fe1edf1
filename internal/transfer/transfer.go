// ABOUTME: Import and export of the workout log in portable text formats.
// ABOUTME: Imports merge into existing data and persist once per call.
package transfer

import (
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/schema"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

// FormatError reports an import payload that cannot be read at all.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s import: %s", e.Format, e.Reason)
}

// Result counts the outcome of an import. Skipped rows duplicate an
// existing ID; Invalid rows could not be parsed or failed validation.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

func (r Result) String() string {
	return fmt.Sprintf("%d imported, %d skipped, %d invalid", r.Imported, r.Skipped, r.Invalid)
}

// Codec reads and writes the log in CSV, JSON, YAML, Markdown and backup form.
type Codec struct {
	sets     *setlog.Log
	store    store.Store
	migrator *schema.Migrator
	loc      *time.Location
	log      logrus.FieldLogger
}

// New creates a Codec. CSV dates and times are written and read in loc;
// nil means the local zone.
func New(sets *setlog.Log, s store.Store, m *schema.Migrator, loc *time.Location, log logrus.FieldLogger) *Codec {
	if loc == nil {
		loc = time.Local
	}
	return &Codec{sets: sets, store: s, migrator: m, loc: loc, log: log}
}
