// ABOUTME: Profile, weight history and settings models.
// ABOUTME: The profile is a singleton stored under ProfileID.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProfileID is the fixed key of the singleton profile record.
const ProfileID = "main"

// Profile holds the user's body data and preferences.
type Profile struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname"`
	Weight       float64   `json:"weight"` // kg
	Height       float64   `json:"height"` // cm
	Gender       string    `json:"gender,omitempty"`
	Age          int       `json:"age,omitempty"`
	OneRMFormula string    `json:"oneRmFormula,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID     string    `json:"id"`
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

// NewWeightEntry creates a WeightEntry dated now.
func NewWeightEntry(weight float64) *WeightEntry {
	return &WeightEntry{
		ID:     uuid.New().String(),
		Weight: weight,
		Date:   NowMillis(),
	}
}

// Setting is a generic key/value pair.
type Setting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Collection names. These are stable storage identifiers.
const (
	CollectionSets          = "sets"
	CollectionSessions      = "sessions"
	CollectionExercises     = "exercises"
	CollectionLocations     = "locations"
	CollectionUserProfile   = "userProfile"
	CollectionSettings      = "settings"
	CollectionWeightHistory = "weightHistory"
)

// AllCollections lists every collection in backup order.
var AllCollections = []string{
	CollectionSets,
	CollectionSessions,
	CollectionExercises,
	CollectionLocations,
	CollectionUserProfile,
	CollectionSettings,
	CollectionWeightHistory,
}
