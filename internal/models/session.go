// ABOUTME: Session and Exercise models for the relational workout log.
// ABOUTME: A Session groups many Exercise entries by SessionID.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is a named, dated container of exercises.
type Session struct {
	ID          string    `json:"id"`
	SessionName string    `json:"sessionName"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultSessionName returns the label used when a session is created without a name.
func DefaultSessionName(t time.Time) string {
	return fmt.Sprintf("Session %d", t.UnixMilli())
}

// NewSession creates a Session with a generated ID. An empty name gets a
// timestamp-derived label.
func NewSession(name string) *Session {
	now := NowMillis()
	if name == "" {
		name = DefaultSessionName(now)
	}
	return &Session{
		ID:          uuid.New().String(),
		SessionName: name,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithDate sets the session date.
func (s *Session) WithDate(t time.Time) *Session {
	s.Date = t
	return s
}

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a named place where exercises happen.
type Location struct {
	ID           string    `json:"id,omitempty"`
	LocationName string    `json:"locationName"`
	Coords       Coords    `json:"coords"`
	SavedAt      time.Time `json:"savedAt,omitempty"`
}

// DefaultCategory is assigned to exercises without a category.
const DefaultCategory = "Other"

// DefaultExerciseName is assigned to exercises without a name.
const DefaultExerciseName = "Unnamed"

// PredefinedCategories are always offered alongside custom ones.
var PredefinedCategories = []string{"Chest", "Back", "Legs", "Shoulders", "Arms", "Cardio", "Other"}

// Exercise is one entry within a Session.
type Exercise struct {
	ID           string    `json:"id"`
	ExerciseName string    `json:"exerciseName"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	Time         float64   `json:"time"` // seconds
	Notes        string    `json:"notes"`
	Photo        *string   `json:"photo"` // data URI
	Date         time.Time `json:"date"`
	Category     string    `json:"category"`
	Location     *Location `json:"location,omitempty"`
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewExercise creates an Exercise owned by sessionID.
func NewExercise(sessionID, name string) *Exercise {
	now := NowMillis()
	if name == "" {
		name = DefaultExerciseName
	}
	return &Exercise{
		ID:           uuid.New().String(),
		ExerciseName: name,
		Date:         now,
		Category:     DefaultCategory,
		SessionID:    sessionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Volume returns sets × reps × weight.
func (e *Exercise) Volume() float64 {
	return float64(e.Sets) * float64(e.Reps) * e.Weight
}

// CopyTo returns a copy of the exercise re-parented to sessionID with a new
// ID and date. The photo is not copied.
func (e *Exercise) CopyTo(sessionID string, date time.Time) *Exercise {
	c := *e
	now := NowMillis()
	c.ID = uuid.New().String()
	c.SessionID = sessionID
	c.Date = date
	c.Photo = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	if e.Location != nil {
		loc := *e.Location
		c.Location = &loc
	}
	return &c
}
