// ABOUTME: MCP tool implementations for the workout log.
// ABOUTME: Provides set logging, statistics and session lookups.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_set",
		Description: "Log a set (weighted, bodyweight or timed) for an exercise",
	}, s.handleAddSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sets",
		Description: "List recent sets, optionally filtered by exercise",
	}, s.handleListSets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_set",
		Description: "Delete a set by ID or ID prefix",
	}, s.handleDeleteSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "personal_records",
		Description: "Best set per exercise: heaviest weight, most reps, or longest duration",
	}, s.handlePersonalRecords)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "top_exercises",
		Description: "Most frequently logged exercises with total volume",
	}, s.handleTopExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "one_rep_max",
		Description: "Estimate a one-rep max from weight and reps",
	}, s.handleOneRepMax)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "bmi",
		Description: "Compute body mass index, using the saved profile when values are omitted",
	}, s.handleBMI)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List workout sessions, optionally searched by name or limited to recent days",
	}, s.handleListSessions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "session_stats",
		Description: "Totals for one session: exercises, sets, reps, volume and time",
	}, s.handleSessionStats)
}

// Tool input/output types

type addSetInput struct {
	Exercise    string  `json:"exercise" jsonschema:"Exercise name"`
	Type        string  `json:"type,omitempty" jsonschema:"Set type: weighted (default), bodyweight or timed"`
	Weight      float64 `json:"weight,omitempty" jsonschema:"Weight in kg for weighted sets"`
	Reps        int     `json:"reps,omitempty" jsonschema:"Repetitions for weighted and bodyweight sets"`
	AddedWeight float64 `json:"added_weight,omitempty" jsonschema:"Extra load in kg for bodyweight sets"`
	Duration    float64 `json:"duration,omitempty" jsonschema:"Duration in minutes for timed sets"`
	Distance    float64 `json:"distance,omitempty" jsonschema:"Distance in km for timed sets"`
	Elevation   float64 `json:"elevation,omitempty" jsonschema:"Elevation gain in meters for timed sets"`
	Timestamp   string  `json:"timestamp,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type setOutput struct {
	ID        string           `json:"id"`
	Exercise  string           `json:"exercise"`
	Type      string           `json:"type"`
	NewRecord *stats.NewRecord `json:"new_record,omitempty"`
	Message   string           `json:"message"`
}

type listSetsInput struct {
	Exercise string `json:"exercise,omitempty" jsonschema:"Filter by exercise name"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type deleteSetInput struct {
	ID string `json:"id" jsonschema:"Set ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type personalRecordsInput struct {
	Exercise string `json:"exercise,omitempty" jsonschema:"Only return the record for this exercise"`
}

type topExercisesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Number of exercises (default 5)"`
}

type oneRepMaxInput struct {
	Weight  float64 `json:"weight" jsonschema:"Weight lifted in kg"`
	Reps    int     `json:"reps" jsonschema:"Repetitions performed"`
	Formula string  `json:"formula,omitempty" jsonschema:"epley, brzycki, lombardi, landers, oconner or average; defaults to the profile setting"`
	All     bool    `json:"all,omitempty" jsonschema:"Return every formula"`
}

type bmiInput struct {
	Weight float64 `json:"weight,omitempty" jsonschema:"Body weight in kg"`
	Height float64 `json:"height,omitempty" jsonschema:"Height in cm"`
}

type listSessionsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive name search"`
	Days  int    `json:"days,omitempty" jsonschema:"Only sessions from the last N days"`
}

type sessionStatsInput struct {
	SessionID string `json:"session_id" jsonschema:"Session ID or prefix"`
}

// setView is the JSON shape of a set returned to clients.
type setView struct {
	ID          string   `json:"id"`
	Exercise    string   `json:"exercise"`
	Type        string   `json:"type"`
	Weight      *float64 `json:"weight,omitempty"`
	Reps        *int     `json:"reps,omitempty"`
	AddedWeight *float64 `json:"added_weight,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	Elevation   *float64 `json:"elevation,omitempty"`
	Timestamp   string   `json:"timestamp"`
}

func viewOf(s *models.Set) setView {
	f := s.Flatten()
	return setView{
		ID:          f.ID,
		Exercise:    f.Exercise,
		Type:        string(f.Type),
		Weight:      f.Weight,
		Reps:        f.Reps,
		AddedWeight: f.AddedWeight,
		Duration:    f.Duration,
		Distance:    f.Distance,
		Elevation:   f.Elevation,
		Timestamp:   f.Timestamp.Format(time.RFC3339),
	}
}

// Tool handlers

func (s *Server) handleAddSet(ctx context.Context, req *mcp.CallToolRequest, input addSetInput) (*mcp.CallToolResult, setOutput, error) {
	t, err := models.ParseSetType(input.Type)
	if err != nil {
		return nil, setOutput{}, err
	}

	var m models.Metrics
	switch t {
	case models.SetWeighted:
		m = models.Weighted{Weight: input.Weight, Reps: input.Reps}
	case models.SetBodyweight:
		bw, err := s.app.BodyWeight(ctx)
		if err != nil {
			return nil, setOutput{}, err
		}
		m = models.Bodyweight{Reps: input.Reps, AddedWeight: input.AddedWeight, BodyWeight: bw}
	case models.SetTimed:
		timed := models.Timed{Duration: input.Duration}
		if input.Distance > 0 {
			timed.Distance = &input.Distance
		}
		if input.Elevation > 0 {
			timed.Elevation = &input.Elevation
		}
		m = timed
	}

	in := setlog.SetInput{Exercise: input.Exercise, Metrics: m}
	if input.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			ts, err = time.ParseInLocation("2006-01-02 15:04", input.Timestamp, s.app.Location)
		}
		if err != nil {
			return nil, setOutput{}, fmt.Errorf("invalid timestamp %q", input.Timestamp)
		}
		in.Timestamp = ts
	}

	var record *stats.NewRecord
	if t == models.SetWeighted {
		record, err = s.app.Sets.CheckNewRecord(ctx, input.Exercise, input.Weight)
		if err != nil {
			return nil, setOutput{}, err
		}
	}

	set, err := s.app.Sets.AddSet(ctx, in)
	if err != nil {
		return nil, setOutput{}, fmt.Errorf("failed to add set: %w", err)
	}

	msg := fmt.Sprintf("Logged %s (%s, ID: %s)", set.Exercise, set.Type(), set.ID[:8])
	if record != nil {
		msg += fmt.Sprintf(". New personal record: %g kg (+%g kg)", record.NewWeight, record.Improvement)
	}

	return nil, setOutput{
		ID:        set.ID,
		Exercise:  set.Exercise,
		Type:      string(set.Type()),
		NewRecord: record,
		Message:   msg,
	}, nil
}

func (s *Server) handleListSets(ctx context.Context, req *mcp.CallToolRequest, input listSetsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	sets, err := s.app.Sets.ListSets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sets: %w", err)
	}

	var out []setView
	for _, set := range sets {
		if input.Exercise != "" && !strings.EqualFold(set.Exercise, input.Exercise) {
			continue
		}
		out = append(out, viewOf(set))
		if len(out) == input.Limit {
			break
		}
	}

	if len(out) == 0 {
		return nil, map[string]any{"message": "No sets found."}, nil
	}
	return nil, map[string]any{"sets": out}, nil
}

func (s *Server) handleDeleteSet(ctx context.Context, req *mcp.CallToolRequest, input deleteSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	id, err := s.app.Sets.ResolveID(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete set: %w", err)
	}
	if _, err := s.app.Sets.DeleteSet(ctx, id); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete set: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted set: %s", id[:min(8, len(id))]),
	}, nil
}

func (s *Server) handlePersonalRecords(ctx context.Context, req *mcp.CallToolRequest, input personalRecordsInput) (*mcp.CallToolResult, any, error) {
	sets, err := s.app.Sets.ListSets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sets: %w", err)
	}

	records := stats.PersonalRecords(sets)
	if input.Exercise != "" {
		var filtered []stats.PersonalRecord
		for _, r := range records {
			if strings.EqualFold(r.Exercise, input.Exercise) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		return nil, map[string]any{"message": "No records yet."}, nil
	}
	return nil, map[string]any{"records": records}, nil
}

func (s *Server) handleTopExercises(ctx context.Context, req *mcp.CallToolRequest, input topExercisesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 5
	}

	sets, err := s.app.Sets.ListSets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sets: %w", err)
	}

	top := stats.TopExercises(sets, input.Limit)
	if len(top) == 0 {
		return nil, map[string]any{"message": "No sets found."}, nil
	}
	return nil, map[string]any{"exercises": top}, nil
}

func (s *Server) handleOneRepMax(ctx context.Context, req *mcp.CallToolRequest, input oneRepMaxInput) (*mcp.CallToolResult, any, error) {
	if input.All {
		estimates, err := s.app.OneRepMax(input.Weight, input.Reps, "", true)
		if err != nil {
			return nil, nil, err
		}
		return nil, map[string]any{"estimates": estimates}, nil
	}

	formula, err := s.formula(ctx, input.Formula)
	if err != nil {
		return nil, nil, err
	}
	estimates, err := s.app.OneRepMax(input.Weight, input.Reps, formula, false)
	if err != nil {
		return nil, nil, err
	}
	return nil, estimates[0], nil
}

func (s *Server) formula(ctx context.Context, name string) (stats.Formula, error) {
	if name != "" {
		return stats.ParseFormula(name)
	}
	return s.app.OneRMFormula(ctx)
}

func (s *Server) handleBMI(ctx context.Context, req *mcp.CallToolRequest, input bmiInput) (*mcp.CallToolResult, any, error) {
	if input.Weight == 0 || input.Height == 0 {
		p, err := s.app.Profile.Profile(ctx)
		if err != nil {
			return nil, nil, err
		}
		if p != nil {
			if input.Weight == 0 {
				input.Weight = p.Weight
			}
			if input.Height == 0 {
				input.Height = p.Height
			}
		}
	}

	res, err := stats.BMI(input.Weight, input.Height)
	if err != nil {
		return nil, nil, fmt.Errorf("weight and height are required: %w", err)
	}
	return nil, res, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input listSessionsInput) (*mcp.CallToolResult, any, error) {
	var (
		found []*models.Session
		err   error
	)
	switch {
	case input.Query != "":
		found, err = s.app.Sessions.SearchSessions(ctx, input.Query)
	case input.Days > 0:
		found, err = s.app.Sessions.RecentSessions(ctx, input.Days)
	default:
		all, err := s.app.Sessions.ListSessions(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(all) == 0 {
			return nil, map[string]any{"message": "No sessions found."}, nil
		}
		return nil, map[string]any{"sessions": all}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(found) == 0 {
		return nil, map[string]any{"message": "No sessions found."}, nil
	}
	return nil, map[string]any{"sessions": found}, nil
}

func (s *Server) handleSessionStats(ctx context.Context, req *mcp.CallToolRequest, input sessionStatsInput) (*mcp.CallToolResult, any, error) {
	id, err := s.app.Sessions.ResolveSessionID(ctx, input.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}
	sum, err := s.app.Sessions.SessionStats(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return nil, sum, nil
}
