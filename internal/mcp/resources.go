// ABOUTME: MCP resource implementations for the workout log.
// ABOUTME: Provides gymlog://records and gymlog://recent resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/gymlog/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recordsURI = "gymlog://records"
	recentURI  = "gymlog://recent"
)

func (s *Server) registerResources() {
	// gymlog://records - best set per exercise
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recordsURI,
		Name:        "Personal Records",
		Description: "Best set per exercise with share text",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	// gymlog://recent - last sets and sessions
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Training",
		Description: "Last 10 sets and the 5 newest sessions",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

type recordEntry struct {
	stats.PersonalRecord
	Share string `json:"share"`
}

func (s *Server) handleRecordsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sets, err := s.app.Sets.ListSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}

	records := stats.PersonalRecords(sets)
	entries := make([]recordEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, recordEntry{PersonalRecord: r, Share: stats.ShareText(r)})
	}

	return jsonResource(recordsURI, map[string]any{
		"count":   len(entries),
		"records": entries,
	})
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sets, err := s.app.Sets.ListSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	views := make([]setView, 0, 10)
	for _, set := range sets[:min(10, len(sets))] {
		views = append(views, viewOf(set))
	}

	sessions, err := s.app.Sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return jsonResource(recentURI, map[string]any{
		"sets":     views,
		"sessions": sessions[:min(5, len(sessions))],
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
