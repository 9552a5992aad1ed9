package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smartcompute/monitoring-system/internal/backup"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
	"github.com/smartcompute/monitoring-system/internal/core/service"
)

// TriagePreviewTool defines the MCP tool schema for dry-run scoring.
func TriagePreviewTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "triage_preview",
		Description: "Scores a hypothetical detection and reports the routing decision without ingesting it",
	}
}

// SubmitEventTool defines the MCP tool schema for event ingestion.
func SubmitEventTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "submit_event",
		Description: "Ingests a security event through the triage pipeline",
	}
}

// GetIncidentTool defines the MCP tool schema for incident lookup.
func GetIncidentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_incident",
		Description: "Retrieves a single incident with its full status history",
	}
}

// ListIncidentsTool defines the MCP tool schema for incident queries.
func ListIncidentsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_incidents",
		Description: "Lists incidents matching status, severity, category, and asset filters",
	}
}

// BackupStatusTool defines the MCP tool schema for backup catalog queries.
func BackupStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "backup_status",
		Description: "Reports the status and replication results of a backup run",
	}
}

// TriagePreviewHandler scores the detection and asks the orchestrator what it
// would do with an incident at that score. Nothing is persisted.
func TriagePreviewHandler(bizCtx domain.BusinessContext, orch *service.Orchestrator) mcp.ToolHandlerFor[TriagePreviewInput, TriagePreviewResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TriagePreviewInput) (*mcp.CallToolResult, TriagePreviewResult, error) {
		ts, err := parseTimestamp(input.Timestamp)
		if err != nil {
			return nil, TriagePreviewResult{}, err
		}

		score, severity := service.ScoreEvent(bizCtx, ports.SecurityEventInput{
			AssetID:    input.AssetID,
			Category:   input.Category,
			Severity:   input.Severity,
			Confidence: input.Confidence,
			Timestamp:  ts,
		})

		decision := orch.Route(&domain.Incident{
			AssetID:  input.AssetID,
			Category: domain.ThreatCategory(input.Category),
			Severity: severity,
			Score:    score,
			Status:   domain.StatusOpen,
		})

		return nil, TriagePreviewResult{
			Score:       score,
			Severity:    string(severity),
			RouteAction: string(decision.Action),
			RouteReason: decision.Reason,
		}, nil
	}
}

// SubmitEventHandler runs the detection through the full triage pipeline.
func SubmitEventHandler(triage ports.TriageService) mcp.ToolHandlerFor[SubmitEventInput, SubmitEventResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SubmitEventInput) (*mcp.CallToolResult, SubmitEventResult, error) {
		ts, err := parseTimestamp(input.Timestamp)
		if err != nil {
			return nil, SubmitEventResult{}, err
		}

		in := ports.SecurityEventInput{
			AssetID:    input.AssetID,
			Category:   input.Category,
			Severity:   input.Severity,
			Confidence: input.Confidence,
			Source:     input.Source,
			Timestamp:  ts,
		}
		if input.Indicators != nil {
			in.Indicators = ports.IndicatorsInput{
				SrcIP:       input.Indicators.SrcIP,
				DstIP:       input.Indicators.DstIP,
				ProcessName: input.Indicators.ProcessName,
				FileHash:    input.Indicators.FileHash,
			}
		}

		outcome, err := triage.Process(ctx, in)
		if err != nil {
			return nil, SubmitEventResult{}, fmt.Errorf("triage failed: %w", err)
		}

		return nil, SubmitEventResult{
			IncidentID: outcome.IncidentID,
			Created:    outcome.Created,
			Duplicate:  outcome.Duplicate,
			Severity:   outcome.Severity,
			Score:      outcome.Score,
		}, nil
	}
}

// GetIncidentHandler looks up one incident. The MCP surface runs with admin
// scope, so no team filter applies.
func GetIncidentHandler(incidents ports.IncidentService) mcp.ToolHandlerFor[GetIncidentInput, IncidentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetIncidentInput) (*mcp.CallToolResult, IncidentResult, error) {
		detail, err := incidents.GetIncident(ctx, ports.GetIncidentInput{
			IncidentID: input.IncidentID,
			Role:       domain.RoleAdmin,
		})
		if err != nil {
			return nil, IncidentResult{}, fmt.Errorf("get incident: %w", err)
		}

		history := make([]StatusHistoryEntry, 0, len(detail.StatusHistory))
		for _, h := range detail.StatusHistory {
			history = append(history, StatusHistoryEntry{
				Status:    h.Status,
				Timestamp: h.Timestamp.UTC().Format(time.RFC3339),
				Actor:     h.Actor,
				Notes:     h.Notes,
			})
		}

		return nil, IncidentResult{
			IncidentID:    detail.IncidentID,
			AssetID:       detail.AssetID,
			Category:      detail.Category,
			Title:         detail.Title,
			Severity:      detail.Severity,
			Score:         detail.Score,
			Status:        detail.Status,
			EventCount:    detail.EventCount,
			CreatedAt:     detail.CreatedAt.UTC().Format(time.RFC3339),
			LastEventAt:   detail.LastEventAt.UTC().Format(time.RFC3339),
			StatusHistory: history,
		}, nil
	}
}

// ListIncidentsHandler queries the incident store with the given filters.
func ListIncidentsHandler(incidents ports.IncidentService) mcp.ToolHandlerFor[ListIncidentsInput, ListIncidentsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListIncidentsInput) (*mcp.CallToolResult, ListIncidentsResult, error) {
		result, err := incidents.ListIncidents(ctx, ports.ListIncidentsInput{
			Role:     domain.RoleAdmin,
			Status:   input.Status,
			Severity: input.Severity,
			Category: input.Category,
			AssetID:  input.AssetID,
			Page:     input.Page,
			Limit:    input.Limit,
		})
		if err != nil {
			return nil, ListIncidentsResult{}, fmt.Errorf("list incidents: %w", err)
		}

		summaries := make([]IncidentSummary, 0, len(result.Items))
		for _, item := range result.Items {
			summaries = append(summaries, IncidentSummary{
				IncidentID:  item.IncidentID,
				AssetID:     item.AssetID,
				Category:    item.Category,
				Severity:    item.Severity,
				Score:       item.Score,
				Status:      item.Status,
				EventCount:  item.EventCount,
				LastEventAt: item.LastEventAt.UTC().Format(time.RFC3339),
			})
		}

		return nil, ListIncidentsResult{
			Incidents: summaries,
			Total:     result.Total,
			Page:      result.Page,
		}, nil
	}
}

// BackupStatusHandler reads a backup record from the catalog.
func BackupStatusHandler(catalog backup.CatalogStore) mcp.ToolHandlerFor[BackupStatusInput, BackupStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BackupStatusInput) (*mcp.CallToolResult, BackupStatusResult, error) {
		var rec *backup.Record
		var err error
		if input.BackupID == "" {
			rec, err = catalog.Latest(ctx)
		} else {
			rec, err = catalog.Get(ctx, input.BackupID)
		}
		if err != nil {
			return nil, BackupStatusResult{}, fmt.Errorf("backup lookup: %w", err)
		}

		regions := make([]BackupRegionStatus, 0, len(rec.Regions))
		for _, r := range rec.Regions {
			regions = append(regions, BackupRegionStatus{
				Region:   r.Region,
				OK:       r.OK,
				Attempts: r.Attempts,
				Error:    r.Error,
			})
		}

		return nil, BackupStatusResult{
			BackupID:  rec.BackupID,
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
			Status:    string(rec.Status),
			SizeBytes: rec.SizeBytes,
			SHA256:    rec.SHA256,
			Regions:   regions,
		}, nil
	}
}

// parseTimestamp accepts an RFC 3339 timestamp or defaults to now.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return ts, nil
}
