package handler

import (
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

type createIncidentRequest struct {
	AssetID  string `json:"asset_id" validate:"required"`
	Category string `json:"category" validate:"required,oneof=malware intrusion exfiltration anomaly policy recon"`
	Title    string `json:"title"    validate:"required,min=3"`
	Severity string `json:"severity" validate:"omitempty,oneof=low medium high critical"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=triaged contained resolved dismissed"`
	Notes  string `json:"notes"`
}

type incidentLinks struct {
	Self   string `json:"self"`
	Events string `json:"events"`
}

type createIncidentResponse struct {
	IncidentID string        `json:"incident_id"`
	Status     string        `json:"status"`
	Severity   string        `json:"severity"`
	CreatedAt  string        `json:"created_at"`
	Links      incidentLinks `json:"_links"`
}

type statusHistoryResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type getIncidentResponse struct {
	IncidentID    string                  `json:"incident_id"`
	AssetID       string                  `json:"asset_id"`
	Category      string                  `json:"category"`
	Title         string                  `json:"title"`
	Severity      string                  `json:"severity"`
	Score         float64                 `json:"score"`
	Status        string                  `json:"status"`
	EventCount    int                     `json:"event_count"`
	CreatedAt     string                  `json:"created_at"`
	LastEventAt   string                  `json:"last_event_at"`
	StatusHistory []statusHistoryResponse `json:"status_history"`
	Links         incidentLinks           `json:"_links"`
}

type incidentSummaryResponse struct {
	IncidentID  string  `json:"incident_id"`
	AssetID     string  `json:"asset_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Severity    string  `json:"severity"`
	Score       float64 `json:"score"`
	Status      string  `json:"status"`
	EventCount  int     `json:"event_count"`
	TeamID      string  `json:"team_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	LastEventAt string  `json:"last_event_at"`
}

type listIncidentsResponse struct {
	Items      []incidentSummaryResponse `json:"items"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

type routeDecisionResponse struct {
	IncidentID string `json:"incident_id"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

// errorResponse mirrors the envelope rendered by the central error handler;
// declared here for swagger annotations only.
type errorResponse struct {
	Error string `json:"error"`
}

func toListResponse(result *ports.ListIncidentsResult) listIncidentsResponse {
	items := make([]incidentSummaryResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, incidentSummaryResponse{
			IncidentID:  item.IncidentID,
			AssetID:     item.AssetID,
			Category:    item.Category,
			Title:       item.Title,
			Severity:    item.Severity,
			Score:       item.Score,
			Status:      item.Status,
			EventCount:  item.EventCount,
			TeamID:      item.TeamID,
			CreatedAt:   formatTime(item.CreatedAt),
			LastEventAt: formatTime(item.LastEventAt),
		})
	}
	return listIncidentsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	}
}

func toDetailResponse(detail *ports.IncidentDetail) getIncidentResponse {
	history := make([]statusHistoryResponse, 0, len(detail.StatusHistory))
	for _, h := range detail.StatusHistory {
		history = append(history, statusHistoryResponse{
			Status:    h.Status,
			Timestamp: formatTime(h.Timestamp),
			Actor:     h.Actor,
			Notes:     h.Notes,
		})
	}
	return getIncidentResponse{
		IncidentID:    detail.IncidentID,
		AssetID:       detail.AssetID,
		Category:      detail.Category,
		Title:         detail.Title,
		Severity:      detail.Severity,
		Score:         detail.Score,
		Status:        detail.Status,
		EventCount:    detail.EventCount,
		CreatedAt:     formatTime(detail.CreatedAt),
		LastEventAt:   formatTime(detail.LastEventAt),
		StatusHistory: history,
		Links: incidentLinks{
			Self:   "/v1/incidents/" + detail.IncidentID,
			Events: "/v1/incidents/" + detail.IncidentID + "/events",
		},
	}
}
