package mcp

// Tool input and output schemas. Field tags drive the JSON schema the SDK
// advertises to clients, so descriptions live here rather than in prose.

type IndicatorsInput struct {
	SrcIP       string `json:"src_ip,omitempty" jsonschema:"source IP address observed"`
	DstIP       string `json:"dst_ip,omitempty" jsonschema:"destination IP address observed"`
	ProcessName string `json:"process_name,omitempty" jsonschema:"process name observed"`
	FileHash    string `json:"file_hash,omitempty" jsonschema:"file hash observed"`
}

type TriagePreviewInput struct {
	AssetID    string  `json:"asset_id" jsonschema:"asset the detection fired on"`
	Category   string  `json:"category" jsonschema:"threat category (malware, intrusion, exfiltration, anomaly, policy, recon)"`
	Severity   string  `json:"severity" jsonschema:"detector severity (low, medium, high, critical)"`
	Confidence float64 `json:"confidence" jsonschema:"detector confidence in [0,1]"`
	Timestamp  string  `json:"timestamp,omitempty" jsonschema:"event time in RFC 3339; defaults to now"`
}

type TriagePreviewResult struct {
	Score       float64 `json:"score" jsonschema:"triage score in [0,100]"`
	Severity    string  `json:"severity" jsonschema:"severity band the score falls into"`
	RouteAction string  `json:"route_action" jsonschema:"routing action the orchestrator would take"`
	RouteReason string  `json:"route_reason" jsonschema:"why that action was chosen"`
}

type SubmitEventInput struct {
	AssetID    string           `json:"asset_id" jsonschema:"asset the detection fired on"`
	Category   string           `json:"category" jsonschema:"threat category (malware, intrusion, exfiltration, anomaly, policy, recon)"`
	Severity   string           `json:"severity" jsonschema:"detector severity (low, medium, high, critical)"`
	Confidence float64          `json:"confidence" jsonschema:"detector confidence in [0,1]"`
	Source     string           `json:"source" jsonschema:"detector or connector that produced the event"`
	Timestamp  string           `json:"timestamp,omitempty" jsonschema:"event time in RFC 3339; defaults to now"`
	Indicators *IndicatorsInput `json:"indicators,omitempty" jsonschema:"optional observables"`
}

type SubmitEventResult struct {
	IncidentID string  `json:"incident_id,omitempty" jsonschema:"incident the event was folded into"`
	Created    bool    `json:"created" jsonschema:"whether a new incident was opened"`
	Duplicate  bool    `json:"duplicate" jsonschema:"whether the event was skipped as a duplicate"`
	Severity   string  `json:"severity,omitempty" jsonschema:"severity assigned by triage"`
	Score      float64 `json:"score" jsonschema:"triage score"`
}

type GetIncidentInput struct {
	IncidentID string `json:"incident_id" jsonschema:"incident identifier, e.g. SC-7A8B9C2D"`
}

type StatusHistoryEntry struct {
	Status    string `json:"status" jsonschema:"lifecycle status entered"`
	Timestamp string `json:"timestamp" jsonschema:"when the transition happened"`
	Actor     string `json:"actor,omitempty" jsonschema:"who made the transition"`
	Notes     string `json:"notes,omitempty" jsonschema:"free-form transition notes"`
}

type IncidentResult struct {
	IncidentID    string               `json:"incident_id" jsonschema:"incident identifier"`
	AssetID       string               `json:"asset_id" jsonschema:"asset the incident tracks"`
	Category      string               `json:"category" jsonschema:"threat category"`
	Title         string               `json:"title" jsonschema:"incident title"`
	Severity      string               `json:"severity" jsonschema:"current severity"`
	Score         float64              `json:"score" jsonschema:"current triage score"`
	Status        string               `json:"status" jsonschema:"current lifecycle status"`
	EventCount    int                  `json:"event_count" jsonschema:"number of events folded in"`
	CreatedAt     string               `json:"created_at" jsonschema:"when the incident was opened"`
	LastEventAt   string               `json:"last_event_at" jsonschema:"time of the most recent event"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty" jsonschema:"lifecycle transition log"`
}

type ListIncidentsInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter by lifecycle status"`
	Severity string `json:"severity,omitempty" jsonschema:"filter by severity"`
	Category string `json:"category,omitempty" jsonschema:"filter by threat category"`
	AssetID  string `json:"asset_id,omitempty" jsonschema:"filter by asset"`
	Limit    int    `json:"limit,omitempty" jsonschema:"page size, max 100"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number"`
}

type IncidentSummary struct {
	IncidentID  string  `json:"incident_id" jsonschema:"incident identifier"`
	AssetID     string  `json:"asset_id" jsonschema:"asset the incident tracks"`
	Category    string  `json:"category" jsonschema:"threat category"`
	Severity    string  `json:"severity" jsonschema:"current severity"`
	Score       float64 `json:"score" jsonschema:"current triage score"`
	Status      string  `json:"status" jsonschema:"current lifecycle status"`
	EventCount  int     `json:"event_count" jsonschema:"number of events folded in"`
	LastEventAt string  `json:"last_event_at" jsonschema:"time of the most recent event"`
}

type ListIncidentsResult struct {
	Incidents []IncidentSummary `json:"incidents" jsonschema:"matching incidents, newest first"`
	Total     int64             `json:"total" jsonschema:"total matches across all pages"`
	Page      int               `json:"page" jsonschema:"page returned"`
}

type BackupStatusInput struct {
	BackupID string `json:"backup_id,omitempty" jsonschema:"backup identifier; latest when omitted"`
}

type BackupRegionStatus struct {
	Region   string `json:"region" jsonschema:"replication target"`
	OK       bool   `json:"ok" jsonschema:"whether replication succeeded"`
	Attempts int    `json:"attempts" jsonschema:"delivery attempts made"`
	Error    string `json:"error,omitempty" jsonschema:"last error when replication failed"`
}

type BackupStatusResult struct {
	BackupID  string               `json:"backup_id" jsonschema:"backup identifier"`
	CreatedAt string               `json:"created_at" jsonschema:"when the backup ran"`
	Status    string               `json:"status" jsonschema:"complete, degraded, or failed"`
	SizeBytes int64                `json:"size_bytes" jsonschema:"encrypted archive size"`
	SHA256    string               `json:"sha256" jsonschema:"archive checksum"`
	Regions   []BackupRegionStatus `json:"regions,omitempty" jsonschema:"per-region replication results"`
}
