package domain

import "time"

// ThreatCategory classifies the kind of activity a detection reports.
type ThreatCategory string

const (
	CategoryMalware      ThreatCategory = "malware"
	CategoryIntrusion    ThreatCategory = "intrusion"
	CategoryExfiltration ThreatCategory = "exfiltration"
	CategoryAnomaly      ThreatCategory = "anomaly"
	CategoryPolicy       ThreatCategory = "policy"
	CategoryRecon        ThreatCategory = "recon"
)

// categoryWeights biases triage scoring per category. Exfiltration and
// malware indicate active compromise; recon and policy noise score lower.
var categoryWeights = map[ThreatCategory]float64{
	CategoryMalware:      1.0,
	CategoryIntrusion:    0.9,
	CategoryExfiltration: 1.0,
	CategoryAnomaly:      0.6,
	CategoryPolicy:       0.4,
	CategoryRecon:        0.5,
}

// Weight returns the scoring bias for the category; unknown categories score
// as anomalies.
func (c ThreatCategory) Weight() float64 {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return categoryWeights[CategoryAnomaly]
}

// ValidCategory reports whether the string is a known threat category.
func ValidCategory(s string) bool {
	_, ok := categoryWeights[ThreatCategory(s)]
	return ok
}

// Indicators carries the observables attached to a detection. All fields are
// optional; connectors send what they have.
type Indicators struct {
	SrcIP       string `json:"src_ip,omitempty" bson:"src_ip,omitempty"`
	DstIP       string `json:"dst_ip,omitempty" bson:"dst_ip,omitempty"`
	ProcessName string `json:"process_name,omitempty" bson:"process_name,omitempty"`
	FileHash    string `json:"file_hash,omitempty" bson:"file_hash,omitempty"`
}

// SecurityEvent represents a single detection received from a sensor or
// connector. Events are immutable once ingested; triage folds them into
// incidents.
type SecurityEvent struct {
	EventID    string         `json:"event_id" bson:"event_id"`
	AssetID    string         `json:"asset_id" bson:"asset_id"`
	Category   ThreatCategory `json:"category" bson:"category"`
	Severity   Severity       `json:"severity" bson:"severity"`
	Confidence float64        `json:"confidence" bson:"confidence"`
	Indicators Indicators     `json:"indicators" bson:"indicators"`
	Source     string         `json:"source" bson:"source"`
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
}
