package handler

import "time"

type indicatorsRequest struct {
	SrcIP       string `json:"src_ip,omitempty"`
	DstIP       string `json:"dst_ip,omitempty"`
	ProcessName string `json:"process_name,omitempty"`
	FileHash    string `json:"file_hash,omitempty"`
}

type securityEventRequest struct {
	AssetID    string             `json:"asset_id"   validate:"required"`
	Category   string             `json:"category"   validate:"required,oneof=malware intrusion exfiltration anomaly policy recon"`
	Severity   string             `json:"severity"   validate:"required,oneof=low medium high critical"`
	Confidence float64            `json:"confidence" validate:"gte=0,lte=1"`
	Source     string             `json:"source"     validate:"required"`
	Timestamp  time.Time          `json:"timestamp"  validate:"required"`
	Indicators *indicatorsRequest `json:"indicators"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
