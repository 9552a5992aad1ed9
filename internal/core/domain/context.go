package domain

import "time"

// CriticalityTier ranks how much an asset matters to the business.
type CriticalityTier string

const (
	TierStandard CriticalityTier = "standard"
	TierHigh     CriticalityTier = "high"
	TierCritical CriticalityTier = "critical"
)

// tierMultipliers scale triage scores by asset importance.
var tierMultipliers = map[CriticalityTier]float64{
	TierStandard: 1.0,
	TierHigh:     1.25,
	TierCritical: 1.5,
}

// Multiplier returns the scoring factor for the tier; unknown tiers are
// treated as standard.
func (t CriticalityTier) Multiplier() float64 {
	if m, ok := tierMultipliers[t]; ok {
		return m
	}
	return tierMultipliers[TierStandard]
}

// BusinessContext supplies the organisational knowledge triage decisions are
// weighed against: which assets are critical and when the business operates.
// Activity outside business hours on an important asset scores higher.
type BusinessContext struct {
	// AssetTiers maps asset IDs to their criticality tier. Assets absent
	// from the map are standard.
	AssetTiers map[string]CriticalityTier

	// BusinessHoursStart and BusinessHoursEnd bound the working day in the
	// 24h clock (e.g. 9 and 18). A zero-value window disables the
	// off-hours bonus.
	BusinessHoursStart int
	BusinessHoursEnd   int
}

// TierFor returns the criticality tier recorded for the asset.
func (b BusinessContext) TierFor(assetID string) CriticalityTier {
	if t, ok := b.AssetTiers[assetID]; ok {
		return t
	}
	return TierStandard
}

// OffHours reports whether ts falls outside the configured business-hours
// window. Returns false when no window is configured.
func (b BusinessContext) OffHours(ts time.Time) bool {
	if b.BusinessHoursStart == 0 && b.BusinessHoursEnd == 0 {
		return false
	}
	h := ts.Hour()
	return h < b.BusinessHoursStart || h >= b.BusinessHoursEnd
}
