package domain

import (
	"testing"
	"time"
)

func TestIncidentStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    IncidentStatus
		to      IncidentStatus
		allowed bool
	}{
		{StatusOpen, StatusTriaged, true},
		{StatusOpen, StatusDismissed, true},
		{StatusOpen, StatusContained, false},
		{StatusOpen, StatusResolved, false},
		{StatusTriaged, StatusContained, true},
		{StatusTriaged, StatusResolved, true},
		{StatusTriaged, StatusDismissed, true},
		{StatusTriaged, StatusOpen, false},
		{StatusContained, StatusResolved, true},
		{StatusContained, StatusDismissed, false},
		{StatusResolved, StatusOpen, false},
		{StatusDismissed, StatusTriaged, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestIncidentStatus_Terminal(t *testing.T) {
	terminal := []IncidentStatus{StatusResolved, StatusDismissed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []IncidentStatus{StatusOpen, StatusTriaged, StatusContained}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestSeverity_Ordering(t *testing.T) {
	if !SeverityCritical.AtLeast(SeverityHigh) {
		t.Error("critical should rank at least high")
	}
	if !SeverityMedium.AtLeast(SeverityMedium) {
		t.Error("severity should rank at least itself")
	}
	if SeverityLow.AtLeast(SeverityMedium) {
		t.Error("low should not rank at least medium")
	}
	if Severity("garbage").Weight() != SeverityLow.Weight() {
		t.Error("unknown severity should rank as low")
	}
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{"low", "medium", "high", "critical"} {
		if !ValidSeverity(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidSeverity("urgent") {
		t.Error("urgent should not be valid")
	}
}

func TestThreatCategory_Weight(t *testing.T) {
	if ThreatCategory("malware").Weight() != 1.0 {
		t.Errorf("malware weight: got %v", ThreatCategory("malware").Weight())
	}
	if ThreatCategory("policy").Weight() >= ThreatCategory("intrusion").Weight() {
		t.Error("policy should weigh less than intrusion")
	}
	if ThreatCategory("unknown").Weight() != ThreatCategory("anomaly").Weight() {
		t.Error("unknown category should fall back to the anomaly weight")
	}
}

func TestBusinessContext_TierFor(t *testing.T) {
	ctx := BusinessContext{
		AssetTiers: map[string]CriticalityTier{
			"db-01":  TierCritical,
			"web-01": TierHigh,
		},
	}

	if ctx.TierFor("db-01") != TierCritical {
		t.Error("db-01 should be critical tier")
	}
	if ctx.TierFor("laptop-42") != TierStandard {
		t.Error("unmapped assets default to standard tier")
	}
	if TierCritical.Multiplier() <= TierHigh.Multiplier() {
		t.Error("critical multiplier should exceed high")
	}
}

func TestBusinessContext_OffHours(t *testing.T) {
	ctx := BusinessContext{BusinessHoursStart: 9, BusinessHoursEnd: 18}

	noon := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	if ctx.OffHours(noon) {
		t.Error("noon should be business hours")
	}

	night := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	if !ctx.OffHours(night) {
		t.Error("23:00 should be off-hours")
	}

	early := time.Date(2026, 3, 4, 6, 30, 0, 0, time.UTC)
	if !ctx.OffHours(early) {
		t.Error("06:30 should be off-hours")
	}
}
