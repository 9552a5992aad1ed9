package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

// RouteAction is what the orchestrator decides to do with an incident.
type RouteAction string

const (
	RouteMonitor         RouteAction = "monitor"
	RouteEscalateAnalyst RouteAction = "escalate_analyst"
	RouteAutoContain     RouteAction = "auto_contain"
)

// ScaleAction is the worker-pool sizing decision.
type ScaleAction string

const (
	ScaleUp   ScaleAction = "scale_up"
	ScaleHold ScaleAction = "hold"
	ScaleDown ScaleAction = "scale_down"
)

// OrchestratorConfig holds the decision thresholds. All thresholds are
// config-driven so operators can tune routing without a redeploy.
type OrchestratorConfig struct {
	// AutoContainScore is the minimum triage score for automatic containment.
	AutoContainScore float64
	// EscalateScore is the minimum triage score that pages an analyst.
	EscalateScore float64
	// QueueHighWatermark is the mean per-worker queue depth above which the
	// pool scales up.
	QueueHighWatermark float64
	// QueueLowWatermark is the mean depth below which the pool scales down.
	QueueLowWatermark float64
	// ScaleCooldown is the minimum time between consecutive scaling actions.
	ScaleCooldown time.Duration
}

// DefaultOrchestratorConfig returns production defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		AutoContainScore:   90,
		EscalateScore:      60,
		QueueHighWatermark: 128,
		QueueLowWatermark:  8,
		ScaleCooldown:      2 * time.Minute,
	}
}

// RouteDecision is a routing verdict with the reason it was reached.
type RouteDecision struct {
	Action RouteAction `json:"action"`
	Reason string      `json:"reason"`
}

// ScaleDecision is a worker-pool sizing verdict.
type ScaleDecision struct {
	Action ScaleAction `json:"action"`
	Reason string      `json:"reason"`
}

// Orchestrator turns incident state and pipeline load into deterministic
// routing and scaling decisions.
type Orchestrator struct {
	cfg    OrchestratorConfig
	bizCtx domain.BusinessContext
	log    zerolog.Logger

	mu        sync.Mutex
	lastScale time.Time
	now       func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig, bizCtx domain.BusinessContext, log zerolog.Logger) *Orchestrator {
	if cfg.AutoContainScore <= 0 {
		cfg.AutoContainScore = DefaultOrchestratorConfig().AutoContainScore
	}
	if cfg.EscalateScore <= 0 {
		cfg.EscalateScore = DefaultOrchestratorConfig().EscalateScore
	}
	if cfg.QueueHighWatermark <= 0 {
		cfg.QueueHighWatermark = DefaultOrchestratorConfig().QueueHighWatermark
	}
	if cfg.QueueLowWatermark <= 0 {
		cfg.QueueLowWatermark = DefaultOrchestratorConfig().QueueLowWatermark
	}
	if cfg.ScaleCooldown <= 0 {
		cfg.ScaleCooldown = DefaultOrchestratorConfig().ScaleCooldown
	}
	return &Orchestrator{
		cfg:    cfg,
		bizCtx: bizCtx,
		log:    log,
		now:    time.Now,
	}
}

// Route decides how an incident should be handled. Containment is never
// automatic on critical-tier assets: disrupting a revenue-critical system is
// an analyst call even at maximum score.
func (o *Orchestrator) Route(inc *domain.Incident) RouteDecision {
	decision := o.route(inc)
	metrics.RoutingDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()
	o.log.Debug().
		Str("incident", inc.IncidentID).
		Str("action", string(decision.Action)).
		Str("reason", decision.Reason).
		Msg("routing decision")
	return decision
}

func (o *Orchestrator) route(inc *domain.Incident) RouteDecision {
	if inc.Status.Terminal() {
		return RouteDecision{Action: RouteMonitor, Reason: "incident is closed"}
	}

	tier := o.bizCtx.TierFor(inc.AssetID)

	if inc.Score >= o.cfg.AutoContainScore && inc.Severity == domain.SeverityCritical {
		if tier == domain.TierCritical {
			return RouteDecision{
				Action: RouteEscalateAnalyst,
				Reason: fmt.Sprintf("score %.0f warrants containment but asset tier is critical; analyst approval required", inc.Score),
			}
		}
		return RouteDecision{
			Action: RouteAutoContain,
			Reason: fmt.Sprintf("score %.0f >= %.0f on %s-tier asset", inc.Score, o.cfg.AutoContainScore, tier),
		}
	}

	if inc.Score >= o.cfg.EscalateScore || inc.Severity.AtLeast(domain.SeverityHigh) {
		return RouteDecision{
			Action: RouteEscalateAnalyst,
			Reason: fmt.Sprintf("score %.0f or severity %s crosses the escalation threshold", inc.Score, inc.Severity),
		}
	}

	return RouteDecision{Action: RouteMonitor, Reason: "below escalation threshold"}
}

// Scaling decides whether the dispatcher worker pool should grow or shrink
// given the current per-worker queue depths. A cooldown window prevents
// flapping between consecutive decisions.
func (o *Orchestrator) Scaling(depths []int) ScaleDecision {
	decision := o.scaling(depths)
	metrics.ScalingDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()
	return decision
}

func (o *Orchestrator) scaling(depths []int) ScaleDecision {
	if len(depths) == 0 {
		return ScaleDecision{Action: ScaleHold, Reason: "no workers reporting"}
	}

	total := 0
	for _, d := range depths {
		total += d
	}
	mean := float64(total) / float64(len(depths))

	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case mean > o.cfg.QueueHighWatermark:
		if o.inCooldown() {
			return ScaleDecision{Action: ScaleHold, Reason: "scale-up wanted but cooldown active"}
		}
		o.lastScale = o.now()
		return ScaleDecision{Action: ScaleUp, Reason: fmt.Sprintf("mean queue depth %.1f > %.1f", mean, o.cfg.QueueHighWatermark)}
	case mean < o.cfg.QueueLowWatermark:
		if o.inCooldown() {
			return ScaleDecision{Action: ScaleHold, Reason: "scale-down wanted but cooldown active"}
		}
		o.lastScale = o.now()
		return ScaleDecision{Action: ScaleDown, Reason: fmt.Sprintf("mean queue depth %.1f < %.1f", mean, o.cfg.QueueLowWatermark)}
	default:
		return ScaleDecision{Action: ScaleHold, Reason: fmt.Sprintf("mean queue depth %.1f within watermarks", mean)}
	}
}

func (o *Orchestrator) inCooldown() bool {
	return !o.lastScale.IsZero() && o.now().Sub(o.lastScale) < o.cfg.ScaleCooldown
}
