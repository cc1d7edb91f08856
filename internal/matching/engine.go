// internal/matching/engine.go
package matching

// Engine scores publishers against a target audience, analyzes publisher mixes and
// searches budget-constrained selections. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	d := DefaultConfig()
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = d.ListLimit
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = d.MaxResults
	}
	if cfg.MaxPublishers <= 0 {
		cfg.MaxPublishers = d.MaxPublishers
	}
	if cfg.MinPublishers < 0 {
		cfg.MinPublishers = 0
	}
	if cfg.Estimates.DefaultCostCents <= 0 {
		cfg.Estimates.DefaultCostCents = d.Estimates.DefaultCostCents
	}
	if cfg.Estimates.CostEfficiencyUnit <= 0 {
		cfg.Estimates.CostEfficiencyUnit = d.Estimates.CostEfficiencyUnit
	}
	if len(cfg.Priorities) == 0 {
		cfg.Priorities = d.Priorities
	}
	if len(cfg.Reach.Tiers) == 0 {
		cfg.Reach = d.Reach
	}

	// copy the maps and slices so later changes to the caller's config are not observed
	priorities := make(map[string]PriorityBlend, len(cfg.Priorities))
	for k, v := range cfg.Priorities {
		priorities[Normalize(k)] = v
	}
	cfg.Priorities = priorities
	cfg.Reach.Tiers = append([]ReachTier(nil), cfg.Reach.Tiers...)
	cfg.Reach.EngagementBonus = append([]EngagementBonus(nil), cfg.Reach.EngagementBonus...)

	return &Engine{cfg: cfg}
}

// Config returns the engine configuration. Callers must not modify its maps or slices.
func (e *Engine) Config() Config {
	return e.cfg
}
