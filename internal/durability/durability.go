// Package durability estimates how many years a skill stays valuable before
// automation erodes it. Estimates never fail: any provider problem yields the
// fallback value.
package durability

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pathwise/internal/generation"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
)

const (
	// FallbackYears is returned whenever no usable estimate is available.
	FallbackYears = 3.5
	MinYears      = 0.5
	MaxYears      = 15.0

	defaultTimeout     = 20 * time.Second
	defaultConcurrency = 4
)

// Config tunes the estimator.
type Config struct {
	Timeout     time.Duration // per estimate
	Concurrency int           // EstimateAll fan-out limit
}

// Estimator asks the generation client for durability estimates.
type Estimator struct {
	client  generation.Client
	config  Config
	metrics *metrics.Metrics
}

// New creates an estimator. Zero config values take defaults.
func New(client generation.Client, cfg Config, m *metrics.Metrics) *Estimator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Estimator{client: client, config: cfg, metrics: m}
}

type subject struct {
	Skill   string `json:"skill"`
	Role    string `json:"role"`
	Context string `json:"context,omitempty"`
}

type answer struct {
	Years *float64 `json:"years"`
}

// Estimate returns the expected durability of skill in years, within
// [MinYears, MaxYears].
func (e *Estimator) Estimate(ctx context.Context, skill, role, desc string) float64 {
	years, err := e.estimate(ctx, skill, role, desc)
	if err != nil {
		logging.Get(logging.CategoryAudit).Warn("Durability estimate for %q fell back to %.1f: %v", skill, FallbackYears, err)
		logging.Audit(logging.CategoryAudit).Degraded("durability:"+skill, err)
		e.metrics.RecordDegradation("durability")
		return FallbackYears
	}
	return years
}

func (e *Estimator) estimate(ctx context.Context, skill, role, desc string) (float64, error) {
	if e.client == nil {
		return 0, fmt.Errorf("no generation client configured")
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	resp, err := e.client.Generate(ctx, generation.Request{
		Task:    generation.TaskSkillDurability,
		Schema:  generation.SchemaDurability,
		Subject: subject{Skill: skill, Role: role, Context: desc},
	})
	if err != nil {
		return 0, err
	}
	out, err := generation.Decode[answer](generation.TaskSkillDurability, resp)
	if err != nil {
		return 0, err
	}
	if out.Years == nil {
		return 0, fmt.Errorf("response has no years value")
	}
	years := *out.Years
	if math.IsNaN(years) || math.IsInf(years, 0) {
		return 0, fmt.Errorf("non-finite years value")
	}
	return math.Max(MinYears, math.Min(MaxYears, years)), nil
}

// EstimateAll estimates every skill concurrently. The result has one entry
// per distinct skill.
func (e *Estimator) EstimateAll(ctx context.Context, skills []string, role, desc string) map[string]float64 {
	timer := logging.StartTimer(logging.CategoryAudit, "EstimateAll")
	defer timer.Stop()

	out := make(map[string]float64, len(skills))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		if seen[skill] {
			continue
		}
		seen[skill] = true
		g.Go(func() error {
			years := e.Estimate(gctx, skill, role, desc)
			mu.Lock()
			out[skill] = years
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
