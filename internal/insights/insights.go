// Package insights produces market signals and a strategic tip for a profile.
// Both are optional extras: failures are logged and yield empty results.
package insights

import (
	"context"
	"fmt"

	"pathwise/internal/generation"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/types"
)

// MaxSignals caps the number of market signals returned.
const MaxSignals = 5

// Service answers insight requests.
type Service struct {
	client  generation.Client
	metrics *metrics.Metrics
}

// New creates a Service.
func New(client generation.Client, m *metrics.Metrics) *Service {
	return &Service{client: client, metrics: m}
}

type signalSubject struct {
	Role     string   `json:"role"`
	Industry string   `json:"industry"`
	Skills   []string `json:"skills"`
}

// MarketSignals returns grounded market observations for the profile.
// Sources the provider attached to the response are added to every signal
// that does not cite its own.
func (s *Service) MarketSignals(ctx context.Context, profile types.Profile) []types.MarketSignal {
	if s.client == nil {
		return degrade(s, "market_signals", profile.OwnerID, fmt.Errorf("no generation client configured"), []types.MarketSignal{})
	}
	resp, err := s.client.Generate(ctx, generation.Request{
		Task:     generation.TaskMarketSignals,
		Schema:   generation.SchemaMarketSignals,
		Subject:  signalSubject{Role: profile.Role, Industry: profile.Industry, Skills: profile.Skills},
		Grounded: true,
	})
	if err != nil {
		return degrade(s, "market_signals", profile.OwnerID, err, []types.MarketSignal{})
	}
	signals, err := generation.Decode[[]types.MarketSignal](generation.TaskMarketSignals, resp)
	if err != nil {
		return degrade(s, "market_signals", profile.OwnerID, err, []types.MarketSignal{})
	}

	if len(signals) > MaxSignals {
		signals = signals[:MaxSignals]
	}
	for i := range signals {
		if len(signals[i].Sources) == 0 && len(resp.Sources) > 0 {
			signals[i].Sources = append([]types.GroundingSource(nil), resp.Sources...)
		}
	}
	logging.Get(logging.CategoryInsights).Debug("%d market signals for %s (%d sources)", len(signals), profile.OwnerID, len(resp.Sources))
	if signals == nil {
		signals = []types.MarketSignal{}
	}
	return signals
}

// StrategicTip returns one short piece of advice, or the zero tip.
func (s *Service) StrategicTip(ctx context.Context, profile types.Profile, assessment types.Assessment) types.StrategicTip {
	if s.client == nil {
		return degrade(s, "strategic_tip", profile.OwnerID, fmt.Errorf("no generation client configured"), types.StrategicTip{})
	}
	resp, err := s.client.Generate(ctx, generation.Request{
		Task:   generation.TaskStrategicTip,
		Schema: generation.SchemaStrategicTip,
		Subject: map[string]interface{}{
			"role":       profile.Role,
			"industry":   profile.Industry,
			"riskScore":  assessment.RiskScore,
			"category":   assessment.Category,
			"weaknesses": assessment.Weaknesses,
		},
	})
	if err != nil {
		return degrade(s, "strategic_tip", profile.OwnerID, err, types.StrategicTip{})
	}
	tip, err := generation.Decode[types.StrategicTip](generation.TaskStrategicTip, resp)
	if err != nil {
		return degrade(s, "strategic_tip", profile.OwnerID, err, types.StrategicTip{})
	}
	return tip
}

// degrade logs a non-fatal failure and returns fallback.
func degrade[T any](s *Service, target, owner string, err error, fallback T) T {
	logging.Get(logging.CategoryInsights).Warn("%s for %s unavailable: %v", target, owner, err)
	logging.Audit(logging.CategoryInsights).ForOwner(owner).Degraded(target, err)
	s.metrics.RecordDegradation("insights")
	return fallback
}
