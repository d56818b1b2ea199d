package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"pathwise/internal/alerts"
	"pathwise/internal/audit"
	"pathwise/internal/config"
	"pathwise/internal/durability"
	"pathwise/internal/generation"
	"pathwise/internal/insights"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/reflection"
	"pathwise/internal/store"
	"pathwise/internal/synthesis"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	backend  store.Backend
	client   generation.Client

	orchestrator *synthesis.Orchestrator
	alerts       *alerts.Synthesizer
	insights     *insights.Service
	reflections  *reflection.Service
	audits       *audit.Service
}

// newApp builds every component from cfg. useOffline swaps Gemini for the
// canned client.
func newApp(ctx context.Context, cfg *config.Config, useOffline bool) (*app, error) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	backend, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var provider generation.Client
	if useOffline {
		provider = offlineClient()
	} else {
		gemini, err := generation.NewGeminiClient(ctx, generation.GeminiConfig{
			APIKey:      cfg.Generation.APIKey,
			Model:       cfg.Generation.Model,
			Timeout:     cfg.GetGenerationTimeout(),
			Temperature: cfg.Generation.Temperature,
		})
		if err != nil {
			backend.Close()
			return nil, err
		}
		provider = gemini
	}
	client := generation.NewInstrumentedClient(provider, m)

	role := cfg.Synthesis.RoleScope
	estimator := durability.New(client, durability.Config{
		Timeout:     cfg.GetDurabilityTimeout(),
		Concurrency: cfg.Durability.Concurrency,
	}, m)

	logging.Boot("Components wired (model=%s role=%s)", cfg.Generation.Model, role)
	return &app{
		cfg:          cfg,
		registry:     registry,
		metrics:      m,
		backend:      backend,
		client:       client,
		orchestrator: synthesis.New(client, backend, synthesis.WithMetrics(m), synthesis.WithTimeout(cfg.GetStepTimeout())),
		alerts:       alerts.New(client, cfg.Synthesis.AlertCount, m),
		insights:     insights.New(client, m),
		reflections:  reflection.New(client, backend, role, m),
		audits:       audit.New(client, estimator, backend, role, m),
	}, nil
}

// Close releases the store and writes metrics if requested.
func (a *app) Close(metricsPath string) error {
	if metricsPath != "" {
		if err := prometheus.WriteToTextfile(metricsPath, a.registry); err != nil {
			logging.Get(logging.CategoryBoot).Warn("Failed to write metrics: %v", err)
		}
	}
	return a.backend.Close()
}
