package generation

import (
	"context"
	"time"

	"pathwise/internal/logging"
	"pathwise/internal/metrics"
)

// InstrumentedClient wraps any Client and records every call.
// All pipeline generation calls flow through this wrapper.
type InstrumentedClient struct {
	underlying Client
	metrics    *metrics.Metrics
}

// NewInstrumentedClient creates an instrumented wrapper. m may be nil.
func NewInstrumentedClient(underlying Client, m *metrics.Metrics) *InstrumentedClient {
	return &InstrumentedClient{underlying: underlying, metrics: m}
}

// Generate implements Client.
func (c *InstrumentedClient) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := c.underlying.Generate(ctx, req)
	elapsed := time.Since(start)

	sources := 0
	if resp != nil {
		sources = len(resp.Sources)
	}
	c.metrics.RecordGeneration(string(req.Task), err == nil, elapsed, sources)

	event := logging.AuditEvent{
		EventType: logging.AuditGenerationCall,
		Target:    string(req.Task),
		Success:   err == nil,
		Duration:  elapsed,
		Fields:    map[string]interface{}{"sources": sources, "grounded": req.Grounded},
	}
	if err != nil {
		event.EventType = logging.AuditGenerationError
		event.Error = err.Error()
		logging.Get(logging.CategoryGeneration).Warn("%s failed after %v: %v", req.Task, elapsed, err)
	} else {
		logging.GenerationDebug("%s completed in %v (%d bytes, %d sources)", req.Task, elapsed, len(resp.Body), sources)
	}
	logging.Audit(logging.CategoryGeneration).Log(event)

	return resp, err
}
