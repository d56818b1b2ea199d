// Package alerts derives short strategic notifications from a profile and
// its assessment. Alerts are a secondary feature: any failure yields no
// alerts rather than an error.
package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pathwise/internal/generation"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/types"
)

var errNoClient = errors.New("no generation client configured")

// DefaultMax is the number of alerts requested per call.
const DefaultMax = 2

// Synthesizer produces strategic alerts.
type Synthesizer struct {
	client  generation.Client
	max     int
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// New creates a Synthesizer returning at most max alerts. max <= 0 means DefaultMax.
func New(client generation.Client, max int, m *metrics.Metrics) *Synthesizer {
	if max <= 0 {
		max = DefaultMax
	}
	return &Synthesizer{client: client, max: max, metrics: m, now: time.Now, newID: uuid.NewString}
}

type subject struct {
	Profile    types.Profile    `json:"profile"`
	Assessment types.Assessment `json:"assessment"`
	Count      int              `json:"count"`
}

// Synthesize returns up to max alerts for the owner of profile. Each alert
// gets a fresh id, the current time, the owner id and read=false regardless
// of what the provider sent. The result is never nil.
func (s *Synthesizer) Synthesize(ctx context.Context, profile types.Profile, assessment types.Assessment) []types.Notification {
	out, err := s.synthesize(ctx, profile, assessment)
	if err != nil {
		logging.Get(logging.CategoryAlerts).Warn("Strategic alerts for %s unavailable: %v", profile.OwnerID, err)
		logging.Audit(logging.CategoryAlerts).ForOwner(profile.OwnerID).Degraded("strategic_alerts", err)
		s.metrics.RecordDegradation("alerts")
		return []types.Notification{}
	}
	return out
}

func (s *Synthesizer) synthesize(ctx context.Context, profile types.Profile, assessment types.Assessment) ([]types.Notification, error) {
	if s.client == nil {
		return nil, types.NewFailure(types.KindNonFatal, "alerts", errNoClient)
	}
	resp, err := s.client.Generate(ctx, generation.Request{
		Task:    generation.TaskStrategicAlerts,
		Schema:  generation.SchemaNotifications,
		Subject: subject{Profile: profile, Assessment: assessment, Count: s.max},
	})
	if err != nil {
		return nil, types.NewFailure(types.KindNonFatal, "alerts", err)
	}
	raw, err := generation.Decode[[]types.Notification](generation.TaskStrategicAlerts, resp)
	if err != nil {
		return nil, err
	}

	if len(raw) > s.max {
		raw = raw[:s.max]
	}
	now := s.now().UTC()
	out := make([]types.Notification, 0, len(raw))
	for _, n := range raw {
		n.ID = s.newID()
		n.OwnerID = profile.OwnerID
		n.CreatedAt = now
		n.Read = false
		out = append(out, n)
	}
	logging.Get(logging.CategoryAlerts).Debug("Synthesized %d alerts for %s", len(out), profile.OwnerID)
	return out, nil
}
