// Package reflection captures spoken reflections: it analyzes the transcript,
// appends the observation to the owner's history and refreshes the profile's
// growth snapshot and engagement pulse from that history.
package reflection

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"pathwise/internal/generation"
	"pathwise/internal/growth"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/store"
	"pathwise/internal/types"
)

// Service analyzes and records reflections for one role scope.
type Service struct {
	client    generation.Client
	store     store.RecordStore
	roleScope string
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// New creates a Service.
func New(client generation.Client, records store.RecordStore, roleScope string, m *metrics.Metrics) *Service {
	if roleScope == "" {
		roleScope = "member"
	}
	return &Service{
		client:    client,
		store:     records,
		roleScope: roleScope,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// DegradedAnalysis is the neutral reading used when the provider cannot
// analyze a transcript.
func DegradedAnalysis() types.VoiceReflectionAnalysis {
	return types.VoiceReflectionAnalysis{
		SentimentScore:   0,
		SentimentLabel:   "neutral",
		StressLevel:      5,
		ConfidenceLevel:  5,
		EnergyLevel:      5,
		Mood:             "unknown",
		QualityScore:     50,
		Grade:            "B",
		IdentifiedSkills: []string{},
		Themes:           []string{},
		Summary:          "Analysis unavailable; neutral values recorded.",
		Degraded:         true,
	}
}

// Analyze reads a transcript. It never fails: provider errors and malformed
// answers produce DegradedAnalysis.
func (s *Service) Analyze(ctx context.Context, transcript string) types.VoiceReflectionAnalysis {
	analysis, err := s.analyze(ctx, transcript)
	if err != nil {
		logging.Get(logging.CategoryReflection).Warn("Reflection analysis degraded (%s): %v", types.KindOf(err), err)
		logging.Audit(logging.CategoryReflection).Degraded("voice_reflection", err)
		s.metrics.RecordDegradation("reflection")
		return DegradedAnalysis()
	}
	return analysis
}

func (s *Service) analyze(ctx context.Context, transcript string) (types.VoiceReflectionAnalysis, error) {
	if s.client == nil {
		return types.VoiceReflectionAnalysis{}, fmt.Errorf("no generation client configured")
	}
	resp, err := s.client.Generate(ctx, generation.Request{
		Task:    generation.TaskVoiceReflection,
		Schema:  generation.SchemaVoiceReflection,
		Subject: map[string]string{"transcript": transcript},
	})
	if err != nil {
		return types.VoiceReflectionAnalysis{}, types.NewFailure(types.KindNonFatal, "reflection.analyze", err)
	}
	analysis, err := generation.Decode[types.VoiceReflectionAnalysis](generation.TaskVoiceReflection, resp)
	if err != nil {
		return types.VoiceReflectionAnalysis{}, err
	}
	analysis.Degraded = false
	return inRange(analysis), nil
}

// inRange clamps provider readings into their documented scales.
// Non-finite readings take the neutral value.
func inRange(a types.VoiceReflectionAnalysis) types.VoiceReflectionAnalysis {
	neutral := DegradedAnalysis()
	a.SentimentScore = bound(a.SentimentScore, -1, 1, neutral.SentimentScore)
	a.StressLevel = bound(a.StressLevel, 0, 10, neutral.StressLevel)
	a.ConfidenceLevel = bound(a.ConfidenceLevel, 0, 10, neutral.ConfidenceLevel)
	a.EnergyLevel = bound(a.EnergyLevel, 0, 10, neutral.EnergyLevel)
	a.QualityScore = bound(a.QualityScore, 0, 100, neutral.QualityScore)
	return a
}

func bound(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// Capture analyzes transcript, appends the reflection to the owner's
// history and returns the record with the profile updated from the full
// history. Store errors are returned; analysis problems are not.
func (s *Service) Capture(ctx context.Context, profile types.Profile, transcript string) (types.ReflectionRecord, types.Profile, error) {
	timer := logging.StartTimer(logging.CategoryReflection, "Capture")
	defer timer.Stop()

	transcript = strings.TrimSpace(transcript)
	if strings.TrimSpace(profile.OwnerID) == "" || transcript == "" {
		return types.ReflectionRecord{}, profile, types.NewFailure(types.KindValidation, "reflection.capture",
			fmt.Errorf("owner id and transcript are required"))
	}

	now := s.now().UTC()
	rec := types.ReflectionRecord{
		ID:                      s.newID(),
		OwnerID:                 profile.OwnerID,
		Transcript:              transcript,
		RecordedAt:              now,
		VoiceReflectionAnalysis: s.Analyze(ctx, transcript),
	}
	if err := store.SaveJSON(ctx, s.store, store.CollectionReflections, s.roleScope, rec.OwnerID, rec.ID, rec); err != nil {
		return types.ReflectionRecord{}, profile, fmt.Errorf("failed to append reflection: %w", err)
	}
	s.metrics.RecordAppend(store.CollectionReflections)
	logging.Audit(logging.CategoryReflection).ForOwner(rec.OwnerID).Log(logging.AuditEvent{
		EventType: logging.AuditRecordAppend,
		Target:    store.CollectionReflections,
		Success:   true,
		Fields:    map[string]interface{}{"degraded": rec.Degraded},
	})

	// One read after the append; aggregation sees exactly this snapshot.
	history, err := s.History(ctx, profile.OwnerID)
	if err != nil {
		return rec, profile, err
	}

	stored, err := s.storedProfile(ctx, profile.OwnerID)
	if err != nil {
		return rec, profile, err
	}
	// The stored pulse wins over a stale caller copy so the streak never
	// moves backwards.
	if stored != nil && stored.Profile.Pulse.Streak > profile.Pulse.Streak {
		profile.Pulse = stored.Profile.Pulse
	}

	snapshot := growth.GrowthSnapshot(history)
	pulse := growth.EngagementAlpha(profile, len(history))
	pulse.UpdatedAt = now
	profile.Growth = &snapshot
	profile.Pulse = pulse
	profile.UpdatedAt = now

	if err := s.saveProfile(ctx, profile, stored); err != nil {
		return rec, profile, err
	}

	logging.Get(logging.CategoryReflection).Info("Captured reflection %s for %s (history=%d pulse=%d)",
		rec.ID, rec.OwnerID, len(history), pulse.Score)
	return rec, profile, nil
}

// History returns the owner's reflections in insertion order.
func (s *Service) History(ctx context.Context, ownerID string) ([]types.ReflectionRecord, error) {
	history, err := store.QueryJSON[types.ReflectionRecord](ctx, s.store, store.CollectionReflections, ownerID, s.roleScope)
	if err != nil {
		return nil, fmt.Errorf("failed to read reflection history: %w", err)
	}
	return history, nil
}

// storedProfile returns the owner's profile record, or nil if none exists.
func (s *Service) storedProfile(ctx context.Context, ownerID string) (*types.ProfileRecord, error) {
	existing, err := store.QueryJSON[types.ProfileRecord](ctx, s.store, store.CollectionProfiles, ownerID, s.roleScope)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &existing[len(existing)-1], nil
}

// saveProfile updates the profile in its record and keeps the assessment
// of the last synthesis run.
func (s *Service) saveProfile(ctx context.Context, profile types.Profile, stored *types.ProfileRecord) error {
	rec := types.ProfileRecord{Profile: profile, UpdatedAt: profile.UpdatedAt}
	if stored != nil {
		rec.Assessment = stored.Assessment
	}
	if err := store.SaveJSON(ctx, s.store, store.CollectionProfiles, s.roleScope, profile.OwnerID, profile.OwnerID, rec); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
