// Package audit runs the monthly skill audit: which of the owner's tasks stay
// human, how long each skill stays durable and the resulting conductor score.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pathwise/internal/durability"
	"pathwise/internal/generation"
	"pathwise/internal/growth"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/store"
	"pathwise/internal/types"
)

// Service runs audits for one role scope.
type Service struct {
	client    generation.Client
	estimator *durability.Estimator
	store     store.RecordStore
	roleScope string
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// New creates a Service.
func New(client generation.Client, estimator *durability.Estimator, records store.RecordStore, roleScope string, m *metrics.Metrics) *Service {
	if roleScope == "" {
		roleScope = "member"
	}
	return &Service{
		client:    client,
		estimator: estimator,
		store:     records,
		roleScope: roleScope,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type classifySubject struct {
	Role     string   `json:"role"`
	Industry string   `json:"industry"`
	Tasks    []string `json:"tasks"`
}

// Classify splits tasks between human and machine. The result has one entry
// per task in input order. Tasks the provider did not classify stay human;
// if the provider fails every task stays human and degraded is true.
func (s *Service) Classify(ctx context.Context, profile types.Profile, tasks []string) (out []types.TaskClassification, degraded bool) {
	byTask := map[string]types.TaskClassification{}

	analysis, err := s.classify(ctx, profile, tasks)
	if err != nil {
		logging.Get(logging.CategoryAudit).Warn("Task classification for %s degraded: %v", profile.OwnerID, err)
		logging.Audit(logging.CategoryAudit).ForOwner(profile.OwnerID).Degraded("collab_skills", err)
		s.metrics.RecordDegradation("audit")
		degraded = true
	} else {
		for _, c := range analysis.Tasks {
			byTask[taskKey(c.Task)] = c
		}
	}

	out = make([]types.TaskClassification, 0, len(tasks))
	for _, task := range tasks {
		c, ok := byTask[taskKey(task)]
		assignee := types.AssigneeHuman
		if ok && strings.EqualFold(string(c.Assignee), string(types.AssigneeMachine)) {
			assignee = types.AssigneeMachine
		}
		out = append(out, types.TaskClassification{Task: task, Assignee: assignee, Rationale: c.Rationale})
	}
	return out, degraded
}

func (s *Service) classify(ctx context.Context, profile types.Profile, tasks []string) (types.CollabSkillsAnalysis, error) {
	if s.client == nil {
		return types.CollabSkillsAnalysis{}, fmt.Errorf("no generation client configured")
	}
	resp, err := s.client.Generate(ctx, generation.Request{
		Task:    generation.TaskCollabSkills,
		Schema:  generation.SchemaCollabSkills,
		Subject: classifySubject{Role: profile.Role, Industry: profile.Industry, Tasks: tasks},
	})
	if err != nil {
		return types.CollabSkillsAnalysis{}, types.NewFailure(types.KindNonFatal, "audit.classify", err)
	}
	return generation.Decode[types.CollabSkillsAnalysis](generation.TaskCollabSkills, resp)
}

func taskKey(task string) string {
	return strings.ToLower(strings.TrimSpace(task))
}

// Run audits tasks for the owner of profile and appends the record to the
// owner's audit history.
func (s *Service) Run(ctx context.Context, profile types.Profile, tasks []string) (types.SkillAuditRecord, error) {
	timer := logging.StartTimer(logging.CategoryAudit, "Run")
	defer timer.StopWithThreshold(30 * time.Second)

	profile = profile.Normalize()
	tasks = cleanTasks(tasks)
	if profile.OwnerID == "" || len(tasks) == 0 {
		return types.SkillAuditRecord{}, types.NewFailure(types.KindValidation, "audit.run",
			fmt.Errorf("owner id and at least one task are required"))
	}

	classified, degraded := s.Classify(ctx, profile, tasks)
	years := map[string]float64{}
	if s.estimator != nil && len(profile.Skills) > 0 {
		years = s.estimator.EstimateAll(ctx, profile.Skills, profile.Role, profile.Industry)
	}

	now := s.now().UTC()
	rec := types.SkillAuditRecord{
		ID:             s.newID(),
		OwnerID:        profile.OwnerID,
		Month:          now.Format("2006-01"),
		Tasks:          classified,
		Durability:     years,
		ConductorScore: growth.ConductorScore(classified),
		Degraded:       degraded,
		RecordedAt:     now,
	}
	if err := store.SaveJSON(ctx, s.store, store.CollectionAudits, s.roleScope, rec.OwnerID, rec.ID, rec); err != nil {
		return types.SkillAuditRecord{}, fmt.Errorf("failed to append audit: %w", err)
	}
	s.metrics.RecordAppend(store.CollectionAudits)
	logging.Audit(logging.CategoryAudit).ForOwner(rec.OwnerID).Log(logging.AuditEvent{
		EventType: logging.AuditRecordAppend,
		Target:    store.CollectionAudits,
		Success:   true,
		Fields:    map[string]interface{}{"conductor_score": rec.ConductorScore, "degraded": degraded},
	})
	logging.Get(logging.CategoryAudit).Info("Audit %s for %s: %d tasks, conductor %.0f", rec.Month, rec.OwnerID, len(classified), rec.ConductorScore)
	return rec, nil
}

// History returns the owner's audits in insertion order.
func (s *Service) History(ctx context.Context, ownerID string) ([]types.SkillAuditRecord, error) {
	out, err := store.QueryJSON[types.SkillAuditRecord](ctx, s.store, store.CollectionAudits, ownerID, s.roleScope)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit history: %w", err)
	}
	return out, nil
}

func cleanTasks(tasks []string) []string {
	seen := make(map[string]bool, len(tasks))
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		t = strings.TrimSpace(t)
		if t == "" || seen[taskKey(t)] {
			continue
		}
		seen[taskKey(t)] = true
		out = append(out, t)
	}
	return out
}
