// Package synthesis turns a profile into a bundle of strategic artifacts.
//
// A run validates the profile, requests the assessment and waits for it
// (the barrier), then requests the five dependent artifacts concurrently.
// The join is all-or-nothing: the first dependent failure ends the run, the
// remaining requests are cancelled and their results discarded. Only a fully
// successful run persists (profile, assessment), exactly once.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pathwise/internal/generation"
	"pathwise/internal/logging"
	"pathwise/internal/metrics"
	"pathwise/internal/store"
	"pathwise/internal/types"
)

// Observer is told about every state transition of a run.
type Observer func(from, to State)

// Orchestrator runs synthesis pipelines. It holds no per-run state and is
// safe for concurrent use.
type Orchestrator struct {
	client   generation.Client
	store    store.RecordStore
	metrics  *metrics.Metrics
	observer Observer
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records run outcomes and transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithObserver installs a transition observer.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithTimeout bounds a whole run.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(client generation.Client, records store.RecordStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		store:  records,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run tracks the state of one Synthesize call.
type run struct {
	o     *Orchestrator
	state State
	audit *logging.AuditLogger
}

func (r *run) to(next State) {
	from := r.state
	r.state = next
	r.o.metrics.RecordTransition(string(from), string(next))
	r.audit.Transition(string(from), string(next))
	logging.PipelineDebug("%s -> %s", from, next)
	if r.o.observer != nil {
		r.o.observer(from, next)
	}
}

// Synthesize runs the pipeline for profile. The returned session carries
// the new bundle on success. On failure it carries the error, is back in
// Idle and keeps the bundle of the previous Ready run.
func (o *Orchestrator) Synthesize(ctx context.Context, sess Session, profile types.Profile) (Session, error) {
	start := o.now()
	if sess.RoleScope == "" {
		sess.RoleScope = DefaultRoleScope
	}
	profile = profile.Normalize()

	r := &run{o: o, state: StateIdle, audit: logging.Audit(logging.CategoryPipeline).ForOwner(profile.OwnerID)}
	r.audit.Log(logging.AuditEvent{EventType: logging.AuditPipelineStart, Target: sess.RoleScope, Success: true})

	bundle, err := o.execute(ctx, r, sess, profile)
	elapsed := o.now().Sub(start)
	if err != nil {
		exit := StateFailed
		if errors.Is(err, types.ErrAuthExpired) {
			exit = StateAuthExpired
		}
		r.to(exit)
		r.to(StateIdle)
		o.metrics.RecordSynthesis(string(types.KindOf(err)), elapsed)
		r.audit.Log(logging.AuditEvent{
			EventType: logging.AuditPipelineAbort,
			Target:    string(exit),
			Duration:  elapsed,
			Error:     err.Error(),
		})
		logging.Get(logging.CategoryPipeline).Warn("Synthesis for %s aborted (%s): %v", profile.OwnerID, types.KindOf(err), err)

		sess.State = StateIdle
		sess.Err = err
		return sess, err
	}

	o.metrics.RecordSynthesis("ready", elapsed)
	r.audit.Log(logging.AuditEvent{EventType: logging.AuditPipelineReady, Duration: elapsed, Success: true})
	logging.Pipeline("Synthesis for %s ready in %v", profile.OwnerID, elapsed)

	sess.OwnerID = profile.OwnerID
	sess.State = StateReady
	sess.Bundle = bundle
	sess.Err = nil
	return sess, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, sess Session, profile types.Profile) (*types.Bundle, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if sess.OwnerID != "" && sess.OwnerID != profile.OwnerID {
		return nil, types.NewFailure(types.KindValidation, "synthesis.session",
			fmt.Errorf("session belongs to %q, profile to %q", sess.OwnerID, profile.OwnerID))
	}
	if o.client == nil || o.store == nil {
		return nil, types.NewFailure(types.KindSynthesis, "synthesis.configure", fmt.Errorf("generation client and record store are required"))
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	r.to(StateAssessing)
	assessment, err := o.assess(ctx, profile)
	if err != nil {
		return nil, err
	}

	r.to(StateSynthesizingDependents)
	deps, err := o.synthesizeDependents(ctx, profile, assessment)
	if err != nil {
		return nil, err
	}

	r.to(StatePersisting)
	now := o.now().UTC()
	profile.UpdatedAt = now
	rec := types.ProfileRecord{Profile: profile, Assessment: &assessment, UpdatedAt: now}
	if err := store.SaveJSON(ctx, o.store, store.CollectionProfiles, sess.RoleScope, profile.OwnerID, profile.OwnerID, rec); err != nil {
		return nil, types.NewFailure(types.KindSynthesis, "synthesis.persist", err)
	}
	r.to(StateReady)

	return &types.Bundle{
		Profile:    profile,
		Assessment: assessment,
		Roadmap:    deps.roadmap,
		ActionPlan: deps.actionPlan,
		Learning:   deps.learning,
		Mentors:    deps.mentors,
		Vision:     deps.vision,
		CreatedAt:  now,
	}, nil
}

func (o *Orchestrator) assess(ctx context.Context, profile types.Profile) (types.Assessment, error) {
	const op = "synthesis.assessment"
	resp, err := o.client.Generate(ctx, generation.Request{
		Task:     generation.TaskAssessment,
		Schema:   generation.SchemaAssessment,
		Subject:  profile,
		Grounded: true,
	})
	if err != nil {
		return types.Assessment{}, classify(op, err)
	}
	assessment, err := generation.Decode[types.Assessment](generation.TaskAssessment, resp)
	if err != nil {
		return types.Assessment{}, types.NewFailure(types.KindSynthesis, op, err)
	}

	assessment.ID = o.newID()
	assessment.ProfileID = profile.OwnerID
	assessment.GeneratedAt = o.now().UTC()
	if len(resp.Sources) > 0 {
		assessment.Sources = resp.Sources
	}
	return assessment, nil
}

// classify maps a provider error to a failure kind. Only the expired
// credential message is singled out. It applies to the assessment and to
// every dependent, so a dependent that hits an expired credential ends the
// run in AuthExpired rather than Failed.
func classify(op string, err error) error {
	if generation.IsAuthExpired(err) {
		return types.NewFailure(types.KindAuthExpired, op, err)
	}
	return types.NewFailure(types.KindSynthesis, op, err)
}

// dependents holds one slot per fan-out branch. Each branch writes only its
// own slot.
type dependents struct {
	roadmap    types.Roadmap
	actionPlan types.ActionPlan
	learning   types.LearningPath
	mentors    types.MentorMatches
	vision     types.Vision
}

// dependentSubject is what every dependent request is parameterized by.
type dependentSubject struct {
	Profile    types.Profile    `json:"profile"`
	Assessment types.Assessment `json:"assessment"`
}

func (o *Orchestrator) synthesizeDependents(ctx context.Context, profile types.Profile, assessment types.Assessment) (dependents, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	key := assessment.KeyFor()
	subject := dependentSubject{Profile: profile, Assessment: assessment}
	out := &dependents{}

	g, gctx := errgroup.WithContext(ctx)
	failed := make(chan error, 1)

	branch := func(task generation.Task, schema generation.SchemaName, fill func(json.RawMessage) error) {
		g.Go(func() error {
			op := "synthesis." + string(task)
			resp, err := o.client.Generate(gctx, generation.Request{Task: task, Schema: schema, Subject: subject})
			if err != nil {
				err = classify(op, err)
			} else if resp == nil || len(resp.Body) == 0 {
				err = types.NewFailure(types.KindSynthesis, op,
					types.NewFailure(types.KindMalformedResponse, string(task), fmt.Errorf("empty response")))
			} else if ferr := fill(resp.Body); ferr != nil {
				err = types.NewFailure(types.KindSynthesis, op,
					types.NewFailure(types.KindMalformedResponse, string(task), ferr))
			}
			if err != nil {
				select {
				case failed <- err:
				default:
				}
			}
			return err
		})
	}

	branch(generation.TaskRoadmap, generation.SchemaRoadmap, func(body json.RawMessage) error {
		if err := json.Unmarshal(body, &out.roadmap); err != nil {
			return err
		}
		out.roadmap.Key = key
		return nil
	})
	branch(generation.TaskActionPlan, generation.SchemaActionPlan, func(body json.RawMessage) error {
		if err := json.Unmarshal(body, &out.actionPlan); err != nil {
			return err
		}
		out.actionPlan.Key = key
		return nil
	})
	branch(generation.TaskLearningResources, generation.SchemaLearningResources, func(body json.RawMessage) error {
		var resources []types.LearningResource
		if err := json.Unmarshal(body, &resources); err != nil {
			return err
		}
		out.learning = types.LearningPath{Key: key, Resources: resources}
		return nil
	})
	branch(generation.TaskMentorMatches, generation.SchemaMentors, func(body json.RawMessage) error {
		var mentors []types.Mentor
		if err := json.Unmarshal(body, &mentors); err != nil {
			return err
		}
		out.mentors = types.MentorMatches{Key: key, Mentors: mentors}
		return nil
	})
	branch(generation.TaskVision, generation.SchemaVision, func(body json.RawMessage) error {
		if err := json.Unmarshal(body, &out.vision); err != nil {
			return err
		}
		out.vision.Key = key
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-failed:
		// Stragglers see the cancelled context and their results are dropped.
		return dependents{}, err
	case err := <-done:
		if err != nil {
			return dependents{}, err
		}
		return *out, nil
	}
}

// Load returns the last persisted record for owner in the role scope.
// ok is false when nothing has been persisted yet.
func (o *Orchestrator) Load(ctx context.Context, ownerID, roleScope string) (rec types.ProfileRecord, ok bool, err error) {
	if roleScope == "" {
		roleScope = DefaultRoleScope
	}
	records, err := store.QueryJSON[types.ProfileRecord](ctx, o.store, store.CollectionProfiles, ownerID, roleScope)
	if err != nil {
		return types.ProfileRecord{}, false, fmt.Errorf("failed to load profile for %s: %w", ownerID, err)
	}
	if len(records) == 0 {
		return types.ProfileRecord{}, false, nil
	}
	return records[len(records)-1], true, nil
}
