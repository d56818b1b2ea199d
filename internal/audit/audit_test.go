package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathwise/internal/durability"
	"pathwise/internal/generation"
	"pathwise/internal/store"
	"pathwise/internal/types"
)

var profile = types.Profile{
	OwnerID:  "u1",
	Role:     "Paralegal",
	Industry: "Legal",
	Skills:   []string{"Contract review", "Client intake"},
}

func newService(client *generation.ScriptedClient, records store.RecordStore) *Service {
	svc := New(client, durability.New(client, durability.Config{}, nil), records, "", nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestRun(t *testing.T) {
	client := generation.NewScriptedClient().
		On(generation.TaskCollabSkills, generation.Reply(types.CollabSkillsAnalysis{Tasks: []types.TaskClassification{
			{Task: "document formatting", Assignee: types.AssigneeMachine, Rationale: "templated"},
			{Task: "Client interviews", Assignee: types.AssigneeHuman},
			{Task: "citation checks", Assignee: "MACHINE"},
		}})).
		On(generation.TaskSkillDurability, generation.ReplyRaw(`{"years": 6}`))
	records := store.NewMemoryStore()
	svc := newService(client, records)

	rec, err := svc.Run(context.Background(), profile, []string{"Document formatting", "client interviews", "citation checks", "court filings", " ", "court filings"})
	require.NoError(t, err)

	assert.Equal(t, "2026-09", rec.Month)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Degraded)
	assert.Equal(t, []types.TaskClassification{
		{Task: "Document formatting", Assignee: types.AssigneeMachine, Rationale: "templated"},
		{Task: "client interviews", Assignee: types.AssigneeHuman},
		{Task: "citation checks", Assignee: types.AssigneeMachine},
		{Task: "court filings", Assignee: types.AssigneeHuman},
	}, rec.Tasks)
	assert.InDelta(t, 50, rec.ConductorScore, 1e-9)
	assert.Equal(t, map[string]float64{"Contract review": 6, "Client intake": 6}, rec.Durability)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)
}

func TestRun_ClassificationFailureKeepsTasksHuman(t *testing.T) {
	client := generation.NewScriptedClient().
		On(generation.TaskCollabSkills, generation.Fail(errors.New("unavailable"))).
		On(generation.TaskSkillDurability, generation.Fail(errors.New("unavailable")))
	svc := newService(client, store.NewMemoryStore())

	rec, err := svc.Run(context.Background(), profile, []string{"drafting", "research"})
	require.NoError(t, err)

	assert.True(t, rec.Degraded)
	for _, task := range rec.Tasks {
		assert.Equal(t, types.AssigneeHuman, task.Assignee)
	}
	assert.Equal(t, 100.0, rec.ConductorScore)
	assert.Equal(t, map[string]float64{"Contract review": durability.FallbackYears, "Client intake": durability.FallbackYears}, rec.Durability)
}

func TestRun_AppendOnlyHistory(t *testing.T) {
	client := generation.NewScriptedClient().
		On(generation.TaskCollabSkills, generation.ReplyRaw(`{"tasks": []}`)).
		On(generation.TaskSkillDurability, generation.ReplyRaw(`{"years": 2}`))
	svc := newService(client, store.NewMemoryStore())

	first, err := svc.Run(context.Background(), profile, []string{"a"})
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), profile, []string{"b"})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}

func TestRun_Validation(t *testing.T) {
	client := generation.NewScriptedClient()
	svc := newService(client, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), profile, []string{"  "})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = svc.Run(context.Background(), types.Profile{}, []string{"a"})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, client.Calls())
}
