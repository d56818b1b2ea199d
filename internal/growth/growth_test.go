package growth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathwise/internal/types"
)

func reflection(sentiment, stress, confidence, energy, quality float64, grade string, skills, themes []string) types.ReflectionRecord {
	return types.ReflectionRecord{
		VoiceReflectionAnalysis: types.VoiceReflectionAnalysis{
			SentimentScore:   sentiment,
			StressLevel:      stress,
			ConfidenceLevel:  confidence,
			EnergyLevel:      energy,
			QualityScore:     quality,
			Grade:            grade,
			IdentifiedSkills: skills,
			Themes:           themes,
		},
	}
}

func TestGrowthSnapshot_EmptyHistoryIsBaseline(t *testing.T) {
	got := GrowthSnapshot(nil)

	want := types.GrowthMetrics{
		AnxietyLevel: 50, ConfidenceLevel: 50, ExcitementScore: 50, AdaptabilityIndex: 50,
		OrchestrationSkill: 50, EmpathyLeverage: 50, EthicalJudgment: 50, StrategicIntent: 50,
		TechAwareness: 50, ResilienceMoat: 50,
		TopKeywords:    []string{},
		SentimentTrend: types.TrendStable,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("baseline mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, got.TopKeywords)
}

func TestGrowthSnapshot_Formulas(t *testing.T) {
	history := []types.ReflectionRecord{
		reflection(-0.5, 8, 4, 3, 40, "C", []string{"negotiation", "sql"}, []string{"burnout"}),
		reflection(0.2, 6, 6, 5, 60, "B", []string{"sql"}, []string{"growth", "burnout"}),
		reflection(0.6, 3, 8, 7, 82, "A", []string{"delegation", "storytelling", "sql"}, []string{"growth", "leadership"}),
	}

	got := GrowthSnapshot(history)

	assert.InDelta(t, 30, got.AnxietyLevel, 1e-9)
	assert.InDelta(t, 60, got.ConfidenceLevel, 1e-9)
	assert.InDelta(t, 80, got.ExcitementScore, 1e-9)
	assert.InDelta(t, 15, got.AdaptabilityIndex, 1e-9)
	assert.InDelta(t, 82, got.OrchestrationSkill, 1e-9)
	assert.InDelta(t, 30, got.EmpathyLeverage, 1e-9)
	assert.InDelta(t, 85, got.EthicalJudgment, 1e-9)
	assert.InDelta(t, 70, got.StrategicIntent, 1e-9)
	// distinct skills {negotiation, sql, delegation, storytelling} = 4, latest themes = 2
	assert.InDelta(t, 30, got.TechAwareness, 1e-9)
	assert.InDelta(t, 75, got.ResilienceMoat, 1e-9)
	assert.Equal(t, []string{"burnout", "growth", "leadership"}, got.TopKeywords)
	assert.Equal(t, types.TrendImproving, got.SentimentTrend)
}

func TestGrowthSnapshot_EthicalJudgmentByGrade(t *testing.T) {
	for grade, want := range map[string]float64{"S": 95, "A": 85, "B": 70, "C": 70, "": 70} {
		got := GrowthSnapshot([]types.ReflectionRecord{reflection(0, 0, 0, 0, 0, grade, nil, nil)})
		assert.Equal(t, want, got.EthicalJudgment, "grade %q", grade)
	}
}

func TestGrowthSnapshot_SentimentTrend(t *testing.T) {
	cases := []struct {
		name       string
		sentiments []float64
		want       types.Trend
	}{
		{"single entry", []float64{0.9}, types.TrendStable},
		{"rising", []float64{-0.2, 0.5}, types.TrendImproving},
		{"falling", []float64{0.5, -0.2}, types.TrendDeclining},
		{"flat counts as declining", []float64{0.3, 0.9, 0.3}, types.TrendDeclining},
		{"middle ignored", []float64{0.1, -1, 0.2}, types.TrendImproving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var history []types.ReflectionRecord
			for _, s := range tc.sentiments {
				history = append(history, reflection(s, 0, 0, 0, 0, "B", nil, nil))
			}
			assert.Equal(t, tc.want, GrowthSnapshot(history).SentimentTrend)
		})
	}
}

func TestGrowthSnapshot_CountIndicesCapAt100(t *testing.T) {
	var history []types.ReflectionRecord
	skills := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i := 0; i < 30; i++ {
		history = append(history, reflection(1, 10, 10, 10, 100, "S", skills, skills))
	}

	got := GrowthSnapshot(history)
	for name, v := range map[string]float64{
		"anxiety": got.AnxietyLevel, "confidence": got.ConfidenceLevel, "excitement": got.ExcitementScore,
		"adaptability": got.AdaptabilityIndex, "orchestration": got.OrchestrationSkill, "empathy": got.EmpathyLeverage,
		"strategic": got.StrategicIntent, "tech": got.TechAwareness,
	} {
		assert.Equal(t, 100.0, v, name)
	}
	assert.Len(t, got.TopKeywords, 5)
}

func TestGrowthSnapshot_ScalesReadingsLiterally(t *testing.T) {
	got := GrowthSnapshot([]types.ReflectionRecord{
		reflection(1.5, 12, 11, 10.5, 120, "A", nil, nil),
	})

	assert.InDelta(t, 120, got.AnxietyLevel, 1e-9)
	assert.InDelta(t, 110, got.ConfidenceLevel, 1e-9)
	assert.InDelta(t, 125, got.ExcitementScore, 1e-9)
	assert.InDelta(t, 120, got.OrchestrationSkill, 1e-9)
	assert.InDelta(t, 105, got.StrategicIntent, 1e-9)
}

func TestTopKeywords(t *testing.T) {
	history := []types.ReflectionRecord{
		reflection(0, 0, 0, 0, 0, "", nil, []string{"A", "B", "A"}),
		reflection(0, 0, 0, 0, 0, "", nil, []string{"C", "B", "A"}),
	}
	assert.Equal(t, []string{"A", "B", "C"}, TopKeywords(history, 5))
	assert.Equal(t, []string{"A"}, TopKeywords(history, 1))
	assert.Equal(t, []string{}, TopKeywords(nil, 5))
}

func TestTopKeywords_TiesKeepFirstOccurrence(t *testing.T) {
	history := []types.ReflectionRecord{
		reflection(0, 0, 0, 0, 0, "", nil, []string{"z", "y", "x", "w", "v", "u"}),
		reflection(0, 0, 0, 0, 0, "", nil, []string{"u"}),
	}
	assert.Equal(t, []string{"u", "z", "y", "x", "w"}, TopKeywords(history, 5))
}

func TestEngagementAlpha(t *testing.T) {
	profile := types.Profile{Pulse: types.EngagementPulse{Streak: 2}}

	got := EngagementAlpha(profile, 3)

	assert.Equal(t, 3, got.Streak)
	assert.Equal(t, 40+15+6, got.Score)
	assert.Equal(t, []string{MilestoneInitiate}, got.Milestones)
}

func TestEngagementAlpha_Milestones(t *testing.T) {
	cases := []struct {
		count int
		score int
		want  []string
	}{
		{0, 42, []string{MilestoneInitiate}},
		{5, 67, []string{MilestoneInitiate}},
		{6, 72, []string{MilestoneInitiate, MilestoneSymbiont}},
		{9, 87, []string{MilestoneInitiate, MilestoneSymbiont}},
		{10, 92, []string{MilestoneInitiate, MilestoneSymbiont, MilestoneConductor}},
	}
	for _, tc := range cases {
		got := EngagementAlpha(types.Profile{}, tc.count)
		assert.Equal(t, tc.score, got.Score, "count %d", tc.count)
		assert.Equal(t, tc.want, got.Milestones, "count %d", tc.count)
	}
}

func TestEngagementAlpha_KeepsEarnedMilestones(t *testing.T) {
	profile := types.Profile{Pulse: types.EngagementPulse{
		Streak:     0,
		Milestones: []string{MilestoneConductor, MilestoneInitiate},
	}}

	got := EngagementAlpha(profile, 0)

	assert.Equal(t, 42, got.Score)
	assert.Equal(t, []string{MilestoneInitiate, MilestoneConductor}, got.Milestones)
}

func TestEngagementAlpha_MonotonicAndCapped(t *testing.T) {
	for streak := 0; streak < 40; streak++ {
		profile := types.Profile{Pulse: types.EngagementPulse{Streak: streak}}
		prev := -1
		for count := 0; count < 40; count++ {
			got := EngagementAlpha(profile, count)
			require.GreaterOrEqual(t, got.Score, prev)
			raw := 40 + count*5 + (streak+1)*2
			if raw >= 100 {
				require.Equal(t, 100, got.Score, "streak %d count %d", streak, count)
			} else {
				require.Equal(t, raw, got.Score)
			}
			prev = got.Score
		}
	}
}

func TestConductorScore(t *testing.T) {
	assert.Equal(t, 0.0, ConductorScore(nil))

	tasks := []types.TaskClassification{
		{Task: "write report", Assignee: types.AssigneeMachine},
		{Task: "client negotiation", Assignee: types.AssigneeHuman},
		{Task: "hiring decision", Assignee: types.AssigneeHuman},
		{Task: "data entry", Assignee: types.AssigneeMachine},
	}
	assert.InDelta(t, 50, ConductorScore(tasks), 1e-9)

	tasks = append(tasks, types.TaskClassification{Task: "unlabelled"})
	assert.InDelta(t, 60, ConductorScore(tasks), 1e-9)
}
