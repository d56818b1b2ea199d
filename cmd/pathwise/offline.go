package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pathwise/internal/generation"
	"pathwise/internal/types"
)

// offlineClient answers every task with canned content so the command can be
// exercised without credentials.
func offlineClient() *generation.ScriptedClient {
	source := types.GroundingSource{Title: "Offline sample", URI: "https://example.invalid/offline"}
	return generation.NewScriptedClient().
		On(generation.TaskAssessment, generation.Reply(map[string]interface{}{
			"riskScore":            52,
			"category":             "Augment",
			"vulnerabilities":      []string{"Routine reporting"},
			"strengths":            []string{"Stakeholder trust"},
			"weaknesses":           []string{"Automation tooling"},
			"futureReadinessScore": 61,
			"aiCollabScore":        47,
			"trajectories":         []map[string]interface{}{{"title": "Team lead", "fit": 0.7}},
		}, source)).
		On(generation.TaskRoadmap, generation.Reply(types.Roadmap{
			Title: "Twelve month transition",
			Phases: []types.RoadmapPhase{
				{Name: "Foundation", Timeframe: "0-3 months", Goals: []string{"Map automatable tasks"}},
				{Name: "Leverage", Timeframe: "3-9 months", Goals: []string{"Own one AI-assisted workflow"}},
			},
		})).
		On(generation.TaskActionPlan, generation.Reply(types.ActionPlan{
			Summary: "Start with the tasks you already repeat weekly.",
			Actions: []types.ActionItem{{Title: "List weekly tasks", Priority: "high", DueInDays: 7}},
		})).
		On(generation.TaskLearningResources, generation.Reply([]types.LearningResource{
			{Title: "Prompting for analysts", Format: "course", EstimatedHours: 6},
		})).
		On(generation.TaskMentorMatches, generation.Reply([]types.Mentor{
			{Name: "Sample Mentor", Title: "Director", Expertise: []string{"Change management"}, MatchScore: 80},
		})).
		On(generation.TaskVision, generation.Reply(types.Vision{
			Headline:  "The person who directs the machines",
			Narrative: "Judgment and relationships stay with you; the rest is delegated.",
		})).
		On(generation.TaskStrategicAlerts, generation.Reply([]types.Notification{
			{Title: "Automation pressure", Message: "Reporting tasks in your role are being automated.", Priority: "high"},
			{Title: "Opening", Message: "Teams need people who review AI output.", Priority: "medium"},
		})).
		On(generation.TaskMarketSignals, generation.Reply([]types.MarketSignal{
			{Title: "Hybrid roles grow", Summary: "Postings asking for AI oversight are up.", Impact: "positive", Relevance: 0.7},
		}, source)).
		On(generation.TaskStrategicTip, generation.Reply(types.StrategicTip{
			Title: "Keep a decision log", Body: "Write down calls only you could make.", Focus: "judgment",
		})).
		On(generation.TaskVoiceReflection, func(_ context.Context, req generation.Request) (*generation.Response, error) {
			return reply(offlineReflection(subjectText(req.Subject, "transcript")))
		}).
		On(generation.TaskCollabSkills, func(_ context.Context, req generation.Request) (*generation.Response, error) {
			return reply(offlineClassification(req.Subject))
		}).
		On(generation.TaskSkillDurability, func(_ context.Context, req generation.Request) (*generation.Response, error) {
			skill := subjectText(req.Subject, "skill")
			return reply(map[string]float64{"years": float64(2 + len(skill)%9)})
		})
}

func reply(v interface{}) (*generation.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &generation.Response{Body: data}, nil
}

// subjectText reads one string field of a subject through its JSON form.
func subjectText(subject interface{}, field string) string {
	data, err := json.Marshal(subject)
	if err != nil {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	s, _ := m[field].(string)
	return s
}

func offlineReflection(transcript string) types.VoiceReflectionAnalysis {
	lower := strings.ToLower(transcript)
	a := types.VoiceReflectionAnalysis{
		SentimentScore:  0.1,
		StressLevel:     5,
		ConfidenceLevel: 6,
		EnergyLevel:     6,
		QualityScore:    float64(min(100, 40+len(strings.Fields(transcript))*2)),
		Grade:           "B",
		Themes:          []string{"reflection"},
		Summary:         "Offline reading.",
	}
	for word, theme := range map[string]string{"team": "collaboration", "learn": "learning", "tired": "fatigue", "ai": "automation"} {
		if strings.Contains(lower, word) {
			a.Themes = append(a.Themes, theme)
		}
	}
	if strings.Contains(lower, "proud") || strings.Contains(lower, "great") {
		a.SentimentScore, a.Grade = 0.6, "A"
	}
	return a
}

func offlineClassification(subject interface{}) types.CollabSkillsAnalysis {
	data, _ := json.Marshal(subject)
	var s struct {
		Tasks []string `json:"tasks"`
	}
	_ = json.Unmarshal(data, &s)

	var out types.CollabSkillsAnalysis
	for _, task := range s.Tasks {
		assignee := types.AssigneeHuman
		for _, kw := range []string{"report", "entry", "format", "schedule"} {
			if strings.Contains(strings.ToLower(task), kw) {
				assignee = types.AssigneeMachine
			}
		}
		out.Tasks = append(out.Tasks, types.TaskClassification{Task: task, Assignee: assignee, Rationale: fmt.Sprintf("offline rule for %q", task)})
	}
	return out
}
