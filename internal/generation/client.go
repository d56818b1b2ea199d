// Package generation is the boundary to the external content-generation
// capability. Callers describe what they want (a task, the schema the answer
// must follow and a subject descriptor); implementations return the raw JSON
// body plus any grounding sources the provider attached.
package generation

import (
	"context"
	"encoding/json"
	"strings"

	"pathwise/internal/types"
)

// Client is the content generation capability.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Task identifies what is being generated.
type Task string

const (
	TaskAssessment        Task = "assessment"
	TaskRoadmap           Task = "roadmap"
	TaskActionPlan        Task = "action_plan"
	TaskLearningResources Task = "learning_resources"
	TaskMentorMatches     Task = "mentor_matches"
	TaskVision            Task = "vision"
	TaskCollabSkills      Task = "collab_skills"
	TaskMarketSignals     Task = "market_signals"
	TaskStrategicAlerts   Task = "strategic_alerts"
	TaskStrategicTip      Task = "strategic_tip"
	TaskVoiceReflection   Task = "voice_reflection"
	TaskSkillDurability   Task = "skill_durability"
)

// SchemaName names the response contract.
type SchemaName string

const (
	SchemaAssessment        SchemaName = "Assessment"
	SchemaRoadmap           SchemaName = "Roadmap"
	SchemaActionPlan        SchemaName = "ActionPlan"
	SchemaLearningResources SchemaName = "LearningResource[]"
	SchemaMentors           SchemaName = "Mentor[]"
	SchemaVision            SchemaName = "Vision"
	SchemaCollabSkills      SchemaName = "CollabSkillsAnalysis"
	SchemaMarketSignals     SchemaName = "MarketSignal[]"
	SchemaNotifications     SchemaName = "Notification[]"
	SchemaStrategicTip      SchemaName = "StrategicTip"
	SchemaVoiceReflection   SchemaName = "VoiceReflectionAnalysis"
	SchemaDurability        SchemaName = "Durability"
)

// Request is one generation call.
type Request struct {
	Task   Task
	Schema SchemaName
	// Subject is marshalled to JSON and handed to the provider as the thing
	// the task is about.
	Subject interface{}
	// Grounded asks the provider to search the web and attach sources.
	Grounded bool
}

// Response is the provider's answer.
type Response struct {
	Body    json.RawMessage
	Sources []types.GroundingSource
}

// authExpiredSignature is the provider message for an unknown or revoked
// credential/project.
const authExpiredSignature = "Requested entity was not found"

// IsAuthExpired reports whether err carries the expired-credential signature.
func IsAuthExpired(err error) bool {
	return err != nil && strings.Contains(err.Error(), authExpiredSignature)
}
