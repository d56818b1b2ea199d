package types

import "time"

// =============================================================================
// OBSERVATION HISTORY
// =============================================================================

// VoiceReflectionAnalysis is the provider's reading of one spoken reflection.
type VoiceReflectionAnalysis struct {
	SentimentScore   float64  `json:"sentimentScore"` // -1..1
	SentimentLabel   string   `json:"sentimentLabel,omitempty"`
	StressLevel      float64  `json:"stressLevel"`     // 0-10
	ConfidenceLevel  float64  `json:"confidenceLevel"` // 0-10
	EnergyLevel      float64  `json:"energyLevel"`     // 0-10
	Mood             string   `json:"mood,omitempty"`
	QualityScore     float64  `json:"qualityScore"` // 0-100
	Grade            string   `json:"grade"`        // referee grade: S, A, B, C
	IdentifiedSkills []string `json:"identifiedSkills"`
	Themes           []string `json:"themes"`
	Summary          string   `json:"summary,omitempty"`

	// Degraded marks a locally substituted default, not a provider reading.
	Degraded bool `json:"degraded,omitempty"`
}

// ReflectionRecord is one append-only observation.
type ReflectionRecord struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Transcript string    `json:"transcript"`
	RecordedAt time.Time `json:"recordedAt"`

	VoiceReflectionAnalysis
}

// Assignee says who keeps a task.
type Assignee string

const (
	AssigneeHuman   Assignee = "human"
	AssigneeMachine Assignee = "machine"
)

// TaskClassification is one audited task.
type TaskClassification struct {
	Task      string   `json:"task"`
	Assignee  Assignee `json:"assignee"`
	Rationale string   `json:"rationale,omitempty"`
}

// CollabSkillsAnalysis is the provider's human/machine split of a task list.
type CollabSkillsAnalysis struct {
	Tasks     []TaskClassification `json:"tasks"`
	HumanEdge []string             `json:"humanEdge,omitempty"`
	Summary   string               `json:"summary,omitempty"`
}

// SkillAuditRecord is one monthly audit snapshot. Append-only.
type SkillAuditRecord struct {
	ID             string               `json:"id"`
	OwnerID        string               `json:"ownerId"`
	Month          string               `json:"month"` // YYYY-MM
	Tasks          []TaskClassification `json:"tasks"`
	Durability     map[string]float64   `json:"durability,omitempty"` // skill -> years
	ConductorScore float64              `json:"conductorScore"`
	Degraded       bool                 `json:"degraded,omitempty"`
	RecordedAt     time.Time            `json:"recordedAt"`
}

// =============================================================================
// DERIVED INDICES
// =============================================================================

// Trend is the direction of sentiment across the reflection history.
type Trend string

const (
	TrendStable    Trend = "Stable"
	TrendImproving Trend = "Improving"
	TrendDeclining Trend = "Declining"
)

// GrowthMetrics is the fixed-shape projection of the reflection history.
// Every float field is on a 0-100 scale.
type GrowthMetrics struct {
	AnxietyLevel       float64  `json:"anxietyLevel"`
	ConfidenceLevel    float64  `json:"confidenceLevel"`
	ExcitementScore    float64  `json:"excitementScore"`
	AdaptabilityIndex  float64  `json:"adaptabilityIndex"`
	OrchestrationSkill float64  `json:"orchestrationSkill"`
	EmpathyLeverage    float64  `json:"empathyLeverage"`
	EthicalJudgment    float64  `json:"ethicalJudgment"`
	StrategicIntent    float64  `json:"strategicIntent"`
	TechAwareness      float64  `json:"techAwareness"`
	ResilienceMoat     float64  `json:"resilienceMoat"`
	TopKeywords        []string `json:"topKeywords"`
	SentimentTrend     Trend    `json:"sentimentTrend"`
}
