package types

import "time"

// =============================================================================
// SYNTHESIZED ARTIFACTS
// =============================================================================

// GroundingSource is a web source the provider cited for a response.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Assessment is the barrier artifact every dependent artifact is derived from.
type Assessment struct {
	ID                   string   `json:"id"`
	ProfileID            string   `json:"profileId"`
	RiskScore            float64  `json:"riskScore"`
	Category             string   `json:"category"`
	Vulnerabilities      []string `json:"vulnerabilities"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	FutureReadinessScore float64  `json:"futureReadinessScore"`
	AICollabScore        float64  `json:"aiCollabScore"`

	// Provider-shaped documents.
	Trajectories   Document `json:"trajectories,omitempty"`
	ResumeAnalysis Document `json:"resumeAnalysis,omitempty"`
	RadarThreats   Document `json:"radarThreats,omitempty"`
	Positioning    Document `json:"positioning,omitempty"`

	Sources     []GroundingSource `json:"sources,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// ArtifactKey ties a dependent artifact to the (profile, assessment) pair it
// was produced for.
type ArtifactKey struct {
	ProfileID    string `json:"profileId"`
	AssessmentID string `json:"assessmentId"`
}

// KeyFor returns the key carried by every artifact derived from a.
func (a Assessment) KeyFor() ArtifactKey {
	return ArtifactKey{ProfileID: a.ProfileID, AssessmentID: a.ID}
}

// Roadmap is a phased transition plan.
type Roadmap struct {
	Key    ArtifactKey    `json:"key"`
	Title  string         `json:"title"`
	Phases []RoadmapPhase `json:"phases"`
}

// RoadmapPhase is one stage of a roadmap.
type RoadmapPhase struct {
	Name       string   `json:"name"`
	Timeframe  string   `json:"timeframe"`
	Goals      []string `json:"goals"`
	Milestones []string `json:"milestones,omitempty"`
}

// ActionPlan is the near-term list of concrete actions.
type ActionPlan struct {
	Key     ArtifactKey  `json:"key"`
	Summary string       `json:"summary"`
	Actions []ActionItem `json:"actions"`
}

// ActionItem is a single action.
type ActionItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // high, medium, low
	Category    string `json:"category,omitempty"`
	DueInDays   int    `json:"dueInDays,omitempty"`
}

// LearningResource is a course, book or other material.
type LearningResource struct {
	Title          string  `json:"title"`
	Provider       string  `json:"provider,omitempty"`
	URL            string  `json:"url,omitempty"`
	Format         string  `json:"format,omitempty"`
	Skill          string  `json:"skill,omitempty"`
	EstimatedHours float64 `json:"estimatedHours,omitempty"`
}

// LearningPath is the keyed list of learning resources.
type LearningPath struct {
	Key       ArtifactKey        `json:"key"`
	Resources []LearningResource `json:"resources"`
}

// Mentor is a suggested mentor profile.
type Mentor struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Expertise  []string `json:"expertise"`
	MatchScore float64  `json:"matchScore"`
	Rationale  string   `json:"rationale,omitempty"`
}

// MentorMatches is the keyed list of mentors.
type MentorMatches struct {
	Key     ArtifactKey `json:"key"`
	Mentors []Mentor    `json:"mentors"`
}

// Vision is the long-horizon career narrative.
type Vision struct {
	Key       ArtifactKey `json:"key"`
	Headline  string      `json:"headline"`
	Narrative string      `json:"narrative"`
	Horizon   string      `json:"horizon,omitempty"`
	Pillars   []string    `json:"pillars,omitempty"`
}

// Bundle is the Ready output of a synthesis run.
type Bundle struct {
	Profile    Profile       `json:"profile"`
	Assessment Assessment    `json:"assessment"`
	Roadmap    Roadmap       `json:"roadmap"`
	ActionPlan ActionPlan    `json:"actionPlan"`
	Learning   LearningPath  `json:"learning"`
	Mentors    MentorMatches `json:"mentors"`
	Vision     Vision        `json:"vision"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// =============================================================================
// SECONDARY INSIGHTS
// =============================================================================

// MarketSignal is a grounded market observation relevant to a profile.
type MarketSignal struct {
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Impact    string            `json:"impact"` // positive, negative, neutral
	Relevance float64           `json:"relevance"`
	Sources   []GroundingSource `json:"sources,omitempty"`
}

// StrategicTip is a single short piece of advice.
type StrategicTip struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Focus string `json:"focus,omitempty"`
}
