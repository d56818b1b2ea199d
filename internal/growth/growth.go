// Package growth reduces a user's ordered observation history into the
// longitudinal indices shown on the dashboard. Every function here is a pure
// reduction over the snapshot it is given; callers take the snapshot.
package growth

import (
	"math"
	"sort"

	"pathwise/internal/types"
)

// Milestone names, in the order they are reached.
const (
	MilestoneInitiate  = "Initiate"
	MilestoneSymbiont  = "Symbiont"
	MilestoneConductor = "Conductor"
)

var milestoneOrder = []string{MilestoneInitiate, MilestoneSymbiont, MilestoneConductor}

const (
	pulseBase        = 40
	pulsePerEntry    = 5
	pulsePerSession  = 2
	pulseMax         = 100
	symbiontAbove    = 70
	conductorAbove   = 90
	neutralIndex     = 50
	resilienceMoat   = 75 // not derived from history yet
	maxTopKeywords   = 5
	adaptabilityStep = 5
	empathyStep      = 10
	techStep         = 5
)

// EngagementAlpha advances the profile's engagement pulse by one observed
// session. reflectionCount is the size of the reflection history.
func EngagementAlpha(profile types.Profile, reflectionCount int) types.EngagementPulse {
	if reflectionCount < 0 {
		reflectionCount = 0
	}
	streak := profile.Pulse.Streak + 1
	if streak < 1 {
		streak = 1
	}
	score := pulseBase + reflectionCount*pulsePerEntry + streak*pulsePerSession
	if score > pulseMax {
		score = pulseMax
	}

	reached := map[string]bool{MilestoneInitiate: true}
	for _, m := range profile.Pulse.Milestones {
		reached[m] = true
	}
	if score > symbiontAbove {
		reached[MilestoneSymbiont] = true
	}
	if score > conductorAbove {
		reached[MilestoneConductor] = true
	}
	milestones := make([]string, 0, len(milestoneOrder))
	for _, m := range milestoneOrder {
		if reached[m] {
			milestones = append(milestones, m)
		}
	}

	return types.EngagementPulse{
		Score:      score,
		Streak:     streak,
		Milestones: milestones,
	}
}

// Baseline is the neutral snapshot of an empty history.
func Baseline() types.GrowthMetrics {
	return types.GrowthMetrics{
		AnxietyLevel:       neutralIndex,
		ConfidenceLevel:    neutralIndex,
		ExcitementScore:    neutralIndex,
		AdaptabilityIndex:  neutralIndex,
		OrchestrationSkill: neutralIndex,
		EmpathyLeverage:    neutralIndex,
		EthicalJudgment:    neutralIndex,
		StrategicIntent:    neutralIndex,
		TechAwareness:      neutralIndex,
		ResilienceMoat:     neutralIndex,
		TopKeywords:        []string{},
		SentimentTrend:     types.TrendStable,
	}
}

// GrowthSnapshot projects the ordered reflection history onto the growth
// indices. Count-derived indices cap at 100; the rest scale the latest
// reading directly, so readings must already be in range.
func GrowthSnapshot(history []types.ReflectionRecord) types.GrowthMetrics {
	if len(history) == 0 {
		return Baseline()
	}
	first, latest := history[0], history[len(history)-1]

	var confidenceSum float64
	for _, h := range history {
		confidenceSum += h.ConfidenceLevel
	}

	return types.GrowthMetrics{
		AnxietyLevel:       latest.StressLevel * 10,
		ConfidenceLevel:    confidenceSum / float64(len(history)) * 10,
		ExcitementScore:    (latest.SentimentScore + 1) * 50,
		AdaptabilityIndex:  capped(len(history) * adaptabilityStep),
		OrchestrationSkill: latest.QualityScore,
		EmpathyLeverage:    capped(len(latest.IdentifiedSkills) * empathyStep),
		EthicalJudgment:    ethicalJudgment(latest.Grade),
		StrategicIntent:    latest.EnergyLevel * 10,
		TechAwareness:      capped((distinctSkills(history) + len(latest.Themes)) * techStep),
		ResilienceMoat:     resilienceMoat,
		TopKeywords:        TopKeywords(history, maxTopKeywords),
		SentimentTrend:     sentimentTrend(first, latest, len(history)),
	}
}

// TopKeywords counts every theme across the history and returns the n most
// frequent. Ties keep first-occurrence order.
func TopKeywords(history []types.ReflectionRecord, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, h := range history {
		for _, theme := range h.Themes {
			if _, ok := counts[theme]; !ok {
				order = append(order, theme)
			}
			counts[theme]++
		}
	}

	ranked := order
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []string{}
	}
	return ranked
}

// ConductorScore is the percentage of audited tasks the human keeps.
func ConductorScore(tasks []types.TaskClassification) float64 {
	if len(tasks) == 0 {
		return 0
	}
	human := 0
	for _, t := range tasks {
		if t.Assignee != types.AssigneeMachine {
			human++
		}
	}
	return float64(human) / float64(len(tasks)) * 100
}

func ethicalJudgment(grade string) float64 {
	switch grade {
	case "S":
		return 95
	case "A":
		return 85
	default:
		return 70
	}
}

func sentimentTrend(first, latest types.ReflectionRecord, n int) types.Trend {
	switch {
	case n == 1:
		return types.TrendStable
	case latest.SentimentScore > first.SentimentScore:
		return types.TrendImproving
	default:
		return types.TrendDeclining
	}
}

func distinctSkills(history []types.ReflectionRecord) int {
	seen := make(map[string]struct{})
	for _, h := range history {
		for _, s := range h.IdentifiedSkills {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}

// capped bounds a count-derived index at 100.
func capped(v int) float64 {
	return math.Min(100, float64(v))
}
