package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestFailure_IsMatchesKindAndCause(t *testing.T) {
	cause := errors.New("503 from provider")
	err := fmt.Errorf("run: %w", NewFailure(KindSynthesis, "synthesis.roadmap", cause))

	assert.ErrorIs(t, err, ErrSynthesis)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, KindSynthesis, KindOf(err))
	assert.Equal(t, "run: synthesis.roadmap: synthesis failure: 503 from provider", err.Error())
}

func TestFailure_NestedKeepsOuterKind(t *testing.T) {
	inner := NewFailure(KindMalformedResponse, "vision", errors.New("unexpected EOF"))
	outer := NewFailure(KindSynthesis, "synthesis.vision", inner)

	assert.Equal(t, KindSynthesis, KindOf(outer))
	assert.ErrorIs(t, outer, ErrMalformedResponse)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FailureKind(""), KindOf(nil))
	assert.Equal(t, KindSynthesis, KindOf(errors.New("plain")))
	assert.Equal(t, KindValidation, KindOf(NewFailure(KindValidation, "x", nil)))
	assert.Equal(t, "x: validation failure", NewFailure(KindValidation, "x", nil).Error())
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfile_Normalize(t *testing.T) {
	p := Profile{
		OwnerID: " u1 ",
		Role:    "  Analyst",
		Skills:  []string{"SQL", " sql", "", "Python ", "  "},
	}.Normalize()

	assert.Equal(t, "u1", p.OwnerID)
	assert.Equal(t, "Analyst", p.Role)
	assert.Equal(t, []string{"SQL", "Python"}, p.Skills)
}

func TestProfile_Validate(t *testing.T) {
	valid := Profile{OwnerID: "u1", Role: "Analyst", Industry: "Retail", Skills: []string{"SQL"}, PivotWillingness: 10}
	require.NoError(t, valid.Validate())

	cases := map[string]func(p *Profile){
		"owner":     func(p *Profile) { p.OwnerID = " " },
		"role":      func(p *Profile) { p.Role = "" },
		"industry":  func(p *Profile) { p.Industry = "" },
		"skills":    func(p *Profile) { p.Skills = nil },
		"years":     func(p *Profile) { p.YearsExperience = -1 },
		"pivot low": func(p *Profile) { p.PivotWillingness = -0.5 },
		"pivot hi":  func(p *Profile) { p.PivotWillingness = 10.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			p.Skills = append([]string(nil), valid.Skills...)
			mutate(&p)
			err := p.Validate()
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestEngagementPulse_HasMilestone(t *testing.T) {
	p := EngagementPulse{Milestones: []string{"Initiate"}}
	assert.True(t, p.HasMilestone("Initiate"))
	assert.False(t, p.HasMilestone("Conductor"))
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestDocument_Navigation(t *testing.T) {
	var a Assessment
	require.NoError(t, json.Unmarshal([]byte(`{
		"riskScore": 70,
		"trajectories": [{"title": "Data steward", "fit": "0.8"}, {"title": "Ops lead", "fit": 0.6}],
		"positioning": {"headline": "Bridge", "remote": true}
	}`), &a))

	assert.Equal(t, 2, a.Trajectories.Len())
	assert.Equal(t, "Data steward", a.Trajectories.Get("0", "title").String())
	fit, ok := a.Trajectories.Get("0", "fit").Float()
	assert.True(t, ok)
	assert.Equal(t, 0.8, fit)
	assert.Equal(t, "true", a.Positioning.Get("remote").String())
	assert.True(t, a.Trajectories.Get("5", "title").IsZero())
	assert.True(t, a.Positioning.Get("headline", "x").IsZero())
	assert.True(t, a.RadarThreats.IsZero())
	assert.Equal(t, `{"headline":"Bridge","remote":true}`, a.Positioning.String())
}

func TestDocument_RoundTrip(t *testing.T) {
	in := Assessment{ID: "a1", Positioning: NewDocument(map[string]interface{}{"k": "v"})}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Assessment
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "v", out.Positioning.Get("k").String())
	assert.True(t, out.ResumeAnalysis.IsZero())
}

func TestDocument_RejectsInvalidJSON(t *testing.T) {
	var d Document
	assert.Error(t, d.UnmarshalJSON([]byte(`{"open":`)))
	require.NoError(t, d.UnmarshalJSON([]byte(` null `)))
	assert.True(t, d.IsZero())
}
