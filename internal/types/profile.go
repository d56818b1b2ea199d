// Package types holds the shared data model: the user profile, the synthesized
// artifacts, the append-only observation history and the derived indices.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the career profile owned by one user.
type Profile struct {
	OwnerID          string   `json:"ownerId"`
	Role             string   `json:"role"`
	Industry         string   `json:"industry"`
	YearsExperience  int      `json:"yearsExperience"`
	Skills           []string `json:"skills"`
	Fears            string   `json:"fears,omitempty"`
	Expectations     string   `json:"expectations,omitempty"`
	PivotWillingness float64  `json:"pivotWillingness"` // 0-10

	// Reflection-driven state.
	Pulse  EngagementPulse `json:"pulse"`
	Growth *GrowthMetrics  `json:"growth,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxPivotWillingness is the upper bound of the pivot-willingness scale.
const MaxPivotWillingness = 10

// Normalize trims text fields and drops blank or duplicate skills,
// keeping first-occurrence order.
func (p Profile) Normalize() Profile {
	p.OwnerID = strings.TrimSpace(p.OwnerID)
	p.Role = strings.TrimSpace(p.Role)
	p.Industry = strings.TrimSpace(p.Industry)
	p.Fears = strings.TrimSpace(p.Fears)
	p.Expectations = strings.TrimSpace(p.Expectations)

	seen := make(map[string]bool, len(p.Skills))
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, s)
	}
	p.Skills = skills
	return p
}

// Validate reports every missing or out-of-range required field as a single
// validation failure.
func (p Profile) Validate() error {
	var problems []string
	if strings.TrimSpace(p.OwnerID) == "" {
		problems = append(problems, "owner id is required")
	}
	if strings.TrimSpace(p.Role) == "" {
		problems = append(problems, "role is required")
	}
	if strings.TrimSpace(p.Industry) == "" {
		problems = append(problems, "industry is required")
	}
	if len(p.Skills) == 0 {
		problems = append(problems, "at least one skill is required")
	}
	if p.YearsExperience < 0 {
		problems = append(problems, "years of experience must not be negative")
	}
	if p.PivotWillingness < 0 || p.PivotWillingness > MaxPivotWillingness {
		problems = append(problems, fmt.Sprintf("pivot willingness must be within [0, %d]", MaxPivotWillingness))
	}
	if len(problems) == 0 {
		return nil
	}
	return NewFailure(KindValidation, "profile.validate", fmt.Errorf("%s", strings.Join(problems, "; ")))
}

// EngagementPulse is a rolling activity score plus a session streak.
type EngagementPulse struct {
	Score      int       `json:"score"`
	Streak     int       `json:"streak"`
	Milestones []string  `json:"milestones,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// HasMilestone reports whether the named milestone was reached.
func (p EngagementPulse) HasMilestone(name string) bool {
	for _, m := range p.Milestones {
		if m == name {
			return true
		}
	}
	return false
}

// Notification is an ephemeral strategic alert derived from profile and assessment.
type Notification struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// ProfileRecord is what the profiles collection holds per owner: the profile
// and, once a synthesis run has reached Ready, the assessment it produced.
type ProfileRecord struct {
	Profile    Profile     `json:"profile"`
	Assessment *Assessment `json:"assessment,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
