package generation

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// =============================================================================
// RESPONSE SCHEMAS
// =============================================================================
//
// Each schema mirrors the JSON tags of the matching type in internal/types.
// Ungrounded calls hand the schema to the provider as a structured-output
// constraint; grounded calls cannot combine search with a response schema, so
// the schema is rendered into the prompt instead.

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func integer(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: desc}
}

func arr(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func strList(desc string) *genai.Schema {
	s := arr(str(""))
	s.Description = desc
	return s
}

func obj(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func freeform(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Description: desc + " (free-form JSON)"}
}

var schemas = map[SchemaName]*genai.Schema{
	SchemaAssessment: obj(map[string]*genai.Schema{
		"riskScore":            num("automation risk, 0-100"),
		"category":             str("risk category label"),
		"vulnerabilities":      strList("tasks or skills most exposed to automation"),
		"strengths":            strList(""),
		"weaknesses":           strList(""),
		"futureReadinessScore": num("0-100"),
		"aiCollabScore":        num("0-100"),
		"trajectories":         freeform("possible career trajectories"),
		"resumeAnalysis":       freeform("resume analysis"),
		"radarThreats":         freeform("emerging threats"),
		"positioning":          freeform("market positioning"),
	}, "riskScore", "category", "vulnerabilities", "strengths", "weaknesses", "futureReadinessScore", "aiCollabScore"),

	SchemaRoadmap: obj(map[string]*genai.Schema{
		"title": str(""),
		"phases": arr(obj(map[string]*genai.Schema{
			"name":       str(""),
			"timeframe":  str(""),
			"goals":      strList(""),
			"milestones": strList(""),
		}, "name", "timeframe", "goals")),
	}, "title", "phases"),

	SchemaActionPlan: obj(map[string]*genai.Schema{
		"summary": str(""),
		"actions": arr(obj(map[string]*genai.Schema{
			"title":       str(""),
			"description": str(""),
			"priority":    {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
			"category":    str(""),
			"dueInDays":   integer(""),
		}, "title", "description", "priority")),
	}, "summary", "actions"),

	SchemaLearningResources: arr(obj(map[string]*genai.Schema{
		"title":          str(""),
		"provider":       str(""),
		"url":            str(""),
		"format":         str("course, book, video, project"),
		"skill":          str("skill the resource builds"),
		"estimatedHours": num(""),
	}, "title")),

	SchemaMentors: arr(obj(map[string]*genai.Schema{
		"name":       str(""),
		"title":      str(""),
		"expertise":  strList(""),
		"matchScore": num("0-100"),
		"rationale":  str(""),
	}, "name", "title", "expertise", "matchScore")),

	SchemaVision: obj(map[string]*genai.Schema{
		"headline":  str(""),
		"narrative": str(""),
		"horizon":   str(""),
		"pillars":   strList(""),
	}, "headline", "narrative"),

	SchemaCollabSkills: obj(map[string]*genai.Schema{
		"tasks": arr(obj(map[string]*genai.Schema{
			"task":      str(""),
			"assignee":  {Type: genai.TypeString, Enum: []string{"human", "machine"}},
			"rationale": str(""),
		}, "task", "assignee")),
		"humanEdge": strList("skills that keep the human in the loop"),
		"summary":   str(""),
	}, "tasks"),

	SchemaMarketSignals: arr(obj(map[string]*genai.Schema{
		"title":     str(""),
		"summary":   str(""),
		"impact":    {Type: genai.TypeString, Enum: []string{"positive", "negative", "neutral"}},
		"relevance": num("0-100"),
	}, "title", "summary", "impact")),

	SchemaNotifications: arr(obj(map[string]*genai.Schema{
		"title":    str(""),
		"message":  str(""),
		"kind":     str(""),
		"priority": {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
	}, "title", "message")),

	SchemaStrategicTip: obj(map[string]*genai.Schema{
		"title": str(""),
		"body":  str(""),
		"focus": str(""),
	}, "title", "body"),

	SchemaVoiceReflection: obj(map[string]*genai.Schema{
		"sentimentScore":   num("-1 to 1"),
		"sentimentLabel":   str(""),
		"stressLevel":      num("0-10"),
		"confidenceLevel":  num("0-10"),
		"energyLevel":      num("0-10"),
		"mood":             str(""),
		"qualityScore":     num("0-100"),
		"grade":            {Type: genai.TypeString, Enum: []string{"S", "A", "B", "C"}},
		"identifiedSkills": strList(""),
		"themes":           strList("short theme labels"),
		"summary":          str(""),
	}, "sentimentScore", "stressLevel", "confidenceLevel", "energyLevel", "qualityScore", "grade", "identifiedSkills", "themes"),

	SchemaDurability: obj(map[string]*genai.Schema{
		"years": num("years until the skill is largely automated"),
	}, "years"),
}

// SchemaFor returns the provider schema for name.
func SchemaFor(name SchemaName) (*genai.Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}

// describeSchema renders a schema as JSON for prompt embedding.
func describeSchema(name SchemaName) (string, error) {
	s, err := SchemaFor(name)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to render schema %s: %w", name, err)
	}
	return string(data), nil
}
