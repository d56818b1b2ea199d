package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"pathwise/internal/logging"
	"pathwise/internal/types"
)

// =============================================================================
// GOOGLE GENAI CONTENT CLIENT
// =============================================================================

const systemPrompt = "You are a career strategist specialised in how AI changes work. " +
	"Answer only with JSON that matches the requested schema. Do not add commentary."

// instructions holds the task line of each prompt.
var instructions = map[Task]string{
	TaskAssessment:        "Assess how exposed this professional is to AI automation and how ready they are for the next five years.",
	TaskRoadmap:           "Build a phased transition roadmap for this professional based on the profile and assessment.",
	TaskActionPlan:        "List the concrete actions this professional should take in the next 90 days.",
	TaskLearningResources: "Recommend learning resources that close the gaps named in the assessment.",
	TaskMentorMatches:     "Describe mentor profiles that would best accelerate this professional.",
	TaskVision:            "Write a long-horizon career vision for this professional.",
	TaskCollabSkills:      "Classify each task as one the human should keep or one to delegate to a machine.",
	TaskMarketSignals:     "Find current market signals relevant to this professional's role and industry.",
	TaskStrategicAlerts:   "Write two short strategic alerts this professional should act on.",
	TaskStrategicTip:      "Give one short strategic tip for this week.",
	TaskVoiceReflection:   "Analyse this spoken career reflection: sentiment, stress, confidence, energy, skills and themes.",
	TaskSkillDurability:   "Estimate how many years this skill stays valuable before it is largely automated for this role.",
}

// GeminiConfig holds configuration for the Gemini content client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:      apiKey,
		Model:       "gemini-2.5-flash",
		Timeout:     90 * time.Second,
		Temperature: 0.4,
	}
}

// GeminiClient implements Client on Google's Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	temperature float32
}

// NewGeminiClient creates a new Gemini content client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultGeminiConfig(cfg.APIKey).Model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the client name.
func (c *GeminiClient) Name() string {
	return fmt.Sprintf("genai:%s", c.model)
}

// Generate implements Client.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       &temperature,
	}
	if req.Grounded {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else {
		schema, err := SchemaFor(req.Schema)
		if err != nil {
			return nil, err
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema
	}

	logging.GenerationDebug("GenerateContent task=%s model=%s grounded=%v prompt_len=%d", req.Task, c.model, req.Grounded, len(prompt))

	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate %s failed: %w", req.Task, err)
	}

	text := responseText(result)
	body, ok := ExtractJSON(text)
	if !ok {
		return nil, types.NewFailure(types.KindMalformedResponse, string(req.Task),
			fmt.Errorf("no JSON payload in response (%d chars)", len(text)))
	}

	return &Response{Body: body, Sources: groundingSources(result)}, nil
}

func buildPrompt(req Request) (string, error) {
	instruction, ok := instructions[req.Task]
	if !ok {
		return "", fmt.Errorf("unknown task %q", req.Task)
	}
	subject, err := json.Marshal(req.Subject)
	if err != nil {
		return "", fmt.Errorf("failed to encode subject for %s: %w", req.Task, err)
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\nSubject:\n")
	sb.Write(subject)
	if req.Grounded {
		schema, err := describeSchema(req.Schema)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n\nRespond with a single JSON value matching this schema:\n")
		sb.WriteString(schema)
	}
	return sb.String(), nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// groundingSources collects web sources, dropping duplicates by URI.
func groundingSources(resp *genai.GenerateContentResponse) []types.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	seen := make(map[string]bool)
	var sources []types.GroundingSource
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		sources = append(sources, types.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
