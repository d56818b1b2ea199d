package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"pathwise/internal/types"
)

// Decode parses a response body into T. Any parse problem is a
// MalformedResponse failure; callers decide whether to degrade or abort.
func Decode[T any](task Task, resp *Response) (T, error) {
	var out T
	if resp == nil || len(resp.Body) == 0 {
		return out, types.NewFailure(types.KindMalformedResponse, string(task), fmt.Errorf("empty response"))
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, types.NewFailure(types.KindMalformedResponse, string(task), err)
	}
	return out, nil
}

// ExtractJSON pulls the first complete JSON object or array out of model text.
// It tolerates markdown code fences and prose around the payload.
func ExtractJSON(text string) (json.RawMessage, bool) {
	text = stripMarkdownCodeFences(text)

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return nil, false
	}

	// Find matching closing bracket, ignoring brackets inside strings.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, false
				}
				return json.RawMessage(candidate), true
			}
		}
	}
	return nil, false
}

// stripMarkdownCodeFences removes markdown code fence wrapping from a string.
func stripMarkdownCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		firstNewline := strings.Index(trimmed, "\n")
		if firstNewline != -1 {
			lastFence := strings.LastIndex(trimmed, "```")
			if lastFence > firstNewline {
				return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
			}
		}
	}
	return trimmed
}
