// Package llm provides the model clients backing the analysis agents.
//
// Two wire implementations exist: an OpenAI-compatible chat completions
// client (covers the openai and zai providers) and a Gemini client on the
// google genai SDK. The offline client makes the pipeline usable without a
// credential; agents detect ErrOffline and synthesize their verdicts from
// the check results instead.
package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Client is the interface the analysis agents program against.
type Client interface {
	// Complete sends a system and user prompt and returns the raw model
	// reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name identifies the backing provider for logging.
	Name() string
}

// ErrOffline is returned by the offline client. Agents treat it as the
// signal to fall back to deterministic synthesis.
var ErrOffline = errors.New("llm: offline mode, no model configured")

// Offline is a Client that always returns ErrOffline.
type Offline struct{}

func (Offline) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", ErrOffline
}

func (Offline) Name() string { return "offline" }

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*")

// ExtractJSON pulls the first JSON object out of a model reply. Models
// frequently wrap structured output in markdown fences or prose.
func ExtractJSON(s string) string {
	s = jsonFenceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
