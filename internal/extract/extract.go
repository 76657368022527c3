// Package extract pulls screenable entities out of free-form documents
// using Claude. Extracted names feed the same matcher as single-name
// screening queries.
package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sanctions-cli/pkg/anthropic"
)

// Entity is a named entity found in a document.
type Entity struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
}

// entityTypes is the closed set of types the extractor may return.
var entityTypes = map[string]bool{
	"person":       true,
	"organization": true,
	"vessel":       true,
	"aircraft":     true,
}

// Extractor extracts named entities from free text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// ClaudeExtractor implements Extractor using the Anthropic messages API.
type ClaudeExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates a ClaudeExtractor. If model is empty, the default is used.
func New(client anthropic.Client, model string) *ClaudeExtractor {
	if model == "" {
		model = DefaultModel
	}
	return &ClaudeExtractor{
		client:    client,
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// SetMaxTokens overrides the response token budget for extraction calls.
// Non-positive values keep the default.
func (e *ClaudeExtractor) SetMaxTokens(n int) {
	if n > 0 {
		e.maxTokens = int64(n)
	}
}

// Warm sends a primer request so subsequent extractions hit the prompt cache.
func (e *ClaudeExtractor) Warm(ctx context.Context) error {
	req := anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: 16,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: "Acknowledge receipt of the instructions."},
		},
	}

	resp, err := anthropic.PrimerRequest(ctx, e.client, req)
	if err != nil {
		return err
	}

	resp.Usage.LogCost(e.model, "extract_primer")
	return nil
}

// Extract returns the named entities found in text. Entities outside the
// closed type set are dropped, and duplicates by (name, entity_type) are
// collapsed to the first occurrence.
func (e *ClaudeExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	req := anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildUserMessage(text)},
		},
	}

	resp, err := e.client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "extract: entity extraction")
	}

	resp.Usage.LogCost(e.model, "entity_extraction")

	cleaned := cleanJSON(extractText(resp))

	var parsed []Entity
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, eris.Wrap(err, "extract: parse extraction JSON")
	}

	seen := make(map[string]bool)
	out := make([]Entity, 0, len(parsed))
	for _, ent := range parsed {
		ent.Name = strings.TrimSpace(ent.Name)
		ent.EntityType = strings.ToLower(strings.TrimSpace(ent.EntityType))
		if ent.Name == "" || !entityTypes[ent.EntityType] {
			continue
		}
		key := strings.ToLower(ent.Name) + "|" + ent.EntityType
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ent)
	}

	return out, nil
}

// extractText concatenates all text content blocks.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences and extracts the JSON array.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
