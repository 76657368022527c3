package extract

import "fmt"

// Model constants.
const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 2048
)

// systemPrompt is the system instruction for entity extraction.
const systemPrompt = `You are an entity extraction assistant for sanctions screening. You identify named entities in free text so each one can be checked against the OFAC SDN list.

Rules:
- Return ONLY persons, organizations, vessels, and aircraft. Do not return locations, dates, or sanctions program names.
- Report each entity's name exactly as it is written in the text. Do not normalize, translate, or expand abbreviations.
- Classify each entity as exactly one of: person, organization, vessel, aircraft.
- Respond with ONLY a valid JSON array. No prose before or after.
- Return [] if the text names no such entities.`

// BuildUserMessage constructs the user message embedding the document text.
func BuildUserMessage(text string) string {
	return fmt.Sprintf(`Extract all named entities from the following text.

Text:
%s

Respond with ONLY valid JSON in this format:
[
  {"name": "<entity name exactly as written>", "entity_type": "<person|organization|vessel|aircraft>"}
]`, text)
}
