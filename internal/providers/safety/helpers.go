package safety

import (
	"encoding/json"
	"errors"
	"strings"
)

// parseModelPayload decodes the JSON object embedded in a model reply,
// tolerating code fences and surrounding prose.
func parseModelPayload[T any](raw string) (T, error) {
	var decoded T
	cleaned := extractJSONObject(raw)
	if cleaned == "" {
		return decoded, errors.New("empty payload")
	}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return decoded, err
	}
	return decoded, nil
}

func extractJSONObject(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
