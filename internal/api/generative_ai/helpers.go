package generativeAI

import (
	"strings"
)

// cleanJSONResponse strips markdown fences and any prose around the first
// JSON array or object in the model output.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	open, closing := "[", "]"
	arr := strings.Index(response, "[")
	obj := strings.Index(response, "{")
	if arr == -1 || (obj != -1 && obj < arr) {
		open, closing = "{", "}"
	}

	start := strings.Index(response, open)
	end := strings.LastIndex(response, closing)
	if start == -1 || end <= start {
		return response
	}
	return response[start : end+1]
}
