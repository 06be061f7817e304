package curator

import (
	"fmt"
	"regexp"
	"strings"
)

var fenceRegexp = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// extractObject finds the JSON object in a model reply. Models sometimes
// wrap the object in a markdown code fence or surround it with prose.
func extractObject(content string) (string, error) {
	if m := fenceRegexp.FindStringSubmatch(content); len(m) > 1 {
		trimmed := strings.TrimSpace(m[1])
		if strings.HasPrefix(trimmed, "{") {
			content = trimmed
		}
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("malformed JSON object in response")
}
