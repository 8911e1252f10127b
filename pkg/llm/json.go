package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a response holds no parseable JSON of the requested shape.
var ErrNoJSON = errors.New("no valid JSON found in response")

var (
	thinkTagPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)
	fencePattern    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")
)

// ExtractJSONObject returns the JSON object embedded in an LLM reply.
// It tries a fenced code block, then the first balanced {...}, then the span
// from the first '{' to the last '}'.
func ExtractJSONObject(response string) (string, error) {
	return extract(response, '{', '}')
}

// ExtractJSONArray is ExtractJSONObject for a top-level array.
func ExtractJSONArray(response string) (string, error) {
	return extract(response, '[', ']')
}

// ExtractJSON returns whichever of an object or array appears first.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")
	obj := strings.IndexByte(cleaned, '{')
	arr := strings.IndexByte(cleaned, '[')
	if arr >= 0 && (obj < 0 || arr < obj) {
		if s, err := ExtractJSONArray(cleaned); err == nil {
			return s, nil
		}
	}
	return ExtractJSONObject(cleaned)
}

func extract(response string, open, close byte) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	for _, m := range fencePattern.FindAllStringSubmatch(cleaned, -1) {
		body := strings.TrimSpace(m[1])
		if len(body) > 0 && body[0] == open && json.Valid([]byte(body)) {
			return body, nil
		}
	}

	if s, ok := balanced(cleaned, open, close); ok && json.Valid([]byte(s)) {
		return s, nil
	}

	first := strings.IndexByte(cleaned, open)
	last := strings.LastIndexByte(cleaned, close)
	if first >= 0 && last > first {
		if s := cleaned[first : last+1]; json.Valid([]byte(s)) {
			return s, nil
		}
	}

	return "", ErrNoJSON
}

// balanced finds the first balanced structure starting at open, skipping
// brackets inside string literals.
func balanced(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into T.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return result, nil
}
