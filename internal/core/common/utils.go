package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object found in response")

// ParseJSON unmarshals the first {...} span of an LLM response into T.
// Markdown fences and prose around the object are ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end < start {
		return zero, ErrNoJSON
	}
	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

// ParseInt reads a loosely typed JSON number. Models return numbers as
// numbers, quoted strings ("2,000", "+1000") or null; anything unreadable
// yields nil.
func ParseInt(v any) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		n := int(math.Round(val))
		return &n
	case json.Number:
		return ParseInt(string(val))
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		cleaned = strings.TrimPrefix(cleaned, "+")
		if cleaned == "" {
			return nil
		}
		if n, err := strconv.Atoi(cleaned); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return ParseInt(f)
		}
		return nil
	default:
		return nil
	}
}

// ParseString reads a loosely typed JSON value as text. Numbers are
// formatted without a trailing ".0"; null gives "".
func ParseString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
