// Package jsonutil tolerates the type drift LLMs introduce into JSON answers,
// such as quoted numbers or numeric strings.
package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue renders raw as a string whatever its JSON type.
// Null and empty input give "". Objects and arrays come back verbatim.
func FlexibleStringValue(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	return string(raw)
}

// FlexibleIntValue reads raw as an integer. Numbers are rounded, and strings
// such as "8" or "7.5/10" use their leading number. ok is false when no
// number can be found.
func FlexibleIntValue(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f)), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '-' && end == 0 || s[end] == '.' || s[end] >= '0' && s[end] <= '9') {
		end++
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
