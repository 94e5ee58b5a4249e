package filter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Match evaluates p against an item's metadata. Comparisons are
// case-insensitive and whitespace-trimmed.
func Match(p Predicate, metadata map[string]interface{}) bool {
	switch v := p.(type) {
	case nil:
		return true
	case Eq:
		raw, ok := metadata[v.Field]
		if !ok || raw == nil {
			return false
		}
		return equalFold(scalar(raw), v.Value)
	case Contains:
		for _, item := range ListValues(metadata[v.Field]) {
			if equalFold(item, v.Value) {
				return true
			}
		}
		return false
	case Not:
		return !Match(v.Term, metadata)
	case And:
		for _, t := range v.Terms {
			if !Match(t, metadata) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ListValues reads a list attribute that may be a native list, a JSON-encoded
// list or a comma separated string.
func ListValues(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalar(item))
		}
		return out
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var decoded []interface{}
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return ListValues(decoded)
			}
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{scalar(v)}
	}
}

func scalar(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
