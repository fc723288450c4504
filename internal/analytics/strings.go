package analytics

import (
	"math"
	"strconv"
	"strings"
)

// maxBucketLabelLength caps bucket labels for display safety.
const maxBucketLabelLength = 80

// scaleValue extracts a valid scale answer from a raw value. Only whole
// numbers in [1,5] count; everything else (non-numeric strings, NaN,
// out-of-range values) is treated as absent.
func scaleValue(raw interface{}) (float64, bool) {
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int32:
		v = float64(t)
	case int64:
		v = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v != math.Trunc(v) || v < 1 || v > 5 {
		return 0, false
	}
	return v, true
}

// stringifyScalar renders a single raw answer value as a trimmed string.
// Unsupported types collapse to "".
func stringifyScalar(raw interface{}) string {
	switch t := raw.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return stringifyScalar(float64(t))
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// answerStrings flattens a raw answer into its individual non-empty string
// values. Checkbox answers arrive as arrays; everything else as scalars.
func answerStrings(raw interface{}) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case []string:
		var out []string
		for _, v := range t {
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []interface{}:
		var out []string
		for _, v := range t {
			if s := stringifyScalar(v); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringifyScalar(raw); s != "" {
			return []string{s}
		}
		return nil
	}
}

// truncateLabel trims a label to maxBucketLabelLength runes.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxBucketLabelLength {
		return s
	}
	return string(runes[:maxBucketLabelLength])
}

// titleCaseKey converts a snake/kebab case attribute key into a display
// label, e.g. "grade_level" becomes "Grade Level".
func titleCaseKey(key string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	words := strings.Fields(replaced)
	for i, w := range words {
		runes := []rune(w)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

// compareLabels orders bucket and dimension labels: case-insensitive first,
// falling back to a case-sensitive comparison so the order is total.
// Ordering is deliberately byte-wise rather than collator-based: Indonesian
// labels sort identically either way, and the output stays stable across
// environments without locale tables.
func compareLabels(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(a, b)
}
