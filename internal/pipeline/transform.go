// internal/pipeline/transform.go
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransformRule defines a single normalization rule applied to a raw
// extracted value.
type TransformRule struct {
	Type        string                 `yaml:"type" json:"type"`
	Pattern     string                 `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Replacement string                 `yaml:"replacement,omitempty" json:"replacement,omitempty"`
	Params      map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
}

// TransformList applies transformation rules in sequence.
type TransformList []TransformRule

var (
	spacesRe  = regexp.MustCompile(`\s+`)
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	numberRe  = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)
	yearRe    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	titleCaser = cases.Title(language.English)
)

// Apply runs every rule in order. A rule that produces an empty string
// short-circuits the chain; the caller treats empty as "no value", so
// there is nothing left to transform.
func (tl TransformList) Apply(ctx context.Context, input string) (string, error) {
	result := input
	for i, rule := range tl {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var err error
		result, err = rule.Apply(result)
		if err != nil {
			return "", fmt.Errorf("transform rule %d (%s): %w", i, rule.Type, err)
		}
		if result == "" {
			return "", nil
		}
	}
	return result, nil
}

// Apply applies a single transformation rule.
func (tr TransformRule) Apply(input string) (string, error) {
	switch tr.Type {
	case "trim":
		return strings.TrimSpace(input), nil

	case "normalize_spaces":
		return spacesRe.ReplaceAllString(strings.TrimSpace(input), " "), nil

	case "lowercase":
		return strings.ToLower(input), nil

	case "uppercase":
		return strings.ToUpper(input), nil

	case "title":
		return titleCaser.String(input), nil

	case "remove_html":
		return htmlTagRe.ReplaceAllString(input, ""), nil

	case "extract_number":
		// First numeric run, commas allowed ("12,345 votes" -> "12,345").
		return numberRe.FindString(input), nil

	case "extract_year":
		return yearRe.FindString(input), nil

	case "parse_int":
		cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
		val, err := strconv.Atoi(cleaned)
		if err != nil {
			return "", fmt.Errorf("parse_int: %w", err)
		}
		return strconv.Itoa(val), nil

	case "parse_float":
		cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
		val, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return "", fmt.Errorf("parse_float: %w", err)
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil

	case "regex":
		if tr.Pattern == "" {
			return "", fmt.Errorf("regex pattern is required")
		}
		re, err := regexp.Compile(tr.Pattern)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		if tr.Replacement != "" {
			return re.ReplaceAllString(input, tr.Replacement), nil
		}
		// No replacement: capture mode. First submatch when present,
		// otherwise the whole match.
		m := re.FindStringSubmatch(input)
		if m == nil {
			return "", nil
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil

	case "replace":
		if tr.Params == nil || tr.Params["old"] == nil || tr.Params["new"] == nil {
			return "", fmt.Errorf("replace requires old and new parameters")
		}
		oldVal := fmt.Sprintf("%v", tr.Params["old"])
		newVal := fmt.Sprintf("%v", tr.Params["new"])
		return strings.ReplaceAll(input, oldVal, newVal), nil

	case "prefix":
		if tr.Params == nil || tr.Params["value"] == nil {
			return "", fmt.Errorf("prefix requires value parameter")
		}
		return fmt.Sprintf("%v", tr.Params["value"]) + input, nil

	case "suffix":
		if tr.Params == nil || tr.Params["value"] == nil {
			return "", fmt.Errorf("suffix requires value parameter")
		}
		return input + fmt.Sprintf("%v", tr.Params["value"]), nil

	default:
		return "", fmt.Errorf("unknown transform type: %s", tr.Type)
	}
}

// Validate checks that the rule is well-formed without applying it.
func (tr TransformRule) Validate() error {
	switch tr.Type {
	case "trim", "normalize_spaces", "lowercase", "uppercase", "title",
		"remove_html", "extract_number", "extract_year", "parse_int", "parse_float":
		return nil
	case "regex":
		if tr.Pattern == "" {
			return fmt.Errorf("regex transform requires a pattern")
		}
		if _, err := regexp.Compile(tr.Pattern); err != nil {
			return fmt.Errorf("regex transform: %w", err)
		}
		return nil
	case "replace":
		if tr.Params == nil || tr.Params["old"] == nil || tr.Params["new"] == nil {
			return fmt.Errorf("replace transform requires old and new parameters")
		}
		return nil
	case "prefix", "suffix":
		if tr.Params == nil || tr.Params["value"] == nil {
			return fmt.Errorf("%s transform requires value parameter", tr.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown transform type: %s", tr.Type)
	}
}

// ParseInt converts a possibly comma-grouped string to an int.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// ParseFloat converts a possibly comma-grouped string to a float64.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

// FirstNumber extracts the first decimal run from surrounding text,
// e.g. "Rated 7.4/10" -> 7.4.
func FirstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := ParseFloat(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstYear extracts the first 19xx/20xx run from surrounding text.
func FirstYear(s string) (int, bool) {
	m := yearRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}
