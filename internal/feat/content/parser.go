package content

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

// ParseHybrid parses a frontmatter+body file into an entry map. The body
// ends up under bodyField. It never fails: malformed YAML falls back to a
// loose line scanner, and input without a header/body boundary becomes the
// body as-is.
func ParseHybrid(raw, bodyField string) map[string]any {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	parts := strings.Split(normalized, delimiter)
	if len(parts) < 3 {
		return map[string]any{bodyField: raw}
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &frontmatter); err != nil {
		return parseLoose(parts[1], bodyField)
	}

	entry := make(map[string]any, len(frontmatter)+1)
	for k, v := range frontmatter {
		entry[k] = NormalizeDates(v)
	}
	// The body may itself contain the delimiter sequence, so rejoin the
	// remaining segments instead of taking only the first.
	entry[bodyField] = strings.TrimSpace(strings.Join(parts[2:], delimiter))
	return entry
}

var (
	looseKeyRe  = regexp.MustCompile(`^([A-Za-z0-9_-]+):\s*$`)
	looseTextRe = regexp.MustCompile(`^\s*-\s*text:\s*(.*)$`)
)

// parseLoose recovers what it can from a malformed frontmatter block
// (hand-edited files with duplicated keys are the usual culprit). It only
// understands value-less top-level keys followed by "- text:" list items;
// anything else in the block is dropped.
func parseLoose(raw, bodyField string) map[string]any {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	data := map[string]any{}
	currentKey := ""

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := looseKeyRe.FindStringSubmatch(trimmed); m != nil && len(line) == len(trimmed) {
			// "children" is a structural artifact of the document tree,
			// never a top-level field.
			if m[1] != "children" {
				currentKey = m[1]
				if _, ok := data[currentKey]; !ok {
					data[currentKey] = []any{}
				}
			}
			continue
		}
		if m := looseTextRe.FindStringSubmatch(line); m != nil && currentKey != "" {
			nodes := data[currentKey].([]any)
			data[currentKey] = append(nodes, map[string]any{
				"type": "paragraph",
				"children": []any{
					map[string]any{"text": m[1]},
				},
			})
		}
	}

	if len(data) == 0 {
		return map[string]any{bodyField: strings.TrimSpace(raw)}
	}
	return data
}

// NormalizeDates recursively converts date values to plain YYYY-MM-DD
// strings. Publication dates are calendar dates, never timestamps.
// Total over arbitrary input; non-date values pass through unchanged.
func NormalizeDates(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = NormalizeDates(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = NormalizeDates(e)
		}
		return out
	default:
		return value
	}
}

// ParseFile dispatches on extension: .yaml/.yml files are whole-document
// YAML (structured-only singletons), everything else is the hybrid format.
// A broken YAML file yields an empty entry rather than an error.
func ParseFile(path, raw, bodyField string) map[string]any {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var data map[string]any
		if err := yaml.Unmarshal([]byte(raw), &data); err != nil || data == nil {
			return map[string]any{}
		}
		normalized := make(map[string]any, len(data))
		for k, v := range data {
			normalized[k] = NormalizeDates(v)
		}
		return normalized
	}
	return ParseHybrid(raw, bodyField)
}

// parseEntryDate interprets a publish-date field for sorting. Missing or
// unparseable dates sort as the zero time (oldest), never dropped.
func parseEntryDate(value any) time.Time {
	s, ok := value.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
