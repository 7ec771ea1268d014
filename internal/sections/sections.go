// Package sections splits a finished model response into named sections by
// matching fixed heading phrases. It is best-effort: a response that words
// its headings differently yields an empty Result and callers show the raw
// text instead.
package sections

import (
	"strings"
	"unicode"
)

// Section is one named part of a response and the heading phrases that
// introduce it.
type Section struct {
	Key     string
	Markers []string
}

// Layout is an ordered set of sections. When a heading matches more than
// one section, the first wins.
type Layout []Section

// Keys returns the section keys in layout order.
func (l Layout) Keys() []string {
	keys := make([]string, len(l))
	for i, s := range l {
		keys[i] = s.Key
	}
	return keys
}

// Result maps section keys to their body text.
type Result map[string]string

// Built-in layouts for the legal tasks. Markers cover the English headings
// and the Spanish headings the prompt templates ask for.
var (
	Summary = Layout{
		{Key: "key_points", Markers: []string{"Key Legal Points", "Puntos Clave"}},
		{Key: "decisions", Markers: []string{"Decisions and Judgments", "Decisiones"}},
		{Key: "notes", Markers: []string{"Additional Notes", "Notas Adicionales"}},
	}
	Research = Layout{
		{Key: "case_law", Markers: []string{"Relevant Case Law", "Jurisprudencia"}},
		{Key: "precedents", Markers: []string{"Precedent Analysis", "Análisis de precedentes"}},
		{Key: "conclusions", Markers: []string{"Conclusions", "Conclusiones"}},
	}
	Draft = Layout{
		{Key: "draft", Markers: []string{"Draft", "Borrador"}},
		{Key: "clauses", Markers: []string{"Suggested Clauses", "Cláusulas Sugeridas"}},
		{Key: "notes", Markers: []string{"Notes", "Notas"}},
	}
)

// Titles are display names for the built-in section keys.
var Titles = map[string]string{
	"key_points":  "Key Legal Points",
	"decisions":   "Decisions and Judgments",
	"notes":       "Additional Notes",
	"case_law":    "Relevant Case Law",
	"precedents":  "Precedent Analysis",
	"conclusions": "Conclusions",
	"draft":       "Draft",
	"clauses":     "Suggested Clauses",
}

// ByName returns a built-in layout by name.
func ByName(name string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "summary", "summarize":
		return Summary, true
	case "research":
		return Research, true
	case "draft":
		return Draft, true
	case "", "none":
		return nil, true
	default:
		return nil, false
	}
}

// PostProcess splits raw on blank lines and scans every line for a heading.
// A heading line opens its section; the lines after it, and following
// blocks, belong to that section until the next heading. Text before the
// first heading is dropped. It never fails: no match yields an empty Result.
func PostProcess(raw string, layout Layout) Result {
	result := Result{}
	if len(layout) == 0 {
		return result
	}

	var (
		current string
		bodies  = map[string][]string{}
		order   []string
	)
	for _, block := range splitBlocks(raw) {
		var segment []string
		flush := func() {
			text := strings.TrimRightFunc(strings.Join(segment, "\n"), unicode.IsSpace)
			if current != "" && strings.TrimSpace(text) != "" {
				bodies[current] = append(bodies[current], text)
			}
			segment = nil
		}

		for _, line := range strings.Split(block, "\n") {
			key, rest, ok := layout.heading(line)
			if !ok {
				segment = append(segment, line)
				continue
			}
			flush()
			current = key
			if _, seen := bodies[key]; !seen {
				order = append(order, key)
				bodies[key] = nil
			}
			if rest != "" {
				segment = append(segment, rest)
			}
		}
		flush()
	}

	for _, key := range order {
		result[key] = strings.Join(bodies[key], "\n\n")
	}
	return result
}

// heading reports whether line is a section heading and returns the text
// that follows the label. A markdown heading counts when it contains a
// marker anywhere. Otherwise the line must open with the marker, either as
// a bold span (**Marker...**) or as a label ending in a colon
// ("Marker: text" or "Marker words:"). Prose that mentions a marker word
// is not a heading.
func (l Layout) heading(line string) (key, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", "", false
	}

	if strings.HasPrefix(trimmed, "#") {
		for _, s := range l {
			for _, m := range s.Markers {
				if m != "" && indexFold(trimmed, m) >= 0 {
					return s.Key, "", true
				}
			}
		}
		return "", "", false
	}

	label, bold := strings.CutPrefix(trimmed, "**")
	label = strings.TrimLeft(label, " \t")
	for _, s := range l {
		for _, m := range s.Markers {
			if m == "" || len(label) < len(m) || !strings.EqualFold(label[:len(m)], m) {
				continue
			}
			after := label[len(m):]
			switch {
			case bold:
				_, tail, closed := strings.Cut(after, "**")
				if !closed {
					continue
				}
				return s.Key, strings.TrimSpace(strings.TrimLeft(tail, ": \t")), true
			case after == "", strings.HasSuffix(after, ":") && !strings.Contains(after[:len(after)-1], ":"):
				return s.Key, "", true
			case strings.HasPrefix(after, ":"):
				return s.Key, strings.TrimSpace(after[1:]), true
			}
		}
	}
	return "", "", false
}

// indexFold is strings.Index under Unicode case folding.
func indexFold(s, substr string) int {
	for i := range s {
		if i+len(substr) > len(s) {
			break
		}
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func splitBlocks(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var (
		blocks []string
		lines  []string
	)
	flush := func() {
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
			lines = nil
		}
	}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return blocks
}
