// Package render fills counter markers in served HTML.
package render

import (
	"strings"

	"github.com/haukened/weave-edge/internal/edge/domain"
)

type Renderer struct {
	formatter *domain.Formatter
}

func NewRenderer(formatter *domain.Formatter) *Renderer {
	return &Renderer{formatter: formatter}
}

// Render replaces every marker in html with its value for rec. All markers
// are matched in one left-to-right pass and replacements are never
// rescanned, so a value can not be substituted twice. Anything that is not
// an exact marker, including a half-written one, is left as is.
func (r *Renderer) Render(html string, rec domain.StatsRecord) string {
	if !strings.Contains(html, "{{") {
		return html
	}
	return r.replacer(rec).Replace(html)
}

// Tokens returns the marker table for rec, keyed by marker text.
func (r *Renderer) Tokens(rec domain.StatsRecord) map[string]string {
	subs := r.formatter.Substitutions(rec)
	out := make(map[string]string, len(subs))
	for _, s := range subs {
		out[string(s.Token)] = s.Value
	}
	return out
}

func (r *Renderer) replacer(rec domain.StatsRecord) *strings.Replacer {
	subs := r.formatter.Substitutions(rec)
	pairs := make([]string, 0, 2*len(subs))
	for _, s := range subs {
		pairs = append(pairs, string(s.Token), s.Value)
	}
	return strings.NewReplacer(pairs...)
}
