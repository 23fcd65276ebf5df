package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/haukened/weave-edge/internal/edge/domain"
)

func newRenderer() *Renderer {
	return NewRenderer(domain.NewFormatter(language.AmericanEnglish))
}

func record(t *testing.T, doc string) domain.StatsRecord {
	t.Helper()
	rec, err := domain.DecodeStats([]byte(doc))
	if err != nil {
		t.Fatalf("decode %s: %v", doc, err)
	}
	return rec
}

func TestRender_AllTokens(t *testing.T) {
	r := newRenderer()
	html := `<p>{{CONFIGS}} configs ({{CONFIGS_SHORT}}) from {{THEMES}} themes x {{MOTIONS}} motions, {{JS_BYTES}} bytes of JS</p>`

	got := r.Render(html, record(t, `{"themes":15,"motions":55}`))

	assert.Equal(t, `<p>825+ configs (0.8K+) from 15 themes x 55 motions, 0 bytes of JS</p>`, got)
}

func TestRender_EmptyStats(t *testing.T) {
	r := newRenderer()
	html := `{{CONFIGS}}|{{CONFIGS_SHORT}}|{{THEMES}}|{{MOTIONS}}|{{JS_BYTES}}`

	assert.Equal(t, `-|-|-|-|0`, r.Render(html, domain.EmptyStats()))
}

func TestRender_ExplicitConfigs(t *testing.T) {
	r := newRenderer()
	got := r.Render(`{{CONFIGS}} / {{CONFIGS_SHORT}}`, record(t, `{"configs":1234567,"themes":1,"motions":1}`))
	assert.Equal(t, `1,234,567+ / 1234.6K+`, got)
}

func TestRender_RepeatedTokens(t *testing.T) {
	r := newRenderer()
	html := strings.Repeat(`<b>{{THEMES}}</b>`, 4)

	got := r.Render(html, record(t, `{"themes":7}`))

	assert.Equal(t, strings.Repeat(`<b>7</b>`, 4), got)
}

func TestRender_NoMarkersIsIdentity(t *testing.T) {
	r := newRenderer()
	inputs := []string{
		"",
		"<html><body>plain page</body></html>",
		"style={{ color: 'red' }}",
		"{{UNKNOWN}} {{themes}}",
	}
	for _, in := range inputs {
		assert.Equal(t, in, r.Render(in, record(t, `{"themes":15}`)))
	}
}

func TestRender_PartialMarkersUntouched(t *testing.T) {
	r := newRenderer()
	html := `{{THEMES} {THEMES}} {{ THEMES }} {{THEMES}}}`

	got := r.Render(html, record(t, `{"themes":15}`))

	assert.Equal(t, `{{THEMES} {THEMES}} {{ THEMES }} 15}`, got)
}

func TestRender_ValueContainingMarkerIsNotRescanned(t *testing.T) {
	r := newRenderer()
	rec := domain.NewStatsRecord(map[string]any{
		domain.FieldThemes:  "{{MOTIONS}}",
		domain.FieldMotions: json.Number("55"),
	})

	got := r.Render(`{{THEMES}} {{MOTIONS}}`, rec)

	assert.Equal(t, `{{MOTIONS}} 55`, got)
}

func TestRender_OrderIndependent(t *testing.T) {
	r := newRenderer()
	rec := record(t, `{"themes":15,"motions":55,"js_bytes":0}`)

	a := r.Render(`{{JS_BYTES}}{{MOTIONS}}{{THEMES}}{{CONFIGS_SHORT}}{{CONFIGS}}`, rec)
	b := r.Render(`{{CONFIGS}}{{CONFIGS_SHORT}}{{THEMES}}{{MOTIONS}}{{JS_BYTES}}`, rec)

	assert.Equal(t, `055150.8K+825+`, a)
	assert.Equal(t, `825+0.8K+15550`, b)
}

func TestRenderer_Tokens(t *testing.T) {
	got := newRenderer().Tokens(domain.EmptyStats())
	assert.Equal(t, map[string]string{
		"{{CONFIGS}}":       "-",
		"{{CONFIGS_SHORT}}": "-",
		"{{THEMES}}":        "-",
		"{{MOTIONS}}":       "-",
		"{{JS_BYTES}}":      "0",
	}, got)
}
