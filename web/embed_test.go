package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSite_ContainsIndexWithMarkers(t *testing.T) {
	data, err := fs.ReadFile(Site(), "index.html")
	require.NoError(t, err)

	for _, marker := range []string{"{{CONFIGS}}", "{{CONFIGS_SHORT}}", "{{THEMES}}", "{{MOTIONS}}", "{{JS_BYTES}}"} {
		assert.Contains(t, string(data), marker)
	}
}

func TestSite_Stylesheet(t *testing.T) {
	_, err := fs.Stat(Site(), "site.css")
	assert.NoError(t, err)
}
