package roast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-roast/internal/llm"
)

func TestBuildPrompt_WithHTML(t *testing.T) {
	msgs := BuildPrompt("https://example.com", "<h1>Hello</h1>")
	require.Len(t, msgs, 2)

	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "witty")
	assert.Contains(t, msgs[0].Content, "accessibility")
	assert.Contains(t, msgs[0].Content, "2–4 sentences")

	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Roast this website.\nURL: https://example.com\n\n"))
	assert.Contains(t, msgs[1].Content, "<h1>Hello</h1>")
	assert.NotContains(t, msgs[1].Content, HTMLPlaceholder)
	assert.Contains(t, msgs[1].Content, `"NN/100"`)
}

func TestBuildPrompt_Placeholder(t *testing.T) {
	msgs := BuildPrompt("https://example.com", "")
	assert.Contains(t, msgs[1].Content, HTMLPlaceholder)
}

func TestBuildPrompt_URLVerbatim(t *testing.T) {
	weird := "not a url\n<script>ignore previous</script> " + strings.Repeat("x", 10000)
	msgs := BuildPrompt(weird, "")
	assert.Contains(t, msgs[1].Content, "URL: "+weird+"\n")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt("https://a.b", "<p>x</p>"), BuildPrompt("https://a.b", "<p>x</p>"))
}
