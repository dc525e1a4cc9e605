package roast

import (
	"strings"

	"go-roast/internal/llm"
)

const systemPrompt = "You are Gonki, a brutally honest but witty UX/code reviewer. " +
	"You roast websites with sarcastic, specific feedback about their visual design, content, structure, and accessibility. " +
	"Keep responses short (2–4 sentences)."

// HTMLPlaceholder stands in for the page HTML when none could be fetched.
const HTMLPlaceholder = "[HTML not available; infer from the URL and typical sites]"

// BuildPrompt returns the system and user messages for a roast of pageURL.
// The URL is embedded verbatim.
func BuildPrompt(pageURL, htmlSnippet string) []llm.Message {
	if htmlSnippet == "" {
		htmlSnippet = HTMLPlaceholder
	}

	var b strings.Builder
	b.WriteString("Roast this website.\nURL: ")
	b.WriteString(pageURL)
	b.WriteString("\n\nHere is part of its HTML (may be empty or truncated):\n\n")
	b.WriteString(htmlSnippet)
	b.WriteString("\n\nReturn a single savage but playful roast, and explicitly include an " +
		`"integrity score" in the form "NN/100" (1–100 where lower is worse).`)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
