package rag

import (
	"regexp"
	"strings"

	"docinsight/internal/models"
)

const snippetMaxLen = 300

var (
	thinkRe  = regexp.MustCompile(models.ThinkTag)
	headerRe = regexp.MustCompile(`###\s*[A-Z\s]+`)
)

// Simplify strips reasoning tags and collapses whitespace so the answer
// reads cleanly in the UI.
func Simplify(text string) string {
	text = thinkRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// CleanSnippet makes a raw chunk readable as citation evidence: markdown
// headers and table syntax out, whitespace compressed, truncated.
func CleanSnippet(text string) string {
	text = headerRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "|", " ")
	text = strings.ReplaceAll(text, "---", "")
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > snippetMaxLen {
		text = text[:snippetMaxLen] + "..."
	}
	return text
}
