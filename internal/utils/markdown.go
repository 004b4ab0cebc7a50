package utils

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func init() {
	ugcPolicy.AllowImages()
	ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	ugcPolicy.RequireNoReferrerOnLinks(true)
}

// SanitizeText trims s and strips every tag. Used for names, titles and tldrs.
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(strings.TrimSpace(s)))
}

// SanitizeBody trims s and keeps only user-content safe markup.
func SanitizeBody(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(strings.TrimSpace(s)))
}

// RenderMarkdown turns a stored body into safe HTML.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return ugcPolicy.Sanitize(source)
	}

	sanitized := ugcPolicy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}
