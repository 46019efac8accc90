// Package xmlutil escapes user-supplied text before it is embedded in
// XML-delimited prompt templates, so idea domains cannot smuggle
// instructions into the prompt.
package xmlutil

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces characters with special meaning in XML.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Wrap escapes content and encloses it in the named tag, the shape
// prompt templates use for untrusted fields.
func Wrap(tag, content string) string {
	return "<" + tag + ">" + Escape(content) + "</" + tag + ">"
}
