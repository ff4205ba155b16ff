package engine

import (
	"regexp"

	"github.com/cpcf/proforma/provider"
)

// Substitute replaces {{name}} placeholders in content. Spaces and tabs are
// allowed between the braces and the name.
//
// Replacements are applied one name at a time, in order, each over the output
// of the previous step. A value can therefore introduce placeholders, or two
// values can combine into one, that a later name resolves. Placeholders left
// over after the last replacement are kept verbatim. Every name is applied
// exactly once, so cyclic values cannot loop.
func Substitute(content string, replacements provider.Replacements) string {
	for _, rep := range replacements {
		content = placeholder(rep.Name).ReplaceAllLiteralString(content, rep.Value)
	}
	return content
}

func placeholder(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*\}\}`)
}
