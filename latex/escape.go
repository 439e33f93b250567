package latex

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var specials = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`%`, `\%`,
	`~`, `\textasciitilde{}`,
)

// Escape returns s in NFC with all characters special to LaTeX escaped.
func Escape(s string) string {
	return specials.Replace(norm.NFC.String(s))
}

// collapse folds all white space runs, including line breaks, to single
// blanks. A blank line would end a tabular row.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
