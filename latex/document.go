/*
Package latex writes LaTeX.

Tabular turns the corrected event stream of a tables.Tracker into a tabular
environment. The remaining functions write the few document-level commands
needed to produce a standalone document around the tables.
*/
package latex

import (
	"fmt"
	"io"
	"strings"
)

// Command writes \command{scope} followed by a line break. A non-empty
// argument goes into square brackets, after the braces for \begin and \end
// and before them for all other commands.
func Command(w io.Writer, command, scope, argument string) error {
	var text string
	switch {
	case argument == "":
		text = fmt.Sprintf("\\%s{%s}", command, scope)
	case command == "begin" || command == "end":
		text = fmt.Sprintf("\\%s{%s}[%s]", command, scope, argument)
	default:
		text = fmt.Sprintf("\\%s[%s]{%s}", command, argument, scope)
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}

// Comment writes text as LaTeX comment lines.
func Comment(w io.Writer, text string) error {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if _, err := io.WriteString(w, "% "+line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Packages lists the packages the output of Tabular depends on.
var Packages = []string{"multirow"}

// Preamble starts a document of the given class loading Packages.
func Preamble(w io.Writer, class string) error {
	if class == "" {
		class = "article"
	}
	if err := Command(w, "documentclass", class, ""); err != nil {
		return err
	}
	for _, pkg := range Packages {
		if err := Command(w, "usepackage", pkg, ""); err != nil {
			return err
		}
	}
	return Command(w, "begin", "document", "")
}

// Heading writes a sectioning command for a heading level: 1 is a part,
// 2 a chapter, 3 a section, 4 a subsection and anything deeper a
// subsubsection.
func Heading(w io.Writer, level int, title string) error {
	command := "subsubsection"
	switch level {
	case 1:
		command = "part"
	case 2:
		command = "chapter"
	case 3:
		command = "section"
	case 4:
		command = "subsection"
	}
	return Command(w, command, Escape(collapse(title)), "")
}

// HasChapters reports whether a document class defines \chapter, the
// command Heading writes for level 2.
func HasChapters(class string) bool {
	switch class {
	case "book", "report", "memoir", "scrbook", "scrreprt":
		return true
	}
	return false
}

// End closes a document started with Preamble.
func End(w io.Writer) error {
	return Command(w, "end", "document", "")
}
