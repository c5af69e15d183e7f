package cliutil

import (
	"strings"
)

// Wrap the string `str` to a maximum width `width`.  Pass `width` == 0 to do no wrapping.
//
// In order to leave some slop for things like trailing punctuation, lines are actually wrapped to
// `width - 5`.
func Wrap(width int, str string) string {
	return wrap(0, width, str)
}

// WrapIndent is like Wrap, but indents continuation lines by `indent` spaces.  The first line is
// not indented; that is assumed to already have been done by the caller.
func WrapIndent(indent, width int, str string) string {
	return wrap(indent, width, str)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func wrap(indent, width int, str string) string {
	if width == 0 {
		return str
	}
	goal := width - 5
	if goal <= indent {
		goal = width
	}

	var out strings.Builder
	for p, paragraph := range strings.Split(str, "\n\n") {
		if p > 0 {
			out.WriteString("\n\n")
			out.WriteString(strings.Repeat(" ", indent))
		}
		lineLen := indent
		first := true
		i := 0
		for i < len(paragraph) {
			j := i
			for j < len(paragraph) && isSpace(paragraph[j]) {
				j++
			}
			sep := paragraph[i:j]
			i = j
			if i >= len(paragraph) {
				break
			}
			for j < len(paragraph) && !isSpace(paragraph[j]) {
				j++
			}
			word := paragraph[i:j]
			i = j
			if strings.Contains(sep, "\n") {
				// re-flow hard-wrapped input
				sep = " "
			}
			switch {
			case first:
				first = false
			case lineLen+len(sep)+len(word) >= goal:
				out.WriteString("\n")
				out.WriteString(strings.Repeat(" ", indent))
				lineLen = indent
			default:
				out.WriteString(sep)
				lineLen += len(sep)
			}
			out.WriteString(word)
			lineLen += len(word)
		}
	}
	return out.String()
}
