package quality

import (
	"strings"
)

// StripDelimiters removes comment syntax from every line of a raw comment:
// block openers and closers, leading asterisks, and line markers such as
// //, ///, //! and #. Only the first marker on a line is removed.
func StripDelimiters(comment string) string {
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimSuffix(l, "*/")

		switch {
		case strings.HasPrefix(l, "/**"), strings.HasPrefix(l, "/*!"):
			l = l[3:]
		case strings.HasPrefix(l, "/*"):
			l = l[2:]
		case strings.HasPrefix(l, "///"), strings.HasPrefix(l, "//!"):
			l = l[3:]
		case strings.HasPrefix(l, "//"):
			l = l[2:]
		case strings.HasPrefix(l, "*"):
			l = l[1:]
		case strings.HasPrefix(l, "#"):
			l = l[1:]
		}
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// Dedent trims leading and trailing blank lines, strips the first line's
// indentation and removes the common indentation of the remaining lines.
// This matches how string-literal docstrings are laid out, where the first
// line follows the opening quotes. Dedent(Dedent(s)) == Dedent(s).
func Dedent(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\t", "    "), "\n")

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	lines[0] = strings.TrimSpace(lines[0])

	margin := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " "))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	for i := 1; i < len(lines); i++ {
		l := strings.TrimRight(lines[i], " ")
		if len(l) >= margin && margin > 0 {
			l = l[margin:]
		} else if margin > 0 {
			l = strings.TrimLeft(l, " ")
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}
