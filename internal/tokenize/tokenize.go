// Package tokenize splits code and documentation into token sequences.
package tokenize

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// textToken keeps words and runs of punctuation as separate tokens.
var textToken = regexp.MustCompile("[^\\s,'\"`.():\\[\\]=*;>{}+\\-/\\\\]+|\\\\+|\\.+|\\(\\)|\\{\\}|\\[\\]|\\(+|\\)+|:+|\\[+|\\]+|\\{+|\\}+|=+|\\*+|;+|>+|\\++|-+|/+")

// Code returns the text of every leaf under root in source order, skipping
// leaves that lie inside any of the excluded nodes and whitespace-only leaves.
func Code(root *syntax.Node, src []byte, exclude []*syntax.Node) []string {
	var tokens []string
	for _, leaf := range syntax.Leaves(root) {
		if excluded(leaf, exclude) {
			continue
		}
		text := leaf.Text(src)
		if strings.TrimSpace(text) == "" {
			continue
		}
		tokens = append(tokens, text)
	}
	return tokens
}

func excluded(leaf *syntax.Node, exclude []*syntax.Node) bool {
	for _, ex := range exclude {
		if ex != nil && ex.Contains(leaf) {
			return true
		}
	}
	return false
}

// Text splits documentation text into word and punctuation tokens.
func Text(text string) []string {
	return textToken.FindAllString(text, -1)
}
