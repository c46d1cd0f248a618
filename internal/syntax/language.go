package syntax

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Language identifies a supported source language.
type Language string

const (
	Python     Language = "python"
	Java       Language = "java"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Ruby       Language = "ruby"
	Go         Language = "go"
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "c_sharp"
	PHP        Language = "php"
	Rust       Language = "rust"
)

// Supported returns every language the registry can parse, in a stable order.
func Supported() []Language {
	return []Language{Python, Java, JavaScript, TypeScript, TSX, Ruby, Go, C, CPP, CSharp, PHP, Rust}
}

var aliases = map[string]Language{
	"c#":      CSharp,
	"csharp":  CSharp,
	"c-sharp": CSharp,
	"c++":     CPP,
	"golang":  Go,
	"js":      JavaScript,
	"jsx":     JavaScript,
	"ts":      TypeScript,
	"py":      Python,
	"rb":      Ruby,
	"rs":      Rust,
}

// ParseLanguage resolves a user-supplied language name, accepting common aliases.
func ParseLanguage(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if lang, ok := aliases[key]; ok {
		return lang, nil
	}
	for _, lang := range Supported() {
		if string(lang) == key {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

// extensions maps lowercase file extensions to languages.
var extensions = map[string]Language{
	".py":   Python,
	".java": Java,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".ts":   TypeScript,
	".mts":  TypeScript,
	".cts":  TypeScript,
	".tsx":  TSX,
	".rb":   Ruby,
	".go":   Go,
	".c":    C,
	".h":    C,
	".cpp":  CPP,
	".cc":   CPP,
	".cxx":  CPP,
	".hpp":  CPP,
	".hh":   CPP,
	".hxx":  CPP,
	".cs":   CSharp,
	".php":  PHP,
	".rs":   Rust,
}

// ForPath detects the language of a file from its extension.
func ForPath(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Extensions returns the file extensions mapped to the given languages.
// An empty list means all languages.
func Extensions(langs ...Language) []string {
	want := make(map[Language]bool, len(langs))
	for _, l := range langs {
		want[l] = true
	}

	var exts []string
	for ext, lang := range extensions {
		if len(want) == 0 || want[lang] {
			exts = append(exts, ext)
		}
	}
	return exts
}
