package miner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds source files to mine with glob patterns and ignore rules.
type FileDiscovery struct {
	rootDir         string
	outputDir       string // slash-separated, relative to rootDir; empty when outside it
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
	languages       map[syntax.Language]bool
}

// NewFileDiscovery creates a file discovery instance. Only files whose
// language is in langs are returned; an empty langs enables all languages.
// outputDir is always ignored when it lies under rootDir.
func NewFileDiscovery(rootDir, outputDir string, includePatterns, ignorePatterns []string, langs []syntax.Language) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir:   rootDir,
		languages: make(map[syntax.Language]bool, len(langs)),
	}

	if rel, err := filepath.Rel(rootDir, outputDir); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		fd.outputDir = filepath.ToSlash(rel)
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	for _, lang := range langs {
		fd.languages[lang] = true
	}
	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// DiscoverFiles walks the directory tree and returns the absolute paths of
// minable source files, sorted.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether a slash-separated path relative to the root would
// be mined.
func (fd *FileDiscovery) Matches(relPath string) bool {
	if _, ok := fd.Language(relPath); !ok {
		return false
	}
	if fd.shouldIgnore(relPath) {
		return false
	}
	return fd.matchesAnyPattern(relPath, fd.includePatterns)
}

// MatchesPath is Matches for an absolute path. Paths outside the root never match.
func (fd *FileDiscovery) MatchesPath(path string) bool {
	rel, ok := fd.rel(path)
	return ok && fd.Matches(rel)
}

// IgnoresPath reports whether an absolute path falls under an ignore rule.
// The root itself is never ignored.
func (fd *FileDiscovery) IgnoresPath(path string) bool {
	rel, ok := fd.rel(path)
	if !ok {
		return true
	}
	return rel != "." && fd.shouldIgnore(rel)
}

func (fd *FileDiscovery) rel(path string) (string, bool) {
	rel, err := filepath.Rel(fd.rootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Language returns the language of path if it is enabled.
func (fd *FileDiscovery) Language(path string) (syntax.Language, bool) {
	lang, ok := syntax.ForPath(path)
	if !ok {
		return "", false
	}
	if len(fd.languages) > 0 && !fd.languages[lang] {
		return "", false
	}
	return lang, true
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore the output directory
	for _, dir := range []string{".docvault", fd.outputDir} {
		if dir != "" && (relPath == dir || strings.HasPrefix(relPath, dir+"/")) {
			return true
		}
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	pathWithSuffix := relPath + "/**"
	return fd.matchesAnyPattern(pathWithSuffix, fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root-level files: "**/*.py" should match "setup.py" as well as "pkg/mod.py".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
