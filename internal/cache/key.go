package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// HashContent returns the hex SHA-256 of content. The vault stores the same
// hash for incremental mining.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ContentKey identifies a mining result by language and content hash.
// Format: {language}:{sha256}
func ContentKey(lang syntax.Language, hash string) string {
	return string(lang) + ":" + hash
}
