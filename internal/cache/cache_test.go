package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/miner/extraction"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Test Plan for the result cache:
// - HashContent is the hex SHA-256 and ContentKey prefixes the language
// - Get misses for unknown keys
// - Get returns a copy bound to the requesting path
// - Mutating a returned result never changes the cached one

func TestContentKey(t *testing.T) {
	t.Parallel()

	hash := HashContent([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)
	assert.Equal(t, "python:"+hash, ContentKey(syntax.Python, hash))
	assert.NotEqual(t, ContentKey(syntax.Python, hash), ContentKey(syntax.Ruby, hash))
}

func TestResultCache(t *testing.T) {
	t.Parallel()

	c, err := NewResultCache(16)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("missing", "a.py")
	assert.False(t, ok)

	res := &extraction.Result{
		Functions: []extraction.OutputRecord{{Identifier: "load", Path: "a.py"}},
		Classes:   []extraction.OutputRecord{},
		Lines:     []extraction.CommentContextRecord{{Identifier: "load", Path: "a.py"}},
		Skips:     map[string]int{extraction.ReasonAttachmentMiss: 2},
	}
	key := ContentKey(syntax.Python, HashContent([]byte("def load(): pass")))
	c.Set(key, res)

	got, ok := c.Get(key, "copy/b.py")
	require.True(t, ok)
	require.Len(t, got.Functions, 1)
	assert.Equal(t, "load", got.Functions[0].Identifier)
	assert.Equal(t, "copy/b.py", got.Functions[0].Path)
	assert.Equal(t, "copy/b.py", got.Lines[0].Path)
	assert.Equal(t, 2, got.Skips[extraction.ReasonAttachmentMiss])

	// The caller's result and returned copies are independent of the cache.
	assert.Equal(t, "a.py", res.Functions[0].Path)
	got.Functions[0].Identifier = "changed"
	got.Skips[extraction.ReasonAttachmentMiss] = 99

	again, ok := c.Get(key, "c.py")
	require.True(t, ok)
	assert.Equal(t, "load", again.Functions[0].Identifier)
	assert.Equal(t, 2, again.Skips[extraction.ReasonAttachmentMiss])
}
