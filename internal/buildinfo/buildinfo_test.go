package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_PrefersLinkedValues(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuiltAt
	t.Cleanup(func() { Version, Commit, BuiltAt = oldV, oldC, oldB })

	Version, Commit, BuiltAt = "1.2.3", "abc123", "2024-01-01T00:00:00Z"
	assert.Equal(t, map[string]string{
		"version": "1.2.3",
		"commit":  "abc123",
		"builtAt": "2024-01-01T00:00:00Z",
	}, Info())
}
