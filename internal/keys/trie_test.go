package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(t *testing.T, s string) KeySequence {
	t.Helper()
	k, err := ParseKeySequence(s)
	require.NoError(t, err)
	return k
}

func TestTraverseExactOnLeaf(t *testing.T) {
	root, err := BuildTrie([]Binding{
		{Sequence: seq(t, "x"), Actions: []Action{"Up"}},
	})
	require.NoError(t, err)

	outcome, actions := Traverse(root, seq(t, "x"))
	assert.Equal(t, OutcomeExact, outcome)
	assert.Equal(t, []Action{"Up"}, actions)
}

func TestTraverseAmbiguousOnActionWithChildren(t *testing.T) {
	root, err := BuildTrie([]Binding{
		{Sequence: seq(t, "g"), Actions: []Action{"Down"}},
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	})
	require.NoError(t, err)

	outcome, actions := Traverse(root, seq(t, "g"))
	assert.Equal(t, OutcomeAmbiguous, outcome)
	assert.Equal(t, []Action{"Down"}, actions)

	outcome, actions = Traverse(root, seq(t, "gd"))
	assert.Equal(t, OutcomeExact, outcome)
	assert.Equal(t, []Action{"DownHalf"}, actions)
}

func TestTraversePrefixWithoutActions(t *testing.T) {
	root, err := BuildTrie([]Binding{
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	})
	require.NoError(t, err)

	outcome, actions := Traverse(root, seq(t, "g"))
	assert.Equal(t, OutcomePrefix, outcome)
	assert.Nil(t, actions)
}

func TestTraverseMismatch(t *testing.T) {
	root, err := BuildTrie([]Binding{
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	})
	require.NoError(t, err)

	outcome, actions := Traverse(root, seq(t, "x"))
	assert.Equal(t, OutcomeMismatch, outcome)
	assert.Nil(t, actions)

	outcome, actions = Traverse(root, seq(t, "gx"))
	assert.Equal(t, OutcomeMismatch, outcome)
	assert.Nil(t, actions)
}

func TestBuildTrieRejectsConflictingBindings(t *testing.T) {
	_, err := BuildTrie([]Binding{
		{Sequence: seq(t, "x"), Actions: []Action{"Up"}},
		{Sequence: seq(t, "x"), Actions: []Action{"Down"}},
	})
	assert.Error(t, err)
}

func TestBuildTrieAllowsRepeatedIdenticalBindings(t *testing.T) {
	_, err := BuildTrie([]Binding{
		{Sequence: seq(t, "x"), Actions: []Action{"Up"}},
		{Sequence: seq(t, "x"), Actions: []Action{"Up"}},
	})
	assert.NoError(t, err)
}

func TestBuildTrieSkipsEmptySequence(t *testing.T) {
	root, err := BuildTrie([]Binding{
		{Sequence: nil, Actions: []Action{"Noop"}},
	})
	require.NoError(t, err)
	assert.False(t, root.hasActions())
	assert.False(t, root.hasChildren())
}
