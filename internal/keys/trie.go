package keys

import "fmt"

// Action is an opaque action identifier bound to a key sequence by
// configuration. The resolver never interprets an action's meaning;
// it only walks the trie and hands matched lists back to the caller.
type Action string

// KeyTreeNode is one node of the keybinding trie: a mapping from a
// single Key to a child node, plus an optional list of actions fired
// when the path from root ends exactly here. A node with a non-empty
// Actions and no Children is a leaf.
type KeyTreeNode struct {
	children map[Key]*KeyTreeNode
	actions  []Action
}

func newNode() *KeyTreeNode {
	return &KeyTreeNode{children: make(map[Key]*KeyTreeNode)}
}

func (n *KeyTreeNode) get(k Key) (*KeyTreeNode, bool) {
	child, ok := n.children[k]
	return child, ok
}

func (n *KeyTreeNode) hasActions() bool { return len(n.actions) > 0 }
func (n *KeyTreeNode) hasChildren() bool { return len(n.children) > 0 }

// Binding pairs a key sequence with the action list it fires.
type Binding struct {
	Sequence KeySequence
	Actions  []Action
}

// BuildTrie constructs the trie for one input mode from its bindings.
// Construction fails if two different action lists are installed at
// the same node — i.e. the same key sequence is bound twice with
// different actions.
func BuildTrie(bindings []Binding) (*KeyTreeNode, error) {
	root := newNode()
	for _, b := range bindings {
		if len(b.Sequence) == 0 {
			continue
		}
		cur := root
		for _, k := range b.Sequence {
			child, ok := cur.get(k)
			if !ok {
				child = newNode()
				cur.children[k] = child
			}
			cur = child
		}
		if cur.hasActions() && !sameActions(cur.actions, b.Actions) {
			return nil, fmt.Errorf("keys: conflicting bindings for sequence %q", b.Sequence.String())
		}
		cur.actions = b.Actions
	}
	return root, nil
}

func sameActions(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TraverseOutcome classifies where a key buffer lands in the trie.
type TraverseOutcome int

const (
	OutcomeMismatch TraverseOutcome = iota
	OutcomeExact
	OutcomeAmbiguous
	OutcomePrefix
)

// Traverse walks root through keys and classifies the result per the
// dispatch algorithm: a completed walk landing on a node with actions
// and no children is Exact; with actions and children is Ambiguous;
// without actions is Prefix; an incomplete walk is Mismatch.
func Traverse(root *KeyTreeNode, seq []Key) (TraverseOutcome, []Action) {
	cur := root
	for _, k := range seq {
		next, ok := cur.get(k)
		if !ok {
			return OutcomeMismatch, nil
		}
		cur = next
	}
	switch {
	case cur.hasActions() && !cur.hasChildren():
		return OutcomeExact, cur.actions
	case cur.hasActions() && cur.hasChildren():
		return OutcomeAmbiguous, cur.actions
	case !cur.hasActions() && cur.hasChildren():
		return OutcomePrefix, nil
	default:
		// A node with neither actions nor children only arises from an
		// empty-sequence binding, which BuildTrie skips; reachable here
		// only via a bug in trie construction.
		return OutcomeMismatch, nil
	}
}
