// Package trie holds the package paths the mapping builder skips.
// Paths are split into their segments ("androidx/compose" becomes
// ["androidx" "compose"]) and matching is by prefix: a class under any
// inserted package is skipped.
package trie

import (
	"sort"
	"strings"
)

// Nodes live in a single arena slice and refer to each other by index
// instead of pointer. Skip lists are built once at engine construction
// and then only queried, so the contiguous layout keeps lookups cheap
// and the allocation count flat no matter how many packages are listed.

// NodeIndex is the position of a trie node within the arena.
type NodeIndex int

// Arena is the pool storing every node of one trie.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	// children maps a path segment to the index of the child node.
	children map[string]NodeIndex
	// isEnd marks the last segment of an inserted path.
	isEnd bool
}

// NewArena creates an arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	// root node (index 0)
	arena.nodes = append(arena.nodes, arenaNode{
		children: make(map[string]NodeIndex),
	})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{
		children: make(map[string]NodeIndex),
	})
	return idx
}

// Insert adds a package path, given as its segments, to the trie.
func (a *Arena) Insert(sequence []string) {
	current := NodeIndex(0)

	for _, part := range sequence {
		node := &a.nodes[current]
		childIdx, exists := node.children[part]

		if !exists {
			childIdx = a.newNode()
			node.children[part] = childIdx
		}

		current = childIdx
	}

	a.nodes[current].isEnd = true
}

// HasPrefix reports whether some inserted path is a prefix of the
// given segment sequence. Inserting ["androidx" "compose"] makes every
// class under androidx/compose match, however deep.
func (a *Arena) HasPrefix(sequence []string) bool {
	current := NodeIndex(0)

	for _, part := range sequence {
		node := a.nodes[current]
		if node.isEnd {
			return true
		}
		childIdx, exists := node.children[part]
		if !exists {
			return false
		}
		current = childIdx
	}

	return a.nodes[current].isEnd
}

// Equal reports whether two tries hold the same paths.
func (a *Arena) Equal(b *Arena) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}

	return a.equalNodes(NodeIndex(0), b, NodeIndex(0))
}

func (a *Arena) equalNodes(aIdx NodeIndex, b *Arena, bIdx NodeIndex) bool {
	nodeA := a.nodes[aIdx]
	nodeB := b.nodes[bIdx]

	if nodeA.isEnd != nodeB.isEnd || len(nodeA.children) != len(nodeB.children) {
		return false
	}

	keys := make([]string, 0, len(nodeA.children))
	for key := range nodeA.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		childA := nodeA.children[key]
		childB, exists := nodeB.children[key]
		if !exists || !a.equalNodes(childA, b, childB) {
			return false
		}
	}

	return true
}

// DebugString renders the trie with children in sorted order, an "*"
// marking each inserted path end.
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder

	if node.isEnd {
		sb.WriteString("*")
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}

	return sb.String()
}

// Trie is the skip-list handle the engine holds.
type Trie struct {
	arena *Arena
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{
		arena: NewArena(),
	}
}

// Insert adds a package path, given as its segments, to the trie.
func (t *Trie) Insert(sequence []string) {
	t.arena.Insert(sequence)
}

// HasPrefix reports whether some inserted path is a prefix of the
// given segment sequence.
func (t *Trie) HasPrefix(sequence []string) bool {
	return t.arena.HasPrefix(sequence)
}

// Equal reports whether two tries hold the same paths.
func (t *Trie) Equal(other *Trie) bool {
	return t.arena.Equal(other.arena)
}

// DebugString renders the trie with children in sorted order.
func (t *Trie) DebugString() string {
	return t.arena.DebugString()
}
