// Package tree rebuilds the journal hierarchy of a book from the flat rows
// returned by the store.
//
// Nodes live in a single arena owned by Tree; parent and child links are
// Handles into that arena. Assemble is pure and has no storage or crypto
// dependencies.
package tree

import (
	"fmt"
	"io"
	"strings"
)

// Row is one journal as listed by the store: its parent id (0 for the book
// root), its own id and its decrypted name.
type Row struct {
	ParentID int64
	ID       int64
	Name     string
}

// Handle indexes a node in its Tree's arena.
type Handle int

// RootHandle is the synthetic root labeled with the book name.
const RootHandle Handle = 0

// NoHandle is the parent of the root.
const NoHandle Handle = -1

// Node is a tree element. The root has ID 0.
type Node struct {
	ID       int64
	Name     string
	Parent   Handle
	Children []Handle
}

// Tree is a rooted journal hierarchy plus the rows that could not be placed.
type Tree struct {
	nodes   []Node
	byID    map[int64]Handle
	orphans []Row
}

// Assemble builds a tree whose root is labeled rootLabel.
//
// Rows with ParentID 0 hang under the root; every other row hangs under the
// node whose ID equals its ParentID. A parent must appear before its children
// in rows, which holds for the (parent_id, id) order produced by the store.
// Rows whose parent is unknown at that point, and rows repeating an id
// already placed, are collected in Orphans in input order.
func Assemble(rootLabel string, rows []Row) *Tree {
	t := &Tree{
		nodes: make([]Node, 1, len(rows)+1),
		byID:  make(map[int64]Handle, len(rows)),
	}
	t.nodes[RootHandle] = Node{Name: rootLabel, Parent: NoHandle}

	for _, r := range rows {
		parent := RootHandle
		if r.ParentID != 0 {
			h, ok := t.byID[r.ParentID]
			if !ok {
				t.orphans = append(t.orphans, r)
				continue
			}
			parent = h
		}
		if _, dup := t.byID[r.ID]; dup || r.ID == 0 {
			t.orphans = append(t.orphans, r)
			continue
		}

		h := Handle(len(t.nodes))
		t.nodes = append(t.nodes, Node{ID: r.ID, Name: r.Name, Parent: parent})
		t.nodes[parent].Children = append(t.nodes[parent].Children, h)
		t.byID[r.ID] = h
	}

	return t
}

// Root returns the synthetic root node.
func (t *Tree) Root() Node {
	return t.nodes[RootHandle]
}

// Node returns the node at h. It panics if h is out of range.
func (t *Tree) Node(h Handle) Node {
	return t.nodes[h]
}

// Children returns the child handles of h in insertion order.
func (t *Tree) Children(h Handle) []Handle {
	return t.nodes[h].Children
}

// Lookup finds the node holding journal id.
func (t *Tree) Lookup(id int64) (Handle, bool) {
	h, ok := t.byID[id]
	return h, ok
}

// Len is the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Orphans lists the rows that could not be attached, including descendants
// of an unattached row.
func (t *Tree) Orphans() []Row {
	return t.orphans
}

// Walk visits every node depth-first, parents before children, starting at
// the root with depth 0. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(h Handle, n Node, depth int) bool) {
	var visit func(h Handle, depth int)
	visit = func(h Handle, depth int) {
		if !fn(h, t.nodes[h], depth) {
			return
		}
		for _, c := range t.nodes[h].Children {
			visit(c, depth+1)
		}
	}
	visit(RootHandle, 0)
}

// Render writes an indented outline of the tree followed by any orphans.
func (t *Tree) Render(w io.Writer) error {
	var sb strings.Builder
	t.Walk(func(_ Handle, n Node, depth int) bool {
		if depth == 0 {
			fmt.Fprintf(&sb, "%s\n", n.Name)
			return true
		}
		fmt.Fprintf(&sb, "%s[%d] %s\n", strings.Repeat("  ", depth), n.ID, n.Name)
		return true
	})
	for _, o := range t.orphans {
		fmt.Fprintf(&sb, "! [%d] %s (unattached, parent %d)\n", o.ID, o.Name, o.ParentID)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
