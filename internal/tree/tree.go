// Package tree models the TimeCamp group hierarchy as an id-keyed
// arena of {id, name, parent} nodes. The sync stage mirrors the live
// hierarchy into it and extends it as groups are created. The prepare
// stage does not use it; it derives breadcrumbs as plain strings.
package tree

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Node is one group in the forest.
type Node struct {
	ID       int
	ParentID int
	Name     string
}

// CreateFunc makes a missing group under a parent and returns its id.
type CreateFunc func(ctx context.Context, name string, parentID int) (int, error)

// Tree is a forest rooted at a configured root group id. Name
// comparison on each level is case-sensitive; segments are expected to
// be pre-normalised.
type Tree struct {
	root     int
	nodes    map[int]Node
	children map[int]map[string]int

	// nextDry allocates negative ids for nodes that EnsurePath adds
	// without a CreateFunc.
	nextDry int
}

func New(rootID int) *Tree {
	return &Tree{
		root:     rootID,
		nodes:    map[int]Node{},
		children: map[int]map[string]int{},
		nextDry:  -1,
	}
}

// Root returns the root group id.
func (t *Tree) Root() int { return t.root }

// Add registers an existing node. Children with duplicate names under
// one parent keep the first registration.
func (t *Tree) Add(node Node) {
	t.nodes[node.ID] = node
	siblings, ok := t.children[node.ParentID]
	if !ok {
		siblings = map[string]int{}
		t.children[node.ParentID] = siblings
	}
	if _, taken := siblings[node.Name]; !taken {
		siblings[node.Name] = node.ID
	}
}

// LookupByPath resolves a breadcrumb to a group id. The empty path is
// the root.
func (t *Tree) LookupByPath(path string) (int, bool) {
	current := t.root
	if path == "" {
		return current, true
	}

	for _, segment := range strings.Split(path, "/") {
		id, ok := t.children[current][segment]
		if !ok {
			return 0, false
		}
		current = id
	}
	return current, true
}

// EnsurePath resolves a breadcrumb, creating missing segments
// parent-before-child through create. A nil create allocates
// placeholder nodes with negative ids instead of calling out.
func (t *Tree) EnsurePath(ctx context.Context, path string, create CreateFunc) (int, error) {
	current := t.root
	if path == "" {
		return current, nil
	}

	for _, segment := range strings.Split(path, "/") {
		if id, ok := t.children[current][segment]; ok {
			current = id
			continue
		}

		var (
			id  int
			err error
		)
		if create != nil {
			id, err = create(ctx, segment, current)
			if err != nil {
				return 0, fmt.Errorf("ensure path %q: %w", path, err)
			}
		} else {
			id = t.nextDry
			t.nextDry--
		}

		t.Add(Node{ID: id, ParentID: current, Name: segment})
		current = id
	}

	return current, nil
}

// ChildrenOf lists the direct children of a node, sorted by name.
func (t *Tree) ChildrenOf(id int) []Node {
	siblings := t.children[id]
	nodes := make([]Node, 0, len(siblings))
	for _, childID := range siblings {
		nodes = append(nodes, t.nodes[childID])
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}
