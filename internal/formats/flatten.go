package formats

import (
	"fmt"
	"strings"
)

// pathSep joins nested keys into pivot terms.
const pathSep = "."

// maxNestingDepth is the deepest object level hierarchical decoders accept.
// The root object is level zero; a term of seven path segments would require
// a level-six child object and is rejected.
const maxNestingDepth = 6

// flatCollector accumulates flattened (term, value) pairs during a
// hierarchical decode and rejects keys used both as a scalar and as a
// container, which otherwise could not round-trip.
type flatCollector struct {
	translations []Translation
	leaves       map[string]bool
	interior     map[string]bool
}

func newFlatCollector() *flatCollector {
	return &flatCollector{leaves: make(map[string]bool), interior: make(map[string]bool)}
}

func (c *flatCollector) leaf(path, value string) error {
	if c.interior[path] {
		return fmt.Errorf("key %q mixes scalar and nested values", path)
	}
	c.leaves[path] = true
	c.translations = append(c.translations, Translation{Term: path, Value: value})
	return nil
}

func (c *flatCollector) enter(path string) error {
	if c.leaves[path] {
		return fmt.Errorf("key %q mixes scalar and nested values", path)
	}
	c.interior[path] = true
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + pathSep + key
}

// treeNode is an ordered tree built from dot-joined terms, used by the
// hierarchical encoders. Encoding never fails: when a term is both a leaf
// and a prefix of another term, the later write wins.
type treeNode struct {
	isLeaf   bool
	value    string
	keys     []string
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

func (n *treeNode) child(key string) *treeNode {
	c, ok := n.children[key]
	if !ok || c.isLeaf {
		c = newTreeNode()
		if !ok {
			n.keys = append(n.keys, key)
		}
		n.children[key] = c
	}
	return c
}

func (n *treeNode) setLeaf(key, value string) {
	c, ok := n.children[key]
	if !ok {
		c = newTreeNode()
		n.keys = append(n.keys, key)
		n.children[key] = c
	}
	c.isLeaf = true
	c.value = value
	c.keys = nil
	c.children = make(map[string]*treeNode)
}

// buildTree unflattens a document's translations into an ordered tree.
func buildTree(translations []Translation) *treeNode {
	root := newTreeNode()
	for _, t := range translations {
		parts := strings.Split(t.Term, pathSep)
		current := root
		for _, key := range parts[:len(parts)-1] {
			current = current.child(key)
		}
		current.setLeaf(parts[len(parts)-1], t.Value)
	}
	return root
}
