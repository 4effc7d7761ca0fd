package collections

import "viper/src/rt"

// Tree is an n-ary tree of retained payloads addressed by node handles.
// Nodes are created under an explicit parent (or as the root) and removed
// subtree-at-a-time, releasing every payload in the detached subtree.
type Tree struct {
	rt.Header
	root *TreeNode
	size int
}

// TreeNode is one node of a Tree. Handles stay valid until the node (or an
// ancestor) is removed.
type TreeNode struct {
	payload  rt.Object
	parent   *TreeNode
	children []*TreeNode
}

// NewTree allocates an empty Tree with refcount 1.
func NewTree() *Tree {
	return &Tree{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil)}
}

// Len returns the total node count.
func (t *Tree) Len() int64 { return int64(t.size) }

// Root returns the root node, or nil if the tree is empty.
func (t *Tree) Root() *TreeNode { return t.root }

// SetRoot creates the root node holding payload, reporting false if a root
// already exists.
func (t *Tree) SetRoot(payload rt.Object) (*TreeNode, bool) {
	if t.root != nil {
		return nil, false
	}
	rt.RetainMaybe(payload)
	t.root = &TreeNode{payload: payload}
	t.size = 1
	t.Length = t.size
	return t.root, true
}

// AddChild creates a new node holding payload under parent. A nil parent
// reports false.
func (t *Tree) AddChild(parent *TreeNode, payload rt.Object) (*TreeNode, bool) {
	if parent == nil {
		return nil, false
	}
	rt.RetainMaybe(payload)
	n := &TreeNode{payload: payload, parent: parent}
	parent.children = append(parent.children, n)
	t.size++
	t.Length = t.size
	return n, true
}

// Remove detaches node and its entire subtree, releasing every payload in
// it. Removing the root empties the tree. A nil node reports false.
func (t *Tree) Remove(node *TreeNode) bool {
	if node == nil {
		return false
	}
	if node.parent == nil {
		if t.root != node {
			return false
		}
		t.root = nil
	} else {
		siblings := node.parent.children
		found := false
		for i, c := range siblings {
			if c == node {
				node.parent.children = append(siblings[:i], siblings[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	t.size -= releaseSubtree(node)
	t.Length = t.size
	return true
}

// Payload returns the node's payload retained for the caller.
func (n *TreeNode) Payload() rt.Object {
	rt.RetainMaybe(n.payload)
	return n.payload
}

// Parent returns the node's parent, or nil for the root.
func (n *TreeNode) Parent() *TreeNode { return n.parent }

// ChildCount returns the number of direct children.
func (n *TreeNode) ChildCount() int64 { return int64(len(n.children)) }

// Child returns the idx'th direct child, or ok=false if idx is out of
// range.
func (n *TreeNode) Child(idx int64) (*TreeNode, bool) {
	if idx < 0 || idx >= int64(len(n.children)) {
		return nil, false
	}
	return n.children[idx], true
}

// Walk visits the subtree rooted at n in depth-first preorder.
func (n *TreeNode) Walk(visit func(*TreeNode)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}

func releaseSubtree(n *TreeNode) int {
	count := 1
	rt.ReleaseMaybe(n.payload)
	for _, c := range n.children {
		count += releaseSubtree(c)
	}
	return count
}

// Release overrides rt.Header.Release to release every payload still held
// once the tree itself reaches refcount zero.
func (t *Tree) Release() {
	if t.ReleaseAndWasLast() && t.root != nil {
		releaseSubtree(t.root)
		t.root = nil
	}
}
