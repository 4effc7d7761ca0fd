package collections

import "viper/src/rt"

// Quadtree is a spatial index over axis-aligned rectangles identified by
// int64 ids, grounded in RTQuadtreeTests.cpp's rt_quadtree contract:
// Insert rejects items entirely outside the root bounds, QueryRect returns
// the matching ids as a slice, and nodes subdivide once they hold more than a fixed number of items.
type Quadtree struct {
	rt.Header
	root  *qtNode
	items map[int64]qtRect
}

type qtRect struct {
	x, y, w, h int64
}

func (r qtRect) intersects(o qtRect) bool {
	return r.x < o.x+o.w && o.x < r.x+r.w && r.y < o.y+o.h && o.y < r.y+r.h
}

func (r qtRect) contains(o qtRect) bool {
	return o.x >= r.x && o.y >= r.y && o.x+o.w <= r.x+r.w && o.y+o.h <= r.y+r.h
}

type qtEntry struct {
	id   int64
	rect qtRect
}

type qtNode struct {
	bounds   qtRect
	entries  []qtEntry
	children *[4]*qtNode
	depth    int
}

const (
	qtMaxEntries = 8
	qtMaxDepth   = 8
)

// NewQuadtree allocates a Quadtree covering the rectangle (x, y, w, h).
func NewQuadtree(x, y, w, h int64) *Quadtree {
	return &Quadtree{
		Header: rt.NewHeader(rt.KindObject, rt.ElemI64, 0, 0, nil),
		root:   &qtNode{bounds: qtRect{x, y, w, h}},
		items:  map[int64]qtRect{},
	}
}

// ItemCount returns the number of indexed items.
func (q *Quadtree) ItemCount() int64 { return int64(len(q.items)) }

// Insert indexes id under the rectangle (x, y, w, h), reporting false when
// the rectangle lies entirely outside the tree's bounds or the id is
// already present.
func (q *Quadtree) Insert(id, x, y, w, h int64) bool {
	r := qtRect{x, y, w, h}
	if _, dup := q.items[id]; dup {
		return false
	}
	if !q.root.bounds.intersects(r) {
		return false
	}
	q.root.insert(qtEntry{id: id, rect: r})
	q.items[id] = r
	q.Length = len(q.items)
	return true
}

// Remove drops id from the index, reporting whether it was present.
func (q *Quadtree) Remove(id int64) bool {
	r, ok := q.items[id]
	if !ok {
		return false
	}
	q.root.remove(id, r)
	delete(q.items, id)
	q.Length = len(q.items)
	return true
}

// QueryRect returns the ids of every item intersecting (x, y, w, h).
// Results carry no defined order.
func (q *Quadtree) QueryRect(x, y, w, h int64) []int64 {
	r := qtRect{x, y, w, h}
	seen := map[int64]bool{}
	var out []int64
	q.root.query(r, seen, &out)
	return out
}

func (n *qtNode) insert(e qtEntry) {
	if n.children != nil {
		for _, c := range n.children {
			if c.bounds.contains(e.rect) {
				c.insert(e)
				return
			}
		}
		n.entries = append(n.entries, e)
		return
	}
	n.entries = append(n.entries, e)
	if len(n.entries) > qtMaxEntries && n.depth < qtMaxDepth {
		n.split()
	}
}

func (n *qtNode) split() {
	hw, hh := n.bounds.w/2, n.bounds.h/2
	if hw == 0 || hh == 0 {
		return
	}
	x, y := n.bounds.x, n.bounds.y
	n.children = &[4]*qtNode{
		{bounds: qtRect{x, y, hw, hh}, depth: n.depth + 1},
		{bounds: qtRect{x + hw, y, n.bounds.w - hw, hh}, depth: n.depth + 1},
		{bounds: qtRect{x, y + hh, hw, n.bounds.h - hh}, depth: n.depth + 1},
		{bounds: qtRect{x + hw, y + hh, n.bounds.w - hw, n.bounds.h - hh}, depth: n.depth + 1},
	}
	kept := n.entries[:0]
	for _, e := range n.entries {
		placed := false
		for _, c := range n.children {
			if c.bounds.contains(e.rect) {
				c.insert(e)
				placed = true
				break
			}
		}
		if !placed {
			kept = append(kept, e)
		}
	}
	n.entries = kept
}

func (n *qtNode) remove(id int64, r qtRect) bool {
	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if c.bounds.intersects(r) && c.remove(id, r) {
				return true
			}
		}
	}
	return false
}

func (n *qtNode) query(r qtRect, seen map[int64]bool, out *[]int64) {
	if !n.bounds.intersects(r) {
		return
	}
	for _, e := range n.entries {
		if e.rect.intersects(r) && !seen[e.id] {
			seen[e.id] = true
			*out = append(*out, e.id)
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			c.query(r, seen, out)
		}
	}
}
