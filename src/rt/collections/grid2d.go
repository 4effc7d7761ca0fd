package collections

import "viper/src/rt"

// Grid2D is a fixed-size two-dimensional integer grid, grounded in
// rt_grid2d.h (width/height/default_value, row-major storage). An
// out-of-bounds Get returns 0 with ok=false and an out-of-bounds Set
// returns false; neither traps at this layer.
type Grid2D struct {
	rt.Header
	width, height int64
	cells         []int64
}

// NewGrid2D allocates a width x height grid filled with defaultValue.
func NewGrid2D(width, height, defaultValue int64) *Grid2D {
	g := &Grid2D{
		Header: rt.NewHeader(rt.KindObject, rt.ElemI64, int(width*height), int(width*height), nil),
		width:  width, height: height,
		cells: make([]int64, width*height),
	}
	g.Fill(defaultValue)
	return g
}

// Width returns the number of columns.
func (g *Grid2D) Width() int64 { return g.width }

// Height returns the number of rows.
func (g *Grid2D) Height() int64 { return g.height }

// Count returns the total number of cells.
func (g *Grid2D) Count() int64 { return g.width * g.height }

// InBounds reports whether (x, y) is a valid cell coordinate.
func (g *Grid2D) InBounds(x, y int64) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the value at (x, y), or ok=false if out of bounds.
func (g *Grid2D) Get(x, y int64) (int64, bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return g.cells[y*g.width+x], true
}

// Set stores value at (x, y), reporting whether the coordinate was in
// bounds.
func (g *Grid2D) Set(x, y, value int64) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.width+x] = value
	return true
}

// Fill sets every cell to value.
func (g *Grid2D) Fill(value int64) {
	for i := range g.cells {
		g.cells[i] = value
	}
}

// Clear fills the grid with zeros, matching rt_grid2d_clear.
func (g *Grid2D) Clear() { g.Fill(0) }
