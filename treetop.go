// Package treetop analyzes grids of tree heights: which trees can be seen from
// outside the grid, and how scenic the view from each tree is.
package treetop

// A Coord is a coordinate.
type Coord struct {
	X int // Column.
	Y int // Row.
}

// A Height is the height of a single tree, from 0 to 9.
type Height uint8

// MaxHeight is the greatest valid Height.
const MaxHeight Height = 9

// A ScenicScore is the product of the four viewing distances from a tree.
type ScenicScore uint32

type (
	HeightGrid      = Grid[Height]
	VisibilityGrid  = Grid[bool]
	ScenicScoreGrid = Grid[ScenicScore]
)
