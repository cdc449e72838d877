package treetop

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// A Grid is an immutable rectangular grid of values stored in row-major order.
type Grid[T comparable] struct {
	values []T
	height int
	width  int
}

// NewGrid returns a new Grid with the given dimensions. values is copied and
// must contain exactly height*width elements.
func NewGrid[T comparable](values []T, height, width int) (*Grid[T], error) {
	if height < 0 || width < 0 || len(values) != height*width {
		return nil, fmt.Errorf("%d values for %dx%d grid: %w", len(values), height, width, ErrShape)
	}
	return &Grid[T]{
		values: slices.Clone(values),
		height: height,
		width:  width,
	}, nil
}

// NewGridFromRows returns a new Grid whose rows are rows. All rows must have
// the same length.
func NewGridFromRows[T comparable](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return &Grid[T]{}, nil
	}
	width := len(rows[0])
	values := make([]T, 0, len(rows)*width)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d: length %d, expected %d: %w", y, len(row), width, ErrShape)
		}
		values = append(values, row...)
	}
	return &Grid[T]{
		values: values,
		height: len(rows),
		width:  width,
	}, nil
}

// NewGridFromColumns returns a new Grid whose columns are columns. All columns
// must have the same length.
func NewGridFromColumns[T comparable](columns [][]T) (*Grid[T], error) {
	if len(columns) == 0 {
		return &Grid[T]{}, nil
	}
	width := len(columns)
	height := len(columns[0])
	values := make([]T, height*width)
	for x, column := range columns {
		if len(column) != height {
			return nil, fmt.Errorf("column %d: length %d, expected %d: %w", x, len(column), height, ErrShape)
		}
		for y, value := range column {
			values[y*width+x] = value
		}
	}
	return &Grid[T]{
		values: values,
		height: height,
		width:  width,
	}, nil
}

// Height returns the number of rows in g.
func (g *Grid[T]) Height() int {
	return g.height
}

// Width returns the number of columns in g.
func (g *Grid[T]) Width() int {
	return g.width
}

// Values returns a copy of g's values in row-major order.
func (g *Grid[T]) Values() []T {
	return slices.Clone(g.values)
}

// Row returns a copy of the row at y. It panics if y is out of range.
func (g *Grid[T]) Row(y int) []T {
	if y < 0 || g.height <= y {
		panic(fmt.Sprintf("treetop: row %d out of range [0,%d)", y, g.height))
	}
	return slices.Clone(g.values[y*g.width : (y+1)*g.width])
}

// Rows returns copies of all of g's rows.
func (g *Grid[T]) Rows() [][]T {
	rows := make([][]T, g.height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}

// Column returns a copy of the column at x. It panics if x is out of range.
func (g *Grid[T]) Column(x int) []T {
	if x < 0 || g.width <= x {
		panic(fmt.Sprintf("treetop: column %d out of range [0,%d)", x, g.width))
	}
	column := make([]T, g.height)
	for y := range column {
		column[y] = g.values[y*g.width+x]
	}
	return column
}

// Columns returns copies of all of g's columns.
func (g *Grid[T]) Columns() [][]T {
	columns := make([][]T, g.width)
	for x := range columns {
		columns[x] = g.Column(x)
	}
	return columns
}

// At returns the value at (x, y). If (x, y) is outside g it returns the zero
// value and false.
func (g *Grid[T]) At(x, y int) (T, bool) {
	if x < 0 || g.width <= x || y < 0 || g.height <= y {
		var zero T
		return zero, false
	}
	return g.values[y*g.width+x], true
}

// Coords returns an iterator over all coordinates in g in row-major order.
func (g *Grid[T]) Coords() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for y := range g.height {
			for x := range g.width {
				if !yield(Coord{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// Equal returns true if g and other have the same dimensions and values. A nil
// other is never equal.
func (g *Grid[T]) Equal(other *Grid[T]) bool {
	if other == nil {
		return false
	}
	return g.height == other.height && g.width == other.width && slices.Equal(g.values, other.values)
}

// MaxValue returns the greatest value in g, or the zero value if g is empty.
func MaxValue[T cmp.Ordered](g *Grid[T]) T {
	if len(g.values) == 0 {
		var zero T
		return zero
	}
	return slices.Max(g.values)
}

// CountFunc returns the number of values in g for which f returns true.
func CountFunc[T comparable](g *Grid[T], f func(T) bool) int {
	count := 0
	for _, value := range g.values {
		if f(value) {
			count++
		}
	}
	return count
}

// mapCoords returns a new Grid with the same dimensions as g whose values are
// f applied to each coordinate in row-major order.
func mapCoords[T, U comparable](g *Grid[T], f func(Coord) U) *Grid[U] {
	values := make([]U, 0, len(g.values))
	for coord := range g.Coords() {
		values = append(values, f(coord))
	}
	return &Grid[U]{
		values: values,
		height: g.height,
		width:  g.width,
	}
}
