package treetop

// Visibility returns the grid of trees in heights that are visible from outside
// the grid along at least one row or column.
func Visibility(heights *HeightGrid) *VisibilityGrid {
	rows := heights.Rows()
	columns := heights.Columns()

	// Each scan yields a well-formed grid, so construction cannot fail.
	fromLeft, _ := NewGridFromRows(scanLines(rows, ScanVisibility))
	fromRight, _ := NewGridFromRows(scanLines(rows, scanVisibilityReversed))
	fromTop, _ := NewGridFromColumns(scanLines(columns, ScanVisibility))
	fromBottom, _ := NewGridFromColumns(scanLines(columns, scanVisibilityReversed))

	return mapCoords(heights, func(coord Coord) bool {
		for _, visibility := range []*VisibilityGrid{fromLeft, fromRight, fromTop, fromBottom} {
			if visible, _ := visibility.At(coord.X, coord.Y); visible {
				return true
			}
		}
		return false
	})
}

// CountVisible returns the number of visible trees in visibility.
func CountVisible(visibility *VisibilityGrid) int {
	return CountFunc(visibility, func(visible bool) bool {
		return visible
	})
}
