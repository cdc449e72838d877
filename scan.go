package treetop

import "slices"

// ScanVisibility returns, for each tree in line, whether it is strictly taller
// than every tree before it. line is scanned from its first element.
func ScanVisibility(line []Height) []bool {
	visible := make([]bool, len(line))
	tallest := -1
	for i, height := range line {
		if int(height) > tallest {
			visible[i] = true
			tallest = int(height)
		}
	}
	return visible
}

// scanVisibilityReversed returns the visibility of each tree in line when
// scanned from its last element. The result is in the same order as line.
func scanVisibilityReversed(line []Height) []bool {
	reversed := slices.Clone(line)
	slices.Reverse(reversed)
	visible := ScanVisibility(reversed)
	slices.Reverse(visible)
	return visible
}

// scanLines applies scan to each line.
func scanLines(lines [][]Height, scan func([]Height) []bool) [][]bool {
	result := make([][]bool, len(lines))
	for i, line := range lines {
		result[i] = scan(line)
	}
	return result
}
