package treetop

import "slices"

// ScenicScoreAt returns the scenic score of the tree at coord: the product of the
// number of trees visible from it looking right, left, down, and up.
//
// Trees in the first row or column score zero. Trees in the last row or column
// also score zero, but only because one of their viewing distances is zero.
func ScenicScoreAt(heights *HeightGrid, coord Coord) ScenicScore {
	if coord.X == 0 || coord.Y == 0 {
		return 0
	}
	height, ok := heights.At(coord.X, coord.Y)
	if !ok {
		return 0
	}

	row := heights.Row(coord.Y)
	left := slices.Clone(row[:coord.X])
	slices.Reverse(left)
	column := heights.Column(coord.X)
	up := slices.Clone(column[:coord.Y])
	slices.Reverse(up)

	score := ScenicScore(1)
	for _, ray := range [][]Height{
		row[coord.X+1:],
		left,
		column[coord.Y+1:],
		up,
	} {
		score *= viewingDistance(height, ray)
	}
	return score
}

// ScenicScores returns the scenic score of every tree in heights.
func ScenicScores(heights *HeightGrid) *ScenicScoreGrid {
	return mapCoords(heights, func(coord Coord) ScenicScore {
		return ScenicScoreAt(heights, coord)
	})
}

// MaxScenicScore returns the highest score in scores, or zero if scores is
// empty.
func MaxScenicScore(scores *ScenicScoreGrid) ScenicScore {
	return MaxValue(scores)
}

// BestScenicCoord returns the first coordinate in row-major order with the
// highest score in scores. It returns false if scores is empty.
func BestScenicCoord(scores *ScenicScoreGrid) (Coord, bool) {
	if len(scores.values) == 0 {
		return Coord{}, false
	}
	index := 0
	for i, score := range scores.values {
		if score > scores.values[index] {
			index = i
		}
	}
	return Coord{
		X: index % scores.width,
		Y: index / scores.width,
	}, true
}

// viewingDistance returns the number of trees visible from a tree of the given
// height along ray, nearest first. The first tree at least as tall as the
// viewer blocks the view and is itself counted.
func viewingDistance(height Height, ray []Height) ScenicScore {
	if i := slices.IndexFunc(ray, func(h Height) bool {
		return h >= height
	}); i >= 0 {
		return ScenicScore(i + 1)
	}
	return ScenicScore(len(ray))
}
