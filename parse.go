package treetop

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
)

// ParseHeightGrid parses data as a grid of heights, one row per line and one
// decimal digit per tree. Leading and trailing whitespace is ignored.
func ParseHeightGrid(data []byte) (*HeightGrid, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrParse)
	}

	lines := bytes.Split(data, []byte{'\n'})
	rows := make([][]Height, len(lines))
	for i, line := range lines {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		row := make([]Height, len(line))
		for j, c := range line {
			if c < '0' || '9' < c {
				return nil, fmt.Errorf("line %d, column %d: %q: %w", i+1, j+1, c, ErrParse)
			}
			row[j] = Height(c - '0')
		}
		rows[i] = row
	}

	return NewGridFromRows(rows)
}

// ReadHeightGrid reads and parses a grid of heights from r.
func ReadHeightGrid(r io.Reader) (*HeightGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseHeightGrid(data)
}

// ReadHeightGridText reads and parses the text file filename in fsys.
func ReadHeightGridText(fsys fs.FS, filename string) (*HeightGrid, error) {
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, err
	}
	heights, err := ParseHeightGrid(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return heights, nil
}
