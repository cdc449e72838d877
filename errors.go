package treetop

import "errors"

var (
	// ErrShape is returned when the dimensions of a grid are inconsistent.
	ErrShape = errors.New("treetop: invalid shape")

	// ErrParse is returned when input cannot be converted into heights.
	ErrParse = errors.New("treetop: parse error")
)
