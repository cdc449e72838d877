package treetop

import (
	"io/fs"
	"slices"
)

// NewTextSurvey returns a Survey of text height grids in fsys.
func NewTextSurvey(fsys fs.FS, options ...SurveyOption) (*Survey, error) {
	return NewSurvey(slices.Concat(
		[]SurveyOption{
			WithFS(fsys),
			WithDecodeFunc(ReadHeightGridText),
		},
		options,
	)...)
}

// NewTIFFSurvey returns a Survey of 8-bit grayscale TIFF height grids in fsys.
func NewTIFFSurvey(fsys fs.FS, options ...SurveyOption) (*Survey, error) {
	return NewSurvey(slices.Concat(
		[]SurveyOption{
			WithFS(fsys),
			WithDecodeFunc(ReadHeightGridTIFF),
		},
		options,
	)...)
}
