package treetop

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"

	"github.com/google/tiff"
	_ "github.com/google/tiff/geotiff" // Height maps exported by GIS tools carry GeoTIFF tags.
	xtiff "golang.org/x/image/tiff"
)

// A heightTIFFIFD is a struct into which github.com/google/tiff can unmarshal
// the IFD of a height map.
type heightTIFFIFD struct {
	ImageWidth                uint16   `tiff:"field,tag=256"`
	ImageLength               uint16   `tiff:"field,tag=257"`
	BitsPerSample             []uint16 `tiff:"field,tag=258"`
	Compression               uint16   `tiff:"field,tag=259"`
	PhotometricInterpretation uint16   `tiff:"field,tag=262"`
	SamplesPerPixel           uint16   `tiff:"field,tag=277"`
}

// TIFF compression schemes that golang.org/x/image/tiff can decode.
const (
	compressionNone     = 1
	compressionLZW      = 5
	compressionDeflate  = 8
	compressionPackBits = 32773
)

// photometricBlackIsZero is the only photometric interpretation in which a
// pixel value is the height itself.
const photometricBlackIsZero = 1

// DecodeHeightGridTIFF decodes a grid of heights from a single band 8-bit
// grayscale TIFF image read from r. Each pixel is one tree.
func DecodeHeightGridTIFF(r io.Reader) (*HeightGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tiffTIFF, err := tiff.Parse(bytes.NewReader(data), tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1: %w", len(tiffTIFF.IFDs()), errors.ErrUnsupported)
	}

	var ifd heightTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if len(ifd.BitsPerSample) != 1 || ifd.BitsPerSample[0] != 8 ||
		ifd.SamplesPerPixel != 1 ||
		ifd.PhotometricInterpretation != photometricBlackIsZero {
		return nil, errors.ErrUnsupported
	}
	switch ifd.Compression {
	case 0, compressionNone, compressionLZW, compressionDeflate, compressionPackBits:
	default:
		return nil, errors.ErrUnsupported
	}

	img, err := xtiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, errors.ErrUnsupported
	}

	bounds := gray.Bounds()
	if bounds.Dx() != int(ifd.ImageWidth) || bounds.Dy() != int(ifd.ImageLength) {
		return nil, fmt.Errorf("%dx%d image, expected %dx%d: %w", bounds.Dy(), bounds.Dx(), ifd.ImageLength, ifd.ImageWidth, ErrShape)
	}

	values := make([]Height, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			value := gray.GrayAt(x, y).Y
			if Height(value) > MaxHeight {
				return nil, fmt.Errorf("pixel (%d, %d): value %d: %w", x-bounds.Min.X, y-bounds.Min.Y, value, ErrParse)
			}
			values = append(values, Height(value))
		}
	}
	return NewGrid(values, bounds.Dy(), bounds.Dx())
}

// ReadHeightGridTIFF reads a grid of heights from the TIFF image filename in
// fsys.
func ReadHeightGridTIFF(fsys fs.FS, filename string) (*HeightGrid, error) {
	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeHeightGridTIFF(file)
}

// EncodeHeightGridTIFF writes heights to w as an uncompressed 8-bit grayscale
// TIFF image.
func EncodeHeightGridTIFF(w io.Writer, heights *HeightGrid) error {
	if heights.Height() == 0 || heights.Width() == 0 {
		return fmt.Errorf("empty grid: %w", ErrShape)
	}
	img := image.NewGray(image.Rect(0, 0, heights.Width(), heights.Height()))
	for coord := range heights.Coords() {
		height, _ := heights.At(coord.X, coord.Y)
		img.Pix[coord.Y*img.Stride+coord.X] = uint8(height)
	}
	return xtiff.Encode(w, img, nil)
}
