// Package imagecodec turns encoded photos into the RGB pixel arrays the face
// models consume.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	// additional decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the input is not a readable image.
var ErrDecode = errors.New("image decode failed")

const jpegQuality = 95

// Image is a decoded photo: Height rows of Width pixels, 3 bytes (R, G, B) per
// pixel, row-major.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decode reads JPEG, PNG, GIF, BMP, TIFF or WebP bytes into an RGB Image.
// EXIF orientation is applied; alpha is discarded.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}

	return fromNRGBA(imaging.Clone(src)), nil
}

// New allocates a black image of the given size.
func New(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

func fromNRGBA(src *image.NRGBA) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy())
	for y := 0; y < img.Height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+img.Width*4]
		dst := img.Pix[y*img.Width*3 : (y+1)*img.Width*3]
		for x := 0; x < img.Width; x++ {
			dst[x*3] = row[x*4]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return img
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return color.RGBA{}
	}
	i := (y*m.Width + x) * 3
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 0xff}
}

// Set writes one pixel. Out-of-bounds coordinates are ignored.
func (m *Image) Set(x, y int, r, g, b uint8) {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return
	}
	i := (y*m.Width + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Crop returns a copy of the region r intersected with the image bounds.
// The result is empty when they do not overlap.
func (m *Image) Crop(r image.Rectangle) *Image {
	r = r.Intersect(m.Bounds())
	if r.Empty() {
		return New(0, 0)
	}
	return fromNRGBA(imaging.Crop(m, r))
}

// Empty reports whether the image has no pixels.
func (m *Image) Empty() bool {
	return m == nil || m.Width == 0 || m.Height == 0
}

// EncodeJPEG writes the image as JPEG.
func (m *Image) EncodeJPEG(w io.Writer) error {
	return imaging.Encode(w, m, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
}

// EncodePNG writes the image as PNG.
func (m *Image) EncodePNG(w io.Writer) error {
	return imaging.Encode(w, m, imaging.PNG)
}

// JPEG is EncodeJPEG into a byte slice.
func (m *Image) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.EncodeJPEG(&buf); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
