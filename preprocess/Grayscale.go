// Package preprocess converts raw rendered frames into the small,
// normalized feature frames consumed by value networks
package preprocess

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Preprocessor converts a raw frame into a single-channel feature
// frame. Implementations must be deterministic.
type Preprocessor interface {
	Process(image.Image) (*mat.Dense, error)
}

// Grayscale crops a raw frame to a region of interest, converts it to
// grayscale, resizes it with bilinear interpolation, and scales pixel
// intensities into [0, 1]. Row i of a feature frame corresponds to
// the i-th horizontal band of the cropped region, top first.
type Grayscale struct {
	crop          image.Rectangle
	height, width int
}

// NewGrayscale returns a Grayscale preprocessor producing height×width
// feature frames from the crop region of each raw frame. The crop
// region is relative to the bounds of the raw frame.
func NewGrayscale(crop image.Rectangle, height, width int) (*Grayscale,
	error) {
	if crop.Empty() {
		return nil, fmt.Errorf("newGrayscale: empty crop region %v", crop)
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("newGrayscale: feature frame size must be "+
			"positive\n\thave(%v×%v)", height, width)
	}

	return &Grayscale{crop: crop, height: height, width: width}, nil
}

// Process implements the Preprocessor interface
func (g *Grayscale) Process(raw image.Image) (*mat.Dense, error) {
	if raw == nil {
		return nil, fmt.Errorf("process: nil frame")
	}
	crop := g.crop.Add(raw.Bounds().Min)
	if !crop.In(raw.Bounds()) {
		return nil, fmt.Errorf("process: crop region %v outside of frame "+
			"%v", g.crop, raw.Bounds())
	}

	small := image.NewGray(image.Rect(0, 0, g.width, g.height))
	draw.BiLinear.Scale(small, small.Bounds(), raw, crop, draw.Src, nil)

	data := make([]float64, g.height*g.width)
	for y := 0; y < g.height; y++ {
		row := small.Pix[y*small.Stride : y*small.Stride+g.width]
		for x, v := range row {
			data[y*g.width+x] = float64(v) / 255.0
		}
	}

	return mat.NewDense(g.height, g.width, data), nil
}

// Height returns the number of rows in a feature frame
func (g *Grayscale) Height() int {
	return g.height
}

// Width returns the number of columns in a feature frame
func (g *Grayscale) Width() int {
	return g.width
}
