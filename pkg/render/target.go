package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/willbeason/multibrot/pkg/palette"
)

// Image is a Target backed by an *image.RGBA.
type Image struct {
	*image.RGBA
}

func NewImage(width, height int) *Image {
	return &Image{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (img *Image) Width() int {
	return img.Rect.Dx()
}

func (img *Image) Height() int {
	return img.Rect.Dy()
}

// SetPixel writes an opaque pixel. (x, y) is relative to the image origin.
func (img *Image) SetPixel(x, y int, c palette.RGB) {
	img.SetRGBA(img.Rect.Min.X+x, img.Rect.Min.Y+y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
}

// Pixmap is a Target backed by a gg pixmap, which the command line tools save as PNG.
type Pixmap struct {
	*gg.Pixmap
}

func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{Pixmap: gg.NewPixmap(width, height)}
}

// SetPixel writes the channels straight into the pixmap's RGBA buffer so they
// survive without a round trip through floating point.
func (p *Pixmap) SetPixel(x, y int, c palette.RGB) {
	if x < 0 || x >= p.Width() || y < 0 || y >= p.Height() {
		return
	}

	i := (y*p.Width() + x) * 4
	data := p.Data()
	data[i+0] = c.R
	data[i+1] = c.G
	data[i+2] = c.B
	data[i+3] = 0xff
}

var (
	_ Target = (*Image)(nil)
	_ Target = (*Pixmap)(nil)
)
