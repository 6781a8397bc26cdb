package formats

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// Image is a decoded raster image.
type Image struct {
	Path   string
	Format string
	img    image.Image
}

func decodeImage(path string, data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: %v", ErrDecodeFailed, path, err)
	}
	return &Image{Path: path, Format: format, img: img}, nil
}

// Image returns the decoded image.
func (i *Image) Image() image.Image {
	return i.img
}

// Len returns the number of pixels.
func (i *Image) Len() int {
	b := i.img.Bounds()
	return b.Dx() * b.Dy()
}

// Shape returns [height, width] for grayscale images and
// [height, width, channels] otherwise, without converting the pixels.
func (i *Image) Shape() []int {
	channels, _ := layout(i.img)
	return imageShape(i.img.Bounds(), channels)
}

func (i *Image) DType() string {
	_, dtype := layout(i.img)
	return dtype
}

func (i *Image) Array() (array.Array, error) {
	return imageArray(i.img)
}

type opaquer interface {
	Opaque() bool
}

// layout returns the channel count and the sample type of img.
func layout(img image.Image) (int, string) {
	switch img.(type) {
	case *image.Gray:
		return 1, "uint8"
	case *image.Gray16:
		return 1, "uint16"
	}

	dtype := "uint8"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64:
		dtype = "uint16"
	}
	if o, ok := img.(opaquer); ok && !o.Opaque() {
		return 4, dtype
	}
	return 3, dtype
}

func imageShape(b image.Rectangle, channels int) []int {
	if channels == 1 {
		return []int{b.Dy(), b.Dx()}
	}
	return []int{b.Dy(), b.Dx(), channels}
}

func imageArray(img image.Image) (array.Array, error) {
	channels, dtype := layout(img)
	b := img.Bounds()
	data := make([]float64, 0, b.Dx()*b.Dy()*channels)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			switch {
			case channels == 1 && dtype == "uint8":
				data = append(data, float64(color.GrayModel.Convert(c).(color.Gray).Y))
			case channels == 1:
				data = append(data, float64(color.Gray16Model.Convert(c).(color.Gray16).Y))
			case dtype == "uint8":
				p := color.NRGBAModel.Convert(c).(color.NRGBA)
				data = append(data, float64(p.R), float64(p.G), float64(p.B))
				if channels == 4 {
					data = append(data, float64(p.A))
				}
			default:
				p := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				data = append(data, float64(p.R), float64(p.G), float64(p.B))
				if channels == 4 {
					data = append(data, float64(p.A))
				}
			}
		}
	}
	return array.New(data, imageShape(b, channels), dtype)
}
