package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for data which is neither raster image Go
// can decode nor SVG.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Logo is an image prepared for embedding on the cover page. Data is always
// opaque PNG.
type Logo struct {
	Data   []byte
	Width  int
	Height int
}

// Aspect returns height to width ratio of the logo.
func (l *Logo) Aspect() float64 {
	if l == nil || l.Width == 0 {
		return 0
	}
	return float64(l.Height) / float64(l.Width)
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(head, []byte("<svg"))
}

// PrepareLogo decodes image data (any raster format supported by decoders
// or SVG), fits it into maxW x maxH keeping aspect ratio, removes
// transparency and encodes the result as PNG. Grayscale images are stored
// with a single channel.
func PrepareLogo(data []byte, maxW, maxH int, log *zap.Logger) (*Logo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty logo: %w", ErrUnsupportedImage)
	}

	var (
		img  image.Image
		kind = "svg"
		err  error
	)
	switch {
	case filetype.IsImage(data):
		if img, kind, err = image.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("unable to decode logo: %w", err)
		}
	case isSVG(data):
		if img, err = RasterizeSVGToImage(data, maxW, maxH); err != nil {
			return nil, fmt.Errorf("unable to rasterize logo: %w", err)
		}
	default:
		return nil, ErrUnsupportedImage
	}

	b := img.Bounds()
	if b.Dx() > maxW || b.Dy() > maxH {
		log.Debug("Resizing logo", zap.String("type", kind), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		log.Debug("Removing logo transparency", zap.String("type", kind))
		opaque := image.NewRGBA(img.Bounds())
		draw.Draw(opaque, img.Bounds(), &image.Uniform{color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
		draw.Draw(opaque, img.Bounds(), img, img.Bounds().Min, draw.Over)
		img = opaque
	}
	if IsGrayscale(img) {
		img = toGray(img)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode logo: %w", err)
	}
	return &Logo{
		Data:   buf.Bytes(),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
