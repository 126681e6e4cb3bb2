package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestPrepareLogo(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))

	colored := image.NewNRGBA(image.Rect(0, 0, 800, 400))
	for y := range 400 {
		for x := range 800 {
			colored.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: uint8(x % 256)})
		}
	}
	gray := image.NewGray(image.Rect(0, 0, 50, 100))

	tests := []struct {
		name         string
		data         []byte
		wantW, wantH int
		wantModel    color.Model
	}{
		{name: "large transparent png", data: encodePNG(t, colored), wantW: 300, wantH: 150, wantModel: color.RGBAModel},
		{name: "small gray png", data: encodePNG(t, gray), wantW: 50, wantH: 100, wantModel: color.GrayModel},
		{
			name:      "svg",
			data:      []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50" fill="red"/></svg>`),
			wantW:     300,
			wantH:     150,
			wantModel: color.RGBAModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logo, err := PrepareLogo(tt.data, 300, 300, log)
			if err != nil {
				t.Fatalf("PrepareLogo() error = %v", err)
			}
			if logo.Width != tt.wantW || logo.Height != tt.wantH {
				t.Errorf("PrepareLogo() size = %dx%d, want %dx%d", logo.Width, logo.Height, tt.wantW, tt.wantH)
			}
			if got, want := logo.Aspect(), float64(tt.wantH)/float64(tt.wantW); got != want {
				t.Errorf("Aspect() = %v, want %v", got, want)
			}

			img, err := png.Decode(bytes.NewReader(logo.Data))
			if err != nil {
				t.Fatalf("prepared logo is not PNG: %v", err)
			}
			if img.ColorModel() != tt.wantModel {
				t.Errorf("color model = %v, want %v", img.ColorModel(), tt.wantModel)
			}
			if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
				t.Error("prepared logo is not opaque")
			}
		})
	}
}

func TestPrepareLogo_Errors(t *testing.T) {
	log := zaptest.NewLogger(t)

	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("just some words"),
		"truncated": encodePNG(t, image.NewGray(image.Rect(0, 0, 4, 4)))[:20],
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := PrepareLogo(data, 100, 100, log); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := PrepareLogo([]byte("plain"), 10, 10, log); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("PrepareLogo(text) error = %v, want ErrUnsupportedImage", err)
	}

	var nilLogo *Logo
	if nilLogo.Aspect() != 0 {
		t.Error("Aspect() of nil logo must be 0")
	}
}
