package images

import "testing"

func TestRasterizeSVGToImage(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`)

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "intrinsic", wantW: 100, wantH: 50},
		{name: "scale_by_width", w: 200, wantW: 200, wantH: 100},
		{name: "scale_by_height", h: 200, wantW: 400, wantH: 200},
		{name: "fit_box", w: 150, h: 150, wantW: 150, wantH: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeSVGToImage(svg, tt.w, tt.h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Fatalf("unexpected bounds: %v, want %dx%d", img.Bounds(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRasterizeSVGToImage_ClampsHugeViewBox(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100000 50000"><rect width="10" height="10"/></svg>`)

	img, err := RasterizeSVGToImage(svg, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != maxRasterDim || img.Bounds().Dy() != maxRasterDim/2 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
}
