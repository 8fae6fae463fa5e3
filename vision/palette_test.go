package vision

import (
	"image/color"
	"testing"
)

func TestPalette(t *testing.T) {
	img := createImage(32, 32, color.RGBA{200, 30, 30, 255})
	for y := 0; y < 8; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{20, 120, 220, 255})
		}
	}

	swatches := Palette(img, 2)
	if len(swatches) == 0 {
		t.Fatal("Palette() liefert keine Farben")
	}
	for i := 1; i < len(swatches); i++ {
		if swatches[i].Weight > swatches[i-1].Weight {
			t.Errorf("Swatches nicht absteigend sortiert: %v", swatches)
		}
	}
	if len(swatches[0].Hex) != 7 || swatches[0].Hex[0] != '#' {
		t.Errorf("Hex = %q, erwartet #rrggbb", swatches[0].Hex)
	}

	if Palette(img, 0) != nil {
		t.Error("Palette(k=0) sollte nil liefern")
	}
}
