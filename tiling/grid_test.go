package tiling

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// pattern erzeugt ein Bild mit eindeutigen Pixelwerten
func pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func TestSplit(t *testing.T) {
	g, err := Split(pattern(12, 8), 4)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 || g.Len() != 6 {
		t.Fatalf("Grid = %dx%d, erwartet 2x3", g.Rows, g.Cols)
	}

	// Tile (1,2) beginnt bei x=8, y=4
	tile := g.Tiles[1][2]
	if s := tile.Bounds().Size(); s != image.Pt(4, 4) {
		t.Fatalf("Tile-Groesse = %v", s)
	}
	want := color.NRGBA{R: 8, G: 4, B: 8 ^ 4, A: 255}
	if got := color.NRGBAModel.Convert(tile.At(tile.Bounds().Min.X, tile.Bounds().Min.Y)); got != want {
		t.Errorf("Tile (1,2) Ursprung = %v, erwartet %v", got, want)
	}

	if g.At(5) != g.Tiles[1][2] {
		t.Error("At(5) ist nicht Tile (1,2)")
	}
}

func TestSplitDropsRemainder(t *testing.T) {
	g, err := Split(pattern(10, 9), 4)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if g.Rows != 2 || g.Cols != 2 {
		t.Errorf("Grid = %dx%d, erwartet 2x2", g.Rows, g.Cols)
	}
}

func TestSplitOffsetBounds(t *testing.T) {
	img := pattern(16, 16).SubImage(image.Rect(4, 4, 12, 12))
	g, err := Split(img, 4)
	if err != nil {
		t.Fatal(err)
	}
	tile := g.Tiles[0][0]
	want := color.NRGBA{R: 4, G: 4, B: 0, A: 255}
	if got := color.NRGBAModel.Convert(tile.At(tile.Bounds().Min.X, tile.Bounds().Min.Y)); got != want {
		t.Errorf("Tile (0,0) = %v, erwartet %v", got, want)
	}
}

func TestSplitInvalid(t *testing.T) {
	if _, err := Split(pattern(8, 8), 0); !errors.Is(err, errtypes.ErrInvalidDimensions) {
		t.Errorf("Split(tile 0) error = %v", err)
	}
	if _, err := Split(pattern(3, 8), 4); !errors.Is(err, errtypes.ErrInvalidDimensions) {
		t.Errorf("Split(3x8) error = %v", err)
	}
}

func TestReconstructRoundtrip(t *testing.T) {
	for _, size := range []image.Point{{4, 4}, {12, 8}, {8, 20}, {128, 256}} {
		src := pattern(size.X, size.Y)
		g, err := Split(src, 4)
		if err != nil {
			t.Fatal(err)
		}

		out, err := Reconstruct(g)
		if err != nil {
			t.Fatalf("Reconstruct() error = %v", err)
		}
		if out.Bounds() != src.Bounds() {
			t.Fatalf("Bounds = %v, erwartet %v", out.Bounds(), src.Bounds())
		}
		if diff := cmp.Diff(src.Pix, out.Pix); diff != "" {
			t.Errorf("%v: Pixel mismatch (-want +got):\n%s", size, diff)
		}
	}
}

func TestReconstructGray(t *testing.T) {
	g := NewGrid(1, 2)
	left := image.NewGray(image.Rect(0, 0, 2, 2))
	right := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range right.Pix {
		right.Pix[i] = 200
	}
	g.Set(0, left)
	g.Set(1, right)

	out, err := Reconstruct(g)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(4, 2) {
		t.Fatalf("Groesse = %v", out.Bounds().Size())
	}
	if c := out.NRGBAAt(3, 1); c != (color.NRGBA{200, 200, 200, 255}) {
		t.Errorf("rechtes Tile = %v", c)
	}
}

func TestReconstructShapeMismatch(t *testing.T) {
	g := NewGrid(1, 2)
	g.Set(0, pattern(4, 4))
	g.Set(1, pattern(4, 3))
	if _, err := Reconstruct(g); !errors.Is(err, errtypes.ErrShapeMismatch) {
		t.Errorf("gemischte Groessen error = %v", err)
	}

	g = NewGrid(1, 2)
	g.Set(0, pattern(4, 4))
	if _, err := Reconstruct(g); !errors.Is(err, errtypes.ErrShapeMismatch) {
		t.Errorf("fehlendes Tile error = %v", err)
	}

	if _, err := Reconstruct(&Grid{}); !errors.Is(err, errtypes.ErrShapeMismatch) {
		t.Errorf("leeres Grid error = %v", err)
	}
}
