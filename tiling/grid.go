// MODUL: grid
// ZWECK: Bild in ein zeilenweises Tile-Raster zerlegen und wieder zusammensetzen
// INPUT: image.Image mit Vielfachen der Tile-Groesse / Grid
// OUTPUT: Grid [row][col] bzw. *image.NRGBA
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: disintegration/imaging (Crop, New), golang.org/x/image/draw
// HINWEISE: Restpixel bei verletzter Vorbedingung werden verworfen, kein Blending an Naehten

package tiling

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Grid ist ein zeilenweises Raster gleich grosser Tiles, Tiles[row][col]
type Grid struct {
	Rows, Cols int
	Tiles      [][]image.Image
}

// NewGrid legt ein leeres rows x cols Raster an
func NewGrid(rows, cols int) *Grid {
	g := &Grid{Rows: rows, Cols: cols, Tiles: make([][]image.Image, rows)}
	for r := range g.Tiles {
		g.Tiles[r] = make([]image.Image, cols)
	}
	return g
}

// Len gibt die Anzahl Tiles zurueck
func (g *Grid) Len() int {
	return g.Rows * g.Cols
}

// At gibt das Tile mit zeilenweisem Index i zurueck
func (g *Grid) At(i int) image.Image {
	return g.Tiles[i/g.Cols][i%g.Cols]
}

// Set setzt das Tile mit zeilenweisem Index i
func (g *Grid) Set(i int, img image.Image) {
	g.Tiles[i/g.Cols][i%g.Cols] = img
}

// Split zerlegt img in nicht ueberlappende tile x tile Bloecke
func Split(img image.Image, tile int) (*Grid, error) {
	if tile <= 0 {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "split", "invalid tile size %d", tile)
	}
	b := img.Bounds()
	rows, cols := b.Dy()/tile, b.Dx()/tile
	if rows == 0 || cols == 0 {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "split", "image %dx%d smaller than tile %d", b.Dx(), b.Dy(), tile)
	}

	g := NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			at := b.Min.Add(image.Pt(c*tile, r*tile))
			g.Tiles[r][c] = imaging.Crop(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(tile, tile))})
		}
	}
	return g, nil
}

// Reconstruct setzt ein Raster gleich grosser Tiles zusammen. Tile (r,c)
// landet bei (c*w, r*h).
func Reconstruct(g *Grid) (*image.NRGBA, error) {
	if g == nil || g.Rows <= 0 || g.Cols <= 0 || len(g.Tiles) != g.Rows {
		return nil, errtypes.New(errtypes.KindShapeMismatch, "reconstruct", "empty grid")
	}

	var size image.Point
	for r, row := range g.Tiles {
		if len(row) != g.Cols {
			return nil, errtypes.New(errtypes.KindShapeMismatch, "reconstruct", "row %d has %d tiles, want %d", r, len(row), g.Cols)
		}
		for c, t := range row {
			if t == nil {
				return nil, errtypes.New(errtypes.KindShapeMismatch, "reconstruct", "tile (%d,%d) missing", r, c)
			}
			s := t.Bounds().Size()
			if r == 0 && c == 0 {
				size = s
			} else if s != size {
				return nil, errtypes.New(errtypes.KindShapeMismatch, "reconstruct", "tile (%d,%d) is %v, want %v", r, c, s, size)
			}
		}
	}

	out := imaging.New(g.Cols*size.X, g.Rows*size.Y, color.NRGBA{})
	for r, row := range g.Tiles {
		for c, t := range row {
			dst := image.Rect(c*size.X, r*size.Y, (c+1)*size.X, (r+1)*size.Y)
			draw.Draw(out, dst, t, t.Bounds().Min, draw.Src)
		}
	}
	return out, nil
}
