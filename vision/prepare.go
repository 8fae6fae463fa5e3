// MODUL: prepare
// ZWECK: Bildbereich in den festen Eingabetensor eines Modells umwandeln
// INPUT: image.Image beliebiger Groesse, Modell-Eingabegroesse
// OUTPUT: Tensor (1, size, size, 1) mit Werten in [0,1]
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: disintegration/imaging (Lanczos), golang.org/x/image/draw
// HINWEISE: Padding immer unten/rechts mit Nullen, nie zentriert

package vision

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Prepare konvertiert ein Bild in den Modell-Eingabetensor.
// Groessere Bilder (eine Achse > size) werden auf size x size skaliert,
// kleinere bei (0,0) in eine schwarze size x size Flaeche gelegt.
func Prepare(img image.Image, size int) (Tensor, error) {
	if size <= 0 {
		return Tensor{}, errtypes.New(errtypes.KindInvalidDimensions, "prepare", "ungueltige Eingabegroesse %d", size)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Tensor{}, errtypes.New(errtypes.KindInvalidDimensions, "prepare", "leeres Bild %dx%d", b.Dx(), b.Dy())
	}

	gray := Luminance(img)
	if b.Dx() > size || b.Dy() > size {
		resized, err := Resize(gray, size, size)
		if err != nil {
			return Tensor{}, err
		}
		gray = Luminance(resized)
	} else {
		gray = padGray(gray, size)
	}

	data := make([]float32, size*size)
	for y := 0; y < size; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+size]
		for x, p := range row {
			data[y*size+x] = float32(p) / 255.0
		}
	}

	return Tensor{Shape: []int{1, size, size, 1}, Data: data}, nil
}

// padGray legt src bei (0,0) in ein size x size Graubild. Der Rest bleibt 0.
func padGray(src *image.Gray, size int) *image.Gray {
	if src.Bounds().Dx() == size && src.Bounds().Dy() == size {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, size, size))
	draw.Draw(dst, src.Bounds(), src, image.Point{}, draw.Src)
	return dst
}
