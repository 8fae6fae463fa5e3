// MODUL: finalize
// ZWECK: Modell-Ausgabetensor zurueck in ein Bild der Originalgroesse wandeln
// INPUT: Tensor (1, H, W, C), Zielgroesse
// OUTPUT: *image.Gray (C=1) oder *image.NRGBA (C=3/4) in exakt der Zielgroesse
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: disintegration/imaging (Crop, Lanczos)
// HINWEISE: Crop ab (0,0) macht das Padding aus Prepare rueckgaengig

package vision

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Finalize wandelt einen Ausgabetensor in ein Bild mit exakt original
// als Groesse. Ist die Ausgabe auf beiden Achsen mindestens so gross wie
// original, wird ab (0,0) zugeschnitten; eine verbleibende Abweichung wird
// mit Lanczos ausgeglichen.
func Finalize(t Tensor, original image.Point) (image.Image, error) {
	if original.X <= 0 || original.Y <= 0 {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "finalize", "ungueltige Zielgroesse %dx%d", original.X, original.Y)
	}
	h, w, c, err := t.ImageDims()
	if err != nil {
		return nil, err
	}

	img := tensorImage(t.Data, h, w, c)
	gray := c == 1

	if w >= original.X && h >= original.Y && (w != original.X || h != original.Y) {
		img = imaging.Crop(img, image.Rect(0, 0, original.X, original.Y))
	}

	if img.Bounds().Dx() != original.X || img.Bounds().Dy() != original.Y {
		img, err = Resize(img, original.X, original.Y)
		if err != nil {
			return nil, err
		}
	}

	if gray {
		if _, ok := img.(*image.Gray); !ok {
			img = Luminance(img)
		}
	}
	return img, nil
}

// tensorImage baut das Rasterbild aus NHWC-Daten, Batch-Dimension schon entfernt
func tensorImage(data []float32, h, w, c int) image.Image {
	if c == 1 {
		gray := image.NewGray(image.Rect(0, 0, w, h))
		for i, v := range data {
			gray.Pix[i] = toByte(v)
		}
		return gray
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < h*w; i++ {
		px := data[i*c : i*c+c]
		a := uint8(255)
		if c == 4 {
			a = toByte(px[3])
		}
		rgba.SetNRGBA(i%w, i/w, color.NRGBA{R: toByte(px[0]), G: toByte(px[1]), B: toByte(px[2]), A: a})
	}
	return rgba
}

// toByte skaliert [0,1] auf [0,255] mit Clamping. NaN wird zu 0.
func toByte(v float32) uint8 {
	f := math.Round(float64(v) * 255)
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f)
}
