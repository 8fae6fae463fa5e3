// MODUL: palette
// ZWECK: Dominante Farben eines kolorierten Bildes fuer die API-Antwort
// INPUT: image.Image, Anzahl Farben
// OUTPUT: []Swatch (Hex + Gewicht), absteigend nach Gewicht
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: cenkalti/dominantcolor, lucasb-eyer/go-colorful
// HINWEISE: Graubilder liefern graue Swatches, das ist erwartet

package vision

import (
	"image"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// Swatch ist eine dominante Farbe mit ihrem Flaechenanteil
type Swatch struct {
	Hex    string  `json:"hex"`
	Weight float64 `json:"weight"`
}

// Palette bestimmt bis zu k dominante Farben
func Palette(img image.Image, k int) []Swatch {
	if k <= 0 || img == nil {
		return nil
	}

	found := dominantcolor.FindWeight(img, k)
	swatches := make([]Swatch, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		swatches = append(swatches, Swatch{Hex: col.Clamped().Hex(), Weight: float64(c.Weight)})
	}

	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Weight > swatches[j].Weight
	})
	return swatches
}
