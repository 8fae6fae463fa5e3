// Package tiling - Groessenberechnung, Zerlegung und Zusammensetzen von Tile-Rastern.
//
// MODUL: size
// ZWECK: Zielgroesse als Vielfaches der Blockgroesse bei erhaltenem Seitenverhaeltnis
// INPUT: Originalhoehe, Originalbreite, Blockgroesse
// OUTPUT: Neue Hoehe und Breite, beide positive Vielfache des Blocks
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: types/errtypes
// HINWEISE: Nie Division durch Null, ungueltige Groessen liefern InvalidDimensions
package tiling

import (
	"math"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// TargetSize rundet beide Achsen auf das naechste Vielfache von block auf
// und korrigiert die Achse, die dabei das Seitenverhaeltnis am staerksten
// verschoben hat.
func TargetSize(height, width, block int) (int, int, error) {
	if height <= 0 || width <= 0 {
		return 0, 0, errtypes.New(errtypes.KindInvalidDimensions, "target size", "invalid size %dx%d", width, height)
	}
	if block <= 0 {
		return 0, 0, errtypes.New(errtypes.KindInvalidDimensions, "target size", "invalid block size %d", block)
	}

	newH, newW := roundUp(height, block), roundUp(width, block)
	aspect := float64(width) / float64(height)
	got := float64(newW) / float64(newH)

	switch {
	case got > aspect:
		newW = roundUp(int(math.Round(float64(newH)*aspect)), block)
	case got < aspect:
		newH = roundUp(int(math.Round(float64(newW)/aspect)), block)
	}
	return newH, newW, nil
}

// roundUp rundet n auf das naechste Vielfache von block, mindestens block
func roundUp(n, block int) int {
	if n <= 0 {
		return block
	}
	return (n + block - 1) / block * block
}
