// MODUL: tensor
// ZWECK: Tensor-Typ und Layout-Konvertierung fuer Modell-Ein- und Ausgaben
// INPUT: Shape und float32-Daten
// OUTPUT: Tensor, validierte Bild-Dimensionen, CHW/HWC-Layouts
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Kanonisches Layout ist NHWC, NCHW nur fuer Modelle die es verlangen

package vision

import (
	"fmt"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Tensor ist ein dichter float32-Puffer mit Shape. Ein Tensor gehoert genau
// einem Prepare/Finalize-Aufruf und wird nicht zwischen Tiles geteilt.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor erstellt einen Tensor und prueft, dass Shape und Daten passen
func NewTensor(shape []int, data []float32) (Tensor, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return Tensor{}, errtypes.New(errtypes.KindShapeMismatch, "tensor", "ungueltige Dimension in %v", shape)
		}
		n *= d
	}
	if len(data) != n {
		return Tensor{}, errtypes.New(errtypes.KindShapeMismatch, "tensor", "shape %v erwartet %d Werte, %d erhalten", shape, n, len(data))
	}
	return Tensor{Shape: shape, Data: data}, nil
}

// Len gibt die Anzahl Elemente laut Shape zurueck
func (t Tensor) Len() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

func (t Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.Shape)
}

// ImageDims validiert einen NHWC-Bildtensor (1,H,W,C) und gibt H, W, C zurueck
func (t Tensor) ImageDims() (h, w, c int, err error) {
	if len(t.Shape) != 4 {
		return 0, 0, 0, errtypes.New(errtypes.KindShapeMismatch, "tensor", "rank %d, erwartet 4 (NHWC)", len(t.Shape))
	}
	if t.Shape[0] != 1 {
		return 0, 0, 0, errtypes.New(errtypes.KindShapeMismatch, "tensor", "batch %d, erwartet 1", t.Shape[0])
	}
	h, w, c = t.Shape[1], t.Shape[2], t.Shape[3]
	if h <= 0 || w <= 0 {
		return 0, 0, 0, errtypes.New(errtypes.KindShapeMismatch, "tensor", "leere Bildflaeche %dx%d", w, h)
	}
	switch c {
	case 1, 3, 4:
	default:
		return 0, 0, 0, errtypes.New(errtypes.KindShapeMismatch, "tensor", "%d Kanaele, erwartet 1, 3 oder 4", c)
	}
	if len(t.Data) != h*w*c {
		return 0, 0, 0, errtypes.New(errtypes.KindShapeMismatch, "tensor", "shape %v erwartet %d Werte, %d erhalten", t.Shape, h*w*c, len(t.Data))
	}
	return h, w, c, nil
}

// Scores gibt die Klassen-Scores eines Klassifikator-Tensors zurueck.
// Akzeptiert (N) und (1,N).
func (t Tensor) Scores() ([]float32, error) {
	switch {
	case len(t.Shape) == 1:
	case len(t.Shape) == 2 && t.Shape[0] == 1:
	default:
		return nil, errtypes.New(errtypes.KindShapeMismatch, "tensor", "scores shape %v, erwartet (N) oder (1,N)", t.Shape)
	}
	if len(t.Data) != t.Len() {
		return nil, errtypes.New(errtypes.KindShapeMismatch, "tensor", "shape %v passt nicht zu %d Werten", t.Shape, len(t.Data))
	}
	return t.Data, nil
}

// CHWTensorLayout konvertiert HWC zu CHW Layout
// Input: hwc Tensor mit Dimensionen [h, w, c]
// Output: chw Tensor mit Dimensionen [c, h, w]
func CHWTensorLayout(hwc []float32, h, w, c int) []float32 {
	if len(hwc) != h*w*c {
		return nil
	}

	chw := make([]float32, len(hwc))
	planeSize := h * w

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcIdx := (y*w + x) * c
			dstBase := y*w + x

			for ch := 0; ch < c; ch++ {
				chw[ch*planeSize+dstBase] = hwc[srcIdx+ch]
			}
		}
	}

	return chw
}

// HWCTensorLayout konvertiert CHW zu HWC Layout
// Input: chw Tensor mit Dimensionen [c, h, w]
// Output: hwc Tensor mit Dimensionen [h, w, c]
func HWCTensorLayout(chw []float32, c, h, w int) []float32 {
	if len(chw) != c*h*w {
		return nil
	}

	hwc := make([]float32, len(chw))
	planeSize := h * w

	for ch := 0; ch < c; ch++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				hwc[(y*w+x)*c+ch] = chw[ch*planeSize+y*w+x]
			}
		}
	}

	return hwc
}
