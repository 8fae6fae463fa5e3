// MODUL: colorizer
// ZWECK: Colorization ueber eine 256-Eintraege Farbtabelle
// INPUT: Graustufen-Tensor (1,H,W,1) in [0,1]
// OUTPUT: RGB-Tensor (1,H,W,3) in [0,1]
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: lucasb-eyer/go-colorful (Lab-Verlauf, Hex)
// HINWEISE: Gradient wird im Lab-Raum interpoliert, damit Uebergaenge gleichmaessig wirken

package lut

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// Levels ist die Anzahl Tabelleneintraege (8 bit Graustufen)
const Levels = 256

// Colorizer bildet jede Graustufe auf eine RGB-Farbe ab
type Colorizer struct {
	lut [Levels][3]float32
}

// NewGradient baut eine Tabelle aus mindestens zwei Ankerfarben (#rrggbb),
// gleichmaessig ueber [0,1] verteilt.
func NewGradient(anchors []string) (*Colorizer, error) {
	if len(anchors) < 2 {
		return nil, fmt.Errorf("lut: gradient needs at least 2 colors, got %d", len(anchors))
	}

	colors := make([]colorful.Color, len(anchors))
	for i, s := range anchors {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("lut: color %q: %w", s, err)
		}
		colors[i] = c
	}

	c := &Colorizer{}
	segments := float64(len(colors) - 1)
	for i := range Levels {
		pos := float64(i) / (Levels - 1) * segments
		seg := min(int(pos), len(colors)-2)
		col := colors[seg].BlendLab(colors[seg+1], pos-float64(seg)).Clamped()
		c.lut[i] = [3]float32{float32(col.R), float32(col.G), float32(col.B)}
	}
	return c, nil
}

// FromTable uebernimmt eine Levels x 3 Tabelle
func FromTable(t *Table) (*Colorizer, error) {
	if t.Rows != Levels || t.Cols != 3 {
		return nil, fmt.Errorf("lut: colorizer table must be %dx3, got %dx%d", Levels, t.Rows, t.Cols)
	}
	c := &Colorizer{}
	for i := range Levels {
		for ch := range 3 {
			c.lut[i][ch] = t.At(i, ch)
		}
	}
	return c, nil
}

// Table gibt die Farbtabelle als Levels x 3 Table zurueck
func (c *Colorizer) Table() *Table {
	t := &Table{Rows: Levels, Cols: 3, Data: make([]float32, 0, Levels*3)}
	for _, rgb := range c.lut {
		t.Data = append(t.Data, rgb[:]...)
	}
	return t
}

// Predict faerbt einen einkanaligen Tensor ein
func (c *Colorizer) Predict(in vision.Tensor) (vision.Tensor, error) {
	h, w, ch, err := in.ImageDims()
	if err != nil {
		return vision.Tensor{}, err
	}
	if ch != 1 {
		return vision.Tensor{}, errtypes.New(errtypes.KindShapeMismatch, "lut", "expected 1 channel, got %d", ch)
	}

	out := make([]float32, 0, h*w*3)
	for _, v := range in.Data {
		out = append(out, c.lut[level(v)][:]...)
	}
	return vision.Tensor{Shape: []int{1, h, w, 3}, Data: out}, nil
}

func level(v float32) int {
	f := math.Round(float64(v) * (Levels - 1))
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > Levels-1:
		return Levels - 1
	}
	return int(f)
}
