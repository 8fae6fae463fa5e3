// Package linear - Klassifikator aus Histogramm-Merkmalen und einer linearen Schicht.
//
// Merkmale je Tile: Bins-stufiges Intensitaets-Histogramm (relativ),
// Mittelwert und Standardabweichung. Gewichte liegen als lut.Table mit
// Klassen x (Features+1) vor, die letzte Spalte ist der Bias.
package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/model/lut"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// Bins ist die Anzahl Histogramm-Klassen
const Bins = 16

// Features ist die Laenge des Merkmalsvektors
const Features = Bins + 2

// Classifier ist ein linearer Klassifikator mit Softmax-Ausgabe
type Classifier struct {
	weights *mat.Dense
	classes int
}

// New uebernimmt eine Gewichtstabelle (Klassen x Features+1)
func New(t *lut.Table) (*Classifier, error) {
	if t.Cols != Features+1 {
		return nil, fmt.Errorf("linear: expected %d columns, got %d", Features+1, t.Cols)
	}
	data := make([]float64, len(t.Data))
	for i, v := range t.Data {
		data[i] = float64(v)
	}
	return &Classifier{weights: mat.NewDense(t.Rows, t.Cols, data), classes: t.Rows}, nil
}

// Classes gibt die Anzahl Klassen zurueck
func (c *Classifier) Classes() int {
	return c.classes
}

// Extract berechnet den Merkmalsvektor eines Graustufen-Tensors
func Extract(in vision.Tensor) ([]float64, error) {
	_, _, ch, err := in.ImageDims()
	if err != nil {
		return nil, err
	}
	if ch != 1 {
		return nil, errtypes.New(errtypes.KindShapeMismatch, "linear", "expected 1 channel, got %d", ch)
	}

	x := make([]float64, len(in.Data))
	f := make([]float64, Features)
	for i, v := range in.Data {
		x[i] = float64(v)
		bin := int(x[i] * Bins)
		f[min(max(bin, 0), Bins-1)]++
	}
	floats.Scale(1/float64(len(x)), f[:Bins])
	f[Bins], f[Bins+1] = stat.MeanStdDev(x, nil)
	if math.IsNaN(f[Bins+1]) {
		f[Bins+1] = 0
	}
	return f, nil
}

// Predict gibt Klassenwahrscheinlichkeiten (1, Klassen) zurueck
func (c *Classifier) Predict(in vision.Tensor) (vision.Tensor, error) {
	f, err := Extract(in)
	if err != nil {
		return vision.Tensor{}, err
	}

	var logits mat.VecDense
	logits.MulVec(c.weights, mat.NewVecDense(Features+1, append(f, 1)))

	raw := logits.RawVector().Data
	lse := floats.LogSumExp(raw)
	out := make([]float32, c.classes)
	for i, v := range raw {
		out[i] = float32(math.Exp(v - lse))
	}
	return vision.Tensor{Shape: []int{1, c.classes}, Data: out}, nil
}

func init() {
	model.MustRegister("linear", func(spec model.Spec) (model.Handle, error) {
		if spec.Path == "" {
			return nil, fmt.Errorf("linear: path required")
		}
		t, err := lut.LoadTable(spec.Path)
		if err != nil {
			return nil, err
		}
		return New(t)
	})
}
