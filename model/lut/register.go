package lut

import (
	"errors"

	"github.com/7blacky7/sarcolor/model"
)

// DefaultColors ist ein SAR-typischer Verlauf: Wasser, Vegetation, Boden, Bebauung
var DefaultColors = []string{"#0b1d3a", "#2f6b3a", "#9c8a5a", "#e8e2d6"}

func init() {
	model.MustRegister("gradient", newGradient)
	model.MustRegister("lut", newTable)
}

func newGradient(spec model.Spec) (model.Handle, error) {
	colors := spec.Colors
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return NewGradient(colors)
}

func newTable(spec model.Spec) (model.Handle, error) {
	if spec.Path == "" {
		return nil, errors.New("lut: path required")
	}
	t, err := LoadTable(spec.Path)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}
