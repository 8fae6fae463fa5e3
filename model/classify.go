package model

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// Classify fuehrt den Klassifikator aus und gibt den Index des hoechsten
// Scores zurueck. Gleichstand gewinnt der kleinste Index, NaN gewinnt nie.
func Classify(h Handle, t vision.Tensor) (ClassID, error) {
	if h == nil {
		return 0, errtypes.New(errtypes.KindConfiguration, "classify", "no classifier")
	}

	out, err := h.Predict(t)
	if err != nil {
		return 0, errtypes.Wrap(errtypes.KindModelInference, "classify", err)
	}

	scores, err := out.Scores()
	if err != nil {
		return 0, err
	}
	return argmax(scores)
}

// argmax ist die erste Position des Maximums
func argmax(scores []float32) (ClassID, error) {
	vals := make([]float64, len(scores))
	valid := false
	for i, s := range scores {
		v := float64(s)
		if math.IsNaN(v) {
			v = math.Inf(-1)
		} else {
			valid = true
		}
		vals[i] = v
	}
	if !valid {
		return 0, errtypes.New(errtypes.KindUnclassifiableInput, "classify", "no valid class score in %d outputs", len(scores))
	}
	return ClassID(floats.MaxIdx(vals)), nil
}
