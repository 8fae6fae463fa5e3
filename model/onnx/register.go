// MODUL: onnx/register
// ZWECK: Registriert das "onnx" Backend in der globalen Modell-Registry
// NEBENEFFEKTE: Registriert "onnx" Factory bei Package-Import
// HINWEISE: Import mit _ "github.com/7blacky7/sarcolor/model/onnx"

package onnx

import (
	"errors"

	"github.com/7blacky7/sarcolor/model"
)

func init() {
	model.MustRegister("onnx", func(spec model.Spec) (model.Handle, error) {
		if spec.Path == "" {
			return nil, errors.New("onnx: path required")
		}
		opts, err := OptionsFromSpec(spec)
		if err != nil {
			return nil, err
		}
		s, err := newSession(spec.Path, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
