//go:build !(onnx && cgo)

// MODUL: onnx/stub
// ZWECK: Stub-Implementierung ohne onnxruntime (Build ohne "onnx" Tag oder ohne CGO)
// HINWEISE: Das Backend bleibt registriert, damit Manifeste einen klaren Fehler liefern

package onnx

import (
	"errors"

	"github.com/7blacky7/sarcolor/vision"
)

// Available meldet, ob dieser Build ONNX-Modelle ausfuehren kann
const Available = false

// ErrUnavailable wird zurueckgegeben wenn onnxruntime nicht eingebaut ist
var ErrUnavailable = errors.New("onnx: built without onnxruntime (use -tags onnx with cgo)")

// Session Stub
type Session struct{}

// Predict Stub
func (s *Session) Predict(vision.Tensor) (vision.Tensor, error) {
	return vision.Tensor{}, ErrUnavailable
}

// Close Stub
func (s *Session) Close() error {
	return nil
}

// DestroyRuntime Stub
func DestroyRuntime() error {
	return nil
}

func newSession(string, SessionOptions) (*Session, error) {
	return nil, ErrUnavailable
}
