// MODUL: onnx/options
// ZWECK: Session-Optionen aus einem Manifest-Eintrag ableiten
// INPUT: model.Spec
// OUTPUT: SessionOptions
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: model (Spec)
// HINWEISE: Gilt fuer beide Builds (mit und ohne onnxruntime)

package onnx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/7blacky7/sarcolor/model"
)

// Default-Tensornamen
const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// SessionOptions konfiguriert die ONNX Session
type SessionOptions struct {
	// InputName ist der ONNX Input-Tensor Name
	InputName string

	// OutputName ist der ONNX Output-Tensor Name
	OutputName string

	// ChannelFirst: Modell erwartet NCHW statt NHWC
	ChannelFirst bool

	// NumThreads fuer Intra-Op Parallelisierung (0 = auto)
	NumThreads int

	// UseGPU aktiviert CUDA Execution Provider
	UseGPU bool

	// GPUDeviceID ist die GPU Index (Standard: 0)
	GPUDeviceID int
}

// DefaultSessionOptions gibt Standard-Optionen zurueck
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		InputName:  DefaultInputName,
		OutputName: DefaultOutputName,
	}
}

// OptionsFromSpec liest Tensornamen, Layout und options (threads, gpu, device)
func OptionsFromSpec(spec model.Spec) (SessionOptions, error) {
	opts := DefaultSessionOptions()
	if spec.Input != "" {
		opts.InputName = spec.Input
	}
	if spec.Output != "" {
		opts.OutputName = spec.Output
	}

	switch strings.ToLower(spec.Layout) {
	case "", "nhwc":
	case "nchw":
		opts.ChannelFirst = true
	default:
		return opts, fmt.Errorf("onnx: unknown layout %q", spec.Layout)
	}

	var err error
	if s, ok := spec.Options["threads"]; ok {
		if opts.NumThreads, err = strconv.Atoi(s); err != nil {
			return opts, fmt.Errorf("onnx: threads: %w", err)
		}
	}
	if s, ok := spec.Options["gpu"]; ok {
		if opts.UseGPU, err = strconv.ParseBool(s); err != nil {
			return opts, fmt.Errorf("onnx: gpu: %w", err)
		}
	}
	if s, ok := spec.Options["device"]; ok {
		if opts.GPUDeviceID, err = strconv.Atoi(s); err != nil {
			return opts, fmt.Errorf("onnx: device: %w", err)
		}
	}
	return opts, nil
}
