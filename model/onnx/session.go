//go:build onnx && cgo

// MODUL: onnx/session
// ZWECK: ONNX Runtime Session als model.Handle
// INPUT: Modell-Pfad (.onnx), Session-Optionen, NHWC-Tensoren
// OUTPUT: Ausgabetensoren im NHWC-Layout
// NEBENEFFEKTE: Alloziert ONNX Runtime Ressourcen, GPU Memory
// ABHAENGIGKEITEN: onnxruntime_go
// HINWEISE: Run ist per Mutex serialisiert, Close MUSS aufgerufen werden

package onnx

import (
	"fmt"
	"log/slog"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/7blacky7/sarcolor/envconfig"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// Available meldet, ob dieser Build ONNX-Modelle ausfuehren kann
const Available = true

var (
	runtimeInitOnce sync.Once
	runtimeInitErr  error
)

// InitRuntime initialisiert die ONNX Runtime einmalig.
// SARCOLOR_ONNX_LIBRARY setzt den Pfad zur Shared Library.
func InitRuntime() error {
	runtimeInitOnce.Do(func() {
		if lib := envconfig.OnnxLibrary(); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

// DestroyRuntime gibt die ONNX Runtime frei.
func DestroyRuntime() error {
	return ort.DestroyEnvironment()
}

// Session verwaltet eine ONNX Runtime Inference Session.
type Session struct {
	mu    sync.Mutex
	inner *ort.DynamicAdvancedSession
	opts  SessionOptions
	path  string
}

// CreateSession erstellt eine neue ONNX Inference Session.
func CreateSession(modelPath string, opts SessionOptions) (*Session, error) {
	if err := InitRuntime(); err != nil {
		return nil, fmt.Errorf("runtime init: %w", err)
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer sessOpts.Destroy()

	if opts.NumThreads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(opts.NumThreads); err != nil {
			return nil, fmt.Errorf("threads setzen: %w", err)
		}
	}

	// Bei CUDA-Fehler: Fallback auf CPU
	if opts.UseGPU {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err == nil {
			_ = cudaOpts.Update(map[string]string{
				"device_id": fmt.Sprintf("%d", opts.GPUDeviceID),
			})
			if err := sessOpts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
				slog.Warn("cuda unavailable, using cpu", "model", modelPath, "error", err)
			}
			cudaOpts.Destroy()
		}
	}

	inner, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		sessOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("session erstellen: %w", err)
	}

	return &Session{inner: inner, opts: opts, path: modelPath}, nil
}

// Predict fuehrt Inference aus. Ein- und Ausgabe sind NHWC, bei
// ChannelFirst wird intern nach NCHW und zurueck konvertiert.
func (s *Session) Predict(in vision.Tensor) (vision.Tensor, error) {
	shape, data := in.Shape, in.Data
	if s.opts.ChannelFirst && len(shape) == 4 {
		shape = []int{shape[0], shape[3], shape[1], shape[2]}
		data = vision.CHWTensorLayout(data, shape[2], shape[3], shape[1])
	}

	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}

	input, err := ort.NewTensor(ort.NewShape(dims...), data)
	if err != nil {
		return vision.Tensor{}, errtypes.Wrap(errtypes.KindModelInference, "onnx", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	s.mu.Lock()
	err = s.inner.Run([]ort.Value{input}, outputs)
	s.mu.Unlock()
	if err != nil {
		return vision.Tensor{}, errtypes.Wrap(errtypes.KindModelInference, "onnx", err)
	}
	defer outputs[0].Destroy()

	t, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return vision.Tensor{}, errtypes.New(errtypes.KindShapeMismatch, "onnx", "unexpected output type %T", outputs[0])
	}

	outShape := make([]int, len(t.GetShape()))
	for i, d := range t.GetShape() {
		outShape[i] = int(d)
	}
	outData := append([]float32(nil), t.GetData()...)

	if s.opts.ChannelFirst && len(outShape) == 4 {
		n, c, h, w := outShape[0], outShape[1], outShape[2], outShape[3]
		outData = vision.HWCTensorLayout(outData, c, h, w)
		outShape = []int{n, h, w, c}
	}
	return vision.NewTensor(outShape, outData)
}

// Close gibt alle Session-Ressourcen frei
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inner == nil {
		return nil
	}
	err := s.inner.Destroy()
	s.inner = nil
	return err
}

func newSession(path string, opts SessionOptions) (*Session, error) {
	return CreateSession(path, opts)
}
