// MODUL: prepare_test
// ZWECK: Tests fuer den Modell-Eingabetensor
// INPUT: Synthetische Graubilder
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, image
// HINWEISE: Padding-Ursprung (0,0), Shape (1,S,S,1), Wertebereich [0,1]

package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

func TestPrepareShape(t *testing.T) {
	sizes := []image.Point{{1, 1}, {64, 32}, {128, 128}, {129, 10}, {300, 500}}

	for _, s := range sizes {
		tensor, err := Prepare(createImage(s.X, s.Y, color.White), 128)
		if err != nil {
			t.Fatalf("Prepare(%v) error = %v", s, err)
		}
		want := []int{1, 128, 128, 1}
		for i := range want {
			if tensor.Shape[i] != want[i] {
				t.Fatalf("Prepare(%v) Shape = %v, erwartet %v", s, tensor.Shape, want)
			}
		}
		if len(tensor.Data) != 128*128 {
			t.Errorf("Prepare(%v) Datenlaenge = %d", s, len(tensor.Data))
		}
		for i, v := range tensor.Data {
			if v < 0 || v > 1 {
				t.Fatalf("Prepare(%v) Data[%d] = %f ausserhalb [0,1]", s, i, v)
			}
		}
	}
}

func TestPreparePadsBottomRight(t *testing.T) {
	tensor, err := Prepare(createImage(3, 2, color.White), 4)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := []float32{
		1, 1, 1, 0,
		1, 1, 1, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	for i, v := range want {
		if tensor.Data[i] != v {
			t.Errorf("Data[%d] = %f, erwartet %f", i, tensor.Data[i], v)
		}
	}
}

func TestPrepareLuminance(t *testing.T) {
	tensor, err := Prepare(createImage(2, 2, color.RGBA{51, 51, 51, 255}), 2)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	for i, v := range tensor.Data {
		if v != 0.2 {
			t.Errorf("Data[%d] = %f, erwartet 0.2", i, v)
		}
	}
}

func TestPrepareDeterministic(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 150))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}

	a, err := Prepare(img, 128)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Prepare(img, 128)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("Prepare nicht deterministisch bei Index %d", i)
		}
	}
}

func TestPrepareInvalid(t *testing.T) {
	if _, err := Prepare(image.NewGray(image.Rect(0, 0, 0, 5)), 128); !errors.Is(err, errtypes.ErrInvalidDimensions) {
		t.Errorf("Prepare(leer) error = %v, erwartet InvalidDimensions", err)
	}
	if _, err := Prepare(createImage(2, 2, color.White), 0); !errors.Is(err, errtypes.ErrInvalidDimensions) {
		t.Errorf("Prepare(size 0) error = %v, erwartet InvalidDimensions", err)
	}
}
