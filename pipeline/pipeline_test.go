package pipeline

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// recorder protokolliert die Reihenfolge aller Modellaufrufe
type recorder struct {
	events []string
}

// scripted liefert nacheinander die vorgegebenen Klassen als One-Hot-Scores
type scripted struct {
	rec     *recorder
	classes []model.ClassID
	n       int
	calls   int
}

func (s *scripted) Predict(vision.Tensor) (vision.Tensor, error) {
	s.calls++
	if s.rec != nil {
		s.rec.events = append(s.rec.events, "classify")
	}
	id := s.classes[s.n%len(s.classes)]
	s.n++
	scores := make([]float32, 4)
	scores[id] = 1
	return vision.Tensor{Shape: []int{1, 4}, Data: scores}, nil
}

// solid faerbt jede Eingabe einfarbig ein
type solid struct {
	rec   *recorder
	rgb   [3]float32
	calls int
}

func (s *solid) Predict(in vision.Tensor) (vision.Tensor, error) {
	s.calls++
	if s.rec != nil {
		s.rec.events = append(s.rec.events, "colorize")
	}
	h, w, _, err := in.ImageDims()
	if err != nil {
		return vision.Tensor{}, err
	}
	data := make([]float32, 0, h*w*3)
	for range h * w {
		data = append(data, s.rgb[:]...)
	}
	return vision.Tensor{Shape: []int{1, h, w, 3}, Data: data}, nil
}

var (
	red   = [3]float32{1, 0, 0}
	green = [3]float32{0, 1, 0}
	blue  = [3]float32{0, 0, 1}
)

type fixture struct {
	rec        *recorder
	colorizers map[model.ClassID]*solid
	m          *model.Map
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{rec: &recorder{}, colorizers: map[model.ClassID]*solid{}}
	handles := map[model.ClassID]model.Handle{}
	for id, rgb := range map[model.ClassID][3]float32{0: red, 1: green, 2: blue} {
		s := &solid{rec: f.rec, rgb: rgb}
		f.colorizers[id] = s
		handles[id] = s
	}
	m, err := model.NewMap(handles)
	if err != nil {
		t.Fatal(err)
	}
	f.m = m
	return f
}

func (f *fixture) colorizeCalls() int {
	n := 0
	for _, s := range f.colorizers {
		n += s.calls
	}
	return n
}

func grayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}
	return img
}

func rgbAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func classID(id model.ClassID) *model.ClassID {
	return &id
}

func TestWholeImageBoundary(t *testing.T) {
	cases := []struct {
		w, h       int
		path       Path
		rows, cols int
	}{
		{512, 512, PathWhole, 1, 1},
		{513, 512, PathTiled, 4, 5},
		{512, 513, PathTiled, 5, 4},
		{1, 1, PathWhole, 1, 1},
	}

	for _, tt := range cases {
		f := newFixture(t)
		cls := &scripted{classes: []model.ClassID{1}}
		res, err := Colorize(grayImage(tt.w, tt.h), cls, f.m, nil, DefaultOptions())
		if err != nil {
			t.Fatalf("Colorize(%dx%d) error = %v", tt.w, tt.h, err)
		}
		if res.Path != tt.path || res.Rows != tt.rows || res.Cols != tt.cols {
			t.Errorf("Colorize(%dx%d) = %s %dx%d, erwartet %s %dx%d", tt.w, tt.h, res.Path, res.Rows, res.Cols, tt.path, tt.rows, tt.cols)
		}
		if s := res.Image.Bounds().Size(); s != image.Pt(tt.w, tt.h) {
			t.Errorf("Colorize(%dx%d) Groesse = %v", tt.w, tt.h, s)
		}
		if cls.calls != tt.rows*tt.cols || res.Inferences != 2*tt.rows*tt.cols {
			t.Errorf("Colorize(%dx%d) classifier %d, inferences %d", tt.w, tt.h, cls.calls, res.Inferences)
		}
	}
}

func TestExplicitCategorySkipsClassifier(t *testing.T) {
	for _, size := range []image.Point{{100, 60}, {512, 512}, {700, 300}} {
		f := newFixture(t)
		cls := &scripted{classes: []model.ClassID{0}}

		res, err := Colorize(grayImage(size.X, size.Y), cls, f.m, classID(2), DefaultOptions())
		if err != nil {
			t.Fatalf("Colorize(%v) error = %v", size, err)
		}
		if cls.calls != 0 {
			t.Errorf("Colorize(%v) rief den Klassifikator %d mal auf", size, cls.calls)
		}
		if f.colorizers[2].calls != res.Rows*res.Cols || f.colorizers[0].calls != 0 {
			t.Errorf("Colorize(%v) falscher Colorizer", size)
		}
		if !res.Forced || res.Classes != nil {
			t.Errorf("Colorize(%v) Forced=%v Classes=%v", size, res.Forced, res.Classes)
		}
		if c := rgbAt(res.Image, size.X/2, size.Y/2); c.B < 250 || c.R > 5 {
			t.Errorf("Colorize(%v) Pixel = %v, erwartet blau", size, c)
		}
	}
}

func TestMissingCategoryBeforeInference(t *testing.T) {
	f := newFixture(t)
	cls := &scripted{classes: []model.ClassID{0}}

	_, err := Colorize(grayImage(800, 800), cls, f.m, classID(7), DefaultOptions())
	if !errors.Is(err, errtypes.ErrMissingCategory) {
		t.Fatalf("Colorize() error = %v, erwartet MissingCategory", err)
	}
	if cls.calls != 0 || f.colorizeCalls() != 0 {
		t.Errorf("Inferenz trotz unbekannter Kategorie: classify %d colorize %d", cls.calls, f.colorizeCalls())
	}
}

func TestClassifiedUnknownCategory(t *testing.T) {
	f := newFixture(t)
	cls := &scripted{classes: []model.ClassID{0, 3, 0, 0}}

	opts := DefaultOptions()
	opts.WholeImageLimit = 128
	_, err := Colorize(grayImage(256, 256), cls, f.m, nil, opts)
	if !errors.Is(err, errtypes.ErrMissingCategory) {
		t.Fatalf("Colorize() error = %v, erwartet MissingCategory", err)
	}
	if f.colorizeCalls() != 0 {
		t.Errorf("Colorizer trotz Fehler aufgerufen: %d", f.colorizeCalls())
	}
}

// quadrants gibt die Farbe der Mitte jedes Quadranten eines 256x256 Bildes zurueck
func quadrants(img image.Image) []color.NRGBA {
	return []color.NRGBA{rgbAt(img, 64, 64), rgbAt(img, 192, 64), rgbAt(img, 64, 192), rgbAt(img, 192, 192)}
}

func TestMajorityOverride(t *testing.T) {
	var (
		r = color.NRGBA{255, 0, 0, 255}
		g = color.NRGBA{0, 255, 0, 255}
		b = color.NRGBA{0, 0, 255, 255}
	)

	cases := []struct {
		name     string
		classes  []model.ClassID
		override bool
		want     []color.NRGBA
	}{
		{"dreiviertel", []model.ClassID{0, 0, 0, 1}, true, []color.NRGBA{r, r, r, r}},
		{"haelfte", []model.ClassID{0, 0, 1, 1}, false, []color.NRGBA{r, r, g, g}},
		{"zeilenweise", []model.ClassID{0, 1, 2, 0}, false, []color.NRGBA{r, g, b, r}},
	}

	opts := DefaultOptions()
	opts.WholeImageLimit = 128

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cls := &scripted{rec: f.rec, classes: tt.classes}

			res, err := Colorize(grayImage(256, 256), cls, f.m, nil, opts)
			if err != nil {
				t.Fatalf("Colorize() error = %v", err)
			}
			if res.Routing.Override != tt.override {
				t.Errorf("Override = %v, erwartet %v", res.Routing.Override, tt.override)
			}
			if diff := cmp.Diff(tt.classes, res.Classes); diff != "" {
				t.Errorf("Classes mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, quadrants(res.Image)); diff != "" {
				t.Errorf("Quadranten mismatch (-want +got):\n%s", diff)
			}

			// Alle Klassifikationen vor dem ersten Colorizer
			want := []string{"classify", "classify", "classify", "classify", "colorize", "colorize", "colorize", "colorize"}
			if diff := cmp.Diff(want, f.rec.events); diff != "" {
				t.Errorf("Reihenfolge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOutputSizeMatchesOriginal(t *testing.T) {
	for _, size := range []image.Point{{700, 300}, {100, 60}, {1030, 515}, {129, 900}} {
		f := newFixture(t)
		res, err := Colorize(grayImage(size.X, size.Y), nil, f.m, classID(0), DefaultOptions())
		if err != nil {
			t.Fatalf("Colorize(%v) error = %v", size, err)
		}
		if got := res.Image.Bounds().Size(); got != size {
			t.Errorf("Colorize(%v) Groesse = %v", size, got)
		}
	}
}

func TestInferenceErrors(t *testing.T) {
	f := newFixture(t)

	failing := model.HandleFunc(func(vision.Tensor) (vision.Tensor, error) {
		return vision.Tensor{}, errors.New("gpu weg")
	})
	m, _ := model.NewMap(map[model.ClassID]model.Handle{0: failing})
	if _, err := Colorize(grayImage(64, 64), nil, m, classID(0), DefaultOptions()); !errors.Is(err, errtypes.ErrModelInference) {
		t.Errorf("Colorize() error = %v, erwartet ModelInference", err)
	}

	bad := model.HandleFunc(func(vision.Tensor) (vision.Tensor, error) {
		return vision.Tensor{Shape: []int{1, 128, 128, 2}, Data: make([]float32, 128*128*2)}, nil
	})
	m, _ = model.NewMap(map[model.ClassID]model.Handle{0: bad})
	if _, err := Colorize(grayImage(64, 64), nil, m, classID(0), DefaultOptions()); !errors.Is(err, errtypes.ErrShapeMismatch) {
		t.Errorf("Colorize() error = %v, erwartet ShapeMismatch", err)
	}

	if _, err := Colorize(grayImage(64, 64), nil, f.m, nil, DefaultOptions()); !errors.Is(err, errtypes.ErrConfiguration) {
		t.Errorf("ohne Klassifikator und Kategorie error = %v, erwartet Configuration", err)
	}
}

func TestInvalidInput(t *testing.T) {
	f := newFixture(t)
	if _, err := Colorize(image.NewGray(image.Rect(0, 0, 0, 10)), nil, f.m, classID(0), DefaultOptions()); !errors.Is(err, errtypes.ErrInvalidDimensions) {
		t.Errorf("leeres Bild error = %v, erwartet InvalidDimensions", err)
	}
	if _, err := Colorize(grayImage(8, 8), nil, f.m, classID(0), Options{}); !errors.Is(err, errtypes.ErrConfiguration) {
		t.Errorf("leere Options error = %v, erwartet Configuration", err)
	}
}

func TestPipelineDefaultCategory(t *testing.T) {
	f := newFixture(t)
	set, err := model.NewSet(nil, f.m, map[model.ClassID]string{0: "urban", 1: "grassland", 2: "water"})
	if err != nil {
		t.Fatal(err)
	}

	p := New(set, DefaultOptions())
	res, err := p.Colorize(Request{Image: grayImage(64, 64)})
	if err != nil {
		t.Fatalf("Colorize() error = %v", err)
	}
	if res.Routing.Majority != set.Default || f.colorizers[0].calls != 1 {
		t.Errorf("Default-Kategorie nicht verwendet: %+v", res.Routing)
	}

	res, err = p.Colorize(Request{Image: grayImage(64, 64), Category: classID(1)})
	if err != nil || res.Routing.Majority != 1 {
		t.Errorf("Colorize(category 1) = %v, %v", res, err)
	}

	if _, err := New(nil, DefaultOptions()).Colorize(Request{Image: grayImage(8, 8)}); !errors.Is(err, errtypes.ErrConfiguration) {
		t.Errorf("ohne Set error = %v, erwartet Configuration", err)
	}
}

func TestPipelineUsesSetInputSize(t *testing.T) {
	f := newFixture(t)
	set, _ := model.NewSet(nil, f.m, nil)
	set.InputSize = 64

	var seen []int
	probe := model.HandleFunc(func(in vision.Tensor) (vision.Tensor, error) {
		seen = append(seen, in.Shape[1])
		return f.colorizers[0].Predict(in)
	})
	m, _ := model.NewMap(map[model.ClassID]model.Handle{0: probe})
	set.Colorizers = m

	res, err := New(set, DefaultOptions()).Colorize(Request{Image: grayImage(300, 600)})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != res.Rows*res.Cols || seen[0] != 64 {
		t.Errorf("Modell-Eingaben = %v, erwartet %d mal 64", seen, res.Rows*res.Cols)
	}
	if res.Image.Bounds().Size() != image.Pt(300, 600) {
		t.Errorf("Groesse = %v", res.Image.Bounds().Size())
	}
}
