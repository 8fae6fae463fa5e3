package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

const testManifest = `
input_size: 64
default: grassland
classifier:
  backend: fake
  path: classifier.bin
categories:
  - id: 0
    name: urban
    backend: fake
    path: /abs/urban.bin
  - id: 1
    name: grassland
    backend: fake
    colors: ["#000000", "#00ff00"]
  - id: 2
    name: barren
    backend: fake
    layout: nchw
`

// closingHandle merkt sich Close-Aufrufe
type closingHandle struct {
	constHandle
	spec   Spec
	closed *int
}

func (h *closingHandle) Close() error {
	*h.closed++
	return nil
}

func fakeRegistry(closed *int, specs *[]Spec) *Registry {
	r := NewRegistry()
	r.Register("fake", func(spec Spec) (Handle, error) {
		if specs != nil {
			*specs = append(*specs, spec)
		}
		if spec.Options["fail"] == "true" {
			return nil, errors.New("datei fehlt")
		}
		return &closingHandle{spec: spec, closed: closed}, nil
	})
	return r
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, testManifest)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if m.InputSize != 64 || m.Default != "grassland" || len(m.Categories) != 3 {
		t.Fatalf("Manifest = %+v", m)
	}
	if want := filepath.Join(filepath.Dir(path), "classifier.bin"); m.Classifier.Path != want {
		t.Errorf("Classifier.Path = %q, erwartet %q", m.Classifier.Path, want)
	}
	if m.Categories[0].Path != "/abs/urban.bin" {
		t.Errorf("absoluter Pfad veraendert: %q", m.Categories[0].Path)
	}
	if diff := cmp.Diff([]string{"#000000", "#00ff00"}, m.Categories[1].Colors); diff != "" {
		t.Errorf("Colors mismatch (-want +got):\n%s", diff)
	}
	if m.Categories[2].Layout != "nchw" || m.Categories[2].InputSize != 64 {
		t.Errorf("Kategorie 2 = %+v", m.Categories[2].Spec)
	}
}

func TestParseManifestInvalid(t *testing.T) {
	cases := map[string]string{
		"kein yaml":         "categories: [",
		"keine kategorien":  "input_size: 128\n",
		"doppelte id":       "categories:\n  - {id: 0, name: a, backend: x}\n  - {id: 0, name: b, backend: x}\n",
		"doppelter name":    "categories:\n  - {id: 0, name: a, backend: x}\n  - {id: 1, name: A, backend: x}\n",
		"negative id":       "categories:\n  - {id: -1, name: a, backend: x}\n",
		"ohne backend":      "categories:\n  - {id: 0, name: a}\n",
		"default unbekannt": "default: zz\ncategories:\n  - {id: 0, name: a, backend: x}\n",
		"classifier leer":   "classifier: {path: c.bin}\ncategories:\n  - {id: 0, name: a, backend: x}\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(content))
			if !errors.Is(err, errtypes.ErrConfiguration) {
				t.Errorf("ParseManifest() error = %v, erwartet Configuration", err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, testManifest))
	if err != nil {
		t.Fatal(err)
	}

	var closed int
	var specs []Spec
	s, err := Build(m, fakeRegistry(&closed, &specs))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if s.Classifier == nil {
		t.Error("Classifier fehlt")
	}
	if s.Default != 1 {
		t.Errorf("Default = %d, erwartet 1 (grassland)", s.Default)
	}
	if s.InputSize != 64 {
		t.Errorf("InputSize = %d, erwartet 64", s.InputSize)
	}
	if len(specs) != 4 {
		t.Errorf("Factory %d mal aufgerufen, erwartet 4", len(specs))
	}

	want := []CategoryInfo{
		{ID: 0, Name: "urban", Backend: "fake"},
		{ID: 1, Name: "grassland", Backend: "fake", Default: true},
		{ID: 2, Name: "barren", Backend: "fake"},
	}
	if diff := cmp.Diff(want, s.Categories()); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if closed != 4 {
		t.Errorf("%d Handles geschlossen, erwartet 4", closed)
	}
}

func TestBuildClosesOnFailure(t *testing.T) {
	m, err := ParseManifest([]byte(`
classifier: {backend: fake}
categories:
  - {id: 0, name: a, backend: fake}
  - {id: 1, name: b, backend: fake, options: {fail: "true"}}
`))
	if err != nil {
		t.Fatal(err)
	}

	var closed int
	_, err = Build(m, fakeRegistry(&closed, nil))
	if err == nil {
		t.Fatal("Build() sollte fehlschlagen")
	}
	if !strings.Contains(err.Error(), "datei fehlt") {
		t.Errorf("Fehler = %v", err)
	}
	if closed != 2 {
		t.Errorf("%d Handles geschlossen, erwartet 2", closed)
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	m, err := ParseManifest([]byte("categories:\n  - {id: 0, name: a, backend: gibtsnicht}\n"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Build(m, NewRegistry())
	var regErr *RegistryError
	if !errors.As(err, &regErr) || !errors.Is(err, ErrBackendNotRegistered) {
		t.Errorf("Build() error = %v, erwartet RegistryError", err)
	}
	if !errors.Is(err, errtypes.ErrConfiguration) {
		t.Errorf("Build() error = %v, erwartet Configuration", err)
	}
}

func TestSetCategory(t *testing.T) {
	m, err := NewMap(map[ClassID]Handle{0: &constHandle{}, 1: &constHandle{}, 4: &constHandle{}})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSet(nil, m, map[ClassID]string{0: "urban", 1: "grassland", 4: "barren"})
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]ClassID{
		"urban":     0,
		"Grassland": 1,
		" barren ":  4,
		"4":         4,
		"1":         1,
	}
	for name, want := range cases {
		got, err := s.Category(name)
		if err != nil || got != want {
			t.Errorf("Category(%q) = %d, %v, erwartet %d", name, got, err, want)
		}
	}

	_, err = s.Category("grasland")
	if !errors.Is(err, errtypes.ErrMissingCategory) {
		t.Fatalf("Category(grasland) error = %v, erwartet MissingCategory", err)
	}
	if !strings.Contains(err.Error(), `did you mean "grassland"`) {
		t.Errorf("Vorschlag fehlt: %v", err)
	}

	_, err = s.Category("7")
	if !errors.Is(err, errtypes.ErrMissingCategory) {
		t.Errorf("Category(7) error = %v, erwartet MissingCategory", err)
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("kein Vorschlag erwartet: %v", err)
	}

	if s.Default != 0 || s.Name(4) != "barren" || s.Name(9) != "9" {
		t.Errorf("Default/Name falsch: %d %q %q", s.Default, s.Name(4), s.Name(9))
	}
}

func TestNewSetEmpty(t *testing.T) {
	if _, err := NewSet(nil, nil, nil); !errors.Is(err, errtypes.ErrConfiguration) {
		t.Errorf("NewSet(nil) error = %v, erwartet Configuration", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", func(Spec) (Handle, error) { return HandleFunc(nil), nil })
	r.Register("a", func(Spec) (Handle, error) { return HandleFunc(nil), nil })

	if diff := cmp.Diff([]string{"a", "b"}, r.List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
	if !r.Has("a") || r.Has("c") {
		t.Error("Has() falsch")
	}
	if !r.Unregister("a") || r.Unregister("a") {
		t.Error("Unregister() falsch")
	}

	if _, err := r.Create(Spec{Backend: "c"}); !errors.Is(err, ErrBackendNotRegistered) {
		t.Errorf("Create(c) error = %v", err)
	}
}

func TestMustRegisterNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister(nil) sollte panicen")
		}
	}()
	MustRegister("nil", nil)
}

var _ Handle = HandleFunc(func(vision.Tensor) (vision.Tensor, error) { return vision.Tensor{}, nil })
