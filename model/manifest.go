// MODUL: manifest
// ZWECK: YAML-Manifest der geladenen Modelle (Klassifikator + Kategorien)
// INPUT: Pfad zur manifest.yaml
// OUTPUT: Manifest mit aufgeloesten Pfaden
// NEBENEFFEKTE: Dateisystem-Lesezugriff
// ABHAENGIGKEITEN: gopkg.in/yaml.v3
// HINWEISE: Relative Modellpfade gelten relativ zum Manifest-Verzeichnis

package model

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// DefaultInputSize ist die feste Modell-Eingabegroesse (Tile-Kantenlaenge)
const DefaultInputSize = 128

// Spec beschreibt ein einzelnes Modell im Manifest
type Spec struct {
	Backend string   `yaml:"backend"`
	Path    string   `yaml:"path,omitempty"`
	Colors  []string `yaml:"colors,omitempty"`
	// Layout ist "nhwc" (Default) oder "nchw"
	Layout  string            `yaml:"layout,omitempty"`
	Input   string            `yaml:"input,omitempty"`
	Output  string            `yaml:"output,omitempty"`
	Options map[string]string `yaml:"options,omitempty"`

	// InputSize wird beim Laden aus dem Manifest gesetzt
	InputSize int `yaml:"-"`
}

// Category ist eine Kategorie mit ihrem Colorization-Modell
type Category struct {
	ID   ClassID `yaml:"id"`
	Name string  `yaml:"name"`
	Spec `yaml:",inline"`
}

// Manifest ist der Inhalt von manifest.yaml
type Manifest struct {
	InputSize  int        `yaml:"input_size"`
	Default    string     `yaml:"default,omitempty"`
	Classifier *Spec      `yaml:"classifier,omitempty"`
	Categories []Category `yaml:"categories"`
}

// LoadManifest liest und validiert ein Manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindConfiguration, "manifest", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.resolve(filepath.Dir(path))
	return m, nil
}

// ParseManifest dekodiert und validiert Manifest-Bytes
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &errtypes.Error{Kind: errtypes.KindConfiguration, Op: "manifest", Err: err}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.resolve("")
	return &m, nil
}

// Validate prueft IDs, Namen und Backends
func (m *Manifest) Validate() error {
	if m.InputSize == 0 {
		m.InputSize = DefaultInputSize
	}
	if m.InputSize < 0 {
		return errtypes.New(errtypes.KindConfiguration, "manifest", "input_size %d", m.InputSize)
	}
	if len(m.Categories) == 0 {
		return errtypes.New(errtypes.KindConfiguration, "manifest", "no categories")
	}
	if m.Classifier != nil && m.Classifier.Backend == "" {
		return errtypes.New(errtypes.KindConfiguration, "manifest", "classifier without backend")
	}

	ids := make(map[ClassID]bool)
	names := make(map[string]bool)
	for _, c := range m.Categories {
		switch {
		case c.ID < 0:
			return errtypes.New(errtypes.KindConfiguration, "manifest", "negative id %d", c.ID)
		case ids[c.ID]:
			return errtypes.New(errtypes.KindConfiguration, "manifest", "duplicate id %d", c.ID)
		case c.Name == "":
			return errtypes.New(errtypes.KindConfiguration, "manifest", "category %d without name", c.ID)
		case names[strings.ToLower(c.Name)]:
			return errtypes.New(errtypes.KindConfiguration, "manifest", "duplicate name %q", c.Name)
		case c.Backend == "":
			return errtypes.New(errtypes.KindConfiguration, "manifest", "category %q without backend", c.Name)
		}
		ids[c.ID] = true
		names[strings.ToLower(c.Name)] = true
	}

	if m.Default != "" && !names[strings.ToLower(m.Default)] {
		return errtypes.New(errtypes.KindConfiguration, "manifest", "default %q is not a category", m.Default)
	}
	return nil
}

// resolve macht relative Pfade absolut und verteilt InputSize
func (m *Manifest) resolve(dir string) {
	fix := func(s *Spec) {
		s.InputSize = m.InputSize
		if dir != "" && s.Path != "" && !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(dir, s.Path)
		}
	}
	if m.Classifier != nil {
		fix(m.Classifier)
	}
	for i := range m.Categories {
		fix(&m.Categories[i].Spec)
	}
}

// DefaultManifest ist ein einzelner Verlaufs-Colorizer ohne Klassifikator
func DefaultManifest() *Manifest {
	m := &Manifest{
		InputSize:  DefaultInputSize,
		Default:    "sar",
		Categories: []Category{{ID: 0, Name: "sar", Spec: Spec{Backend: "gradient"}}},
	}
	m.resolve("")
	return m
}
