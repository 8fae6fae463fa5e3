// MODUL: set
// ZWECK: Explizit gebautes Modell-Bundle (Klassifikator, Colorizer, Namen)
// INPUT: Manifest und Registry, oder fertige Handles
// OUTPUT: *Set, nach dem Bauen unveraenderlich
// NEBENEFFEKTE: Laedt Modelldateien, Close gibt Ressourcen frei
// ABHAENGIGKEITEN: agnivade/levenshtein (Namensvorschlaege)
// HINWEISE: Ein Set wird nie veraendert, Reload baut ein neues

package model

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Set ist das Bundle aller Modelle eines Prozesses
type Set struct {
	Classifier Handle
	Colorizers *Map
	Default    ClassID
	InputSize  int

	names    map[ClassID]string
	backends map[ClassID]string
	closers  []io.Closer
}

// CategoryInfo beschreibt eine Kategorie fuer Listings
type CategoryInfo struct {
	ID      ClassID
	Name    string
	Backend string
	Default bool
}

// NewSet baut ein Set aus fertigen Handles. names darf nil sein.
// Default ist die kleinste ClassID.
func NewSet(classifier Handle, colorizers *Map, names map[ClassID]string) (*Set, error) {
	if colorizers.Len() == 0 {
		return nil, errtypes.New(errtypes.KindConfiguration, "model set", "no colorizers")
	}
	s := &Set{
		Classifier: classifier,
		Colorizers: colorizers,
		Default:    colorizers.IDs()[0],
		InputSize:  DefaultInputSize,
		names:      make(map[ClassID]string),
		backends:   make(map[ClassID]string),
	}
	for id, name := range names {
		s.names[id] = name
	}
	return s, nil
}

// Load liest das Manifest und laedt alle Modelle ueber die DefaultRegistry
func Load(path string) (*Set, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return Build(m, DefaultRegistry)
}

// LoadOrDefault wie Load, faellt ohne Manifest-Datei auf DefaultManifest zurueck
func LoadOrDefault(path string) (*Set, error) {
	s, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no model manifest, using default gradient colorizer", "path", path)
		return Build(DefaultManifest(), DefaultRegistry)
	}
	return s, err
}

// Build laedt alle Modelle eines Manifests. Schlaegt ein Modell fehl,
// werden die bereits geladenen wieder geschlossen.
func Build(m *Manifest, r *Registry) (_ *Set, err error) {
	s := &Set{
		InputSize: m.InputSize,
		names:     make(map[ClassID]string),
		backends:  make(map[ClassID]string),
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if m.Classifier != nil {
		h, err := r.Create(*m.Classifier)
		if err != nil {
			return nil, errtypes.Wrap(errtypes.KindConfiguration, "load classifier", err)
		}
		s.Classifier = h
		s.track(h)
	}

	handles := make(map[ClassID]Handle, len(m.Categories))
	for _, c := range m.Categories {
		h, err := r.Create(c.Spec)
		if err != nil {
			return nil, errtypes.Wrap(errtypes.KindConfiguration, "load "+c.Name, err)
		}
		s.track(h)
		handles[c.ID] = h
		s.names[c.ID] = c.Name
		s.backends[c.ID] = c.Backend
		slog.Debug("loaded colorizer", "id", c.ID, "name", c.Name, "backend", c.Backend)
	}

	if s.Colorizers, err = NewMap(handles); err != nil {
		return nil, err
	}
	s.Default = s.Colorizers.IDs()[0]
	if m.Default != "" {
		if s.Default, err = s.Category(m.Default); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) track(h Handle) {
	if c, ok := h.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
}

// Name gibt den Namen einer Kategorie zurueck, sonst die Zahl
func (s *Set) Name(id ClassID) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return strconv.Itoa(int(id))
}

// Category loest einen Kategorienamen oder eine numerische ID auf.
// Unbekannte Namen liefern MissingCategory mit Vorschlag.
func (s *Set) Category(name string) (ClassID, error) {
	name = strings.TrimSpace(name)
	for id, n := range s.names {
		if strings.EqualFold(n, name) {
			return id, nil
		}
	}

	if n, err := strconv.Atoi(name); err == nil {
		if _, ok := s.Colorizers.Get(ClassID(n)); ok {
			return ClassID(n), nil
		}
	}

	e := errtypes.New(errtypes.KindMissingCategory, "category", "unknown category %q", name)
	if suggestion := s.suggest(name); suggestion != "" {
		e.Msg += fmt.Sprintf(", did you mean %q?", suggestion)
	}
	return 0, e
}

// suggest gibt den naechstliegenden Kategorienamen zurueck
func (s *Set) suggest(name string) string {
	best, score := "", len(name)/2+2
	for _, id := range s.Colorizers.IDs() {
		n, ok := s.names[id]
		if !ok {
			continue
		}
		if d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(n)); d < score {
			best, score = n, d
		}
	}
	return best
}

// Categories listet alle Kategorien aufsteigend nach ID
func (s *Set) Categories() []CategoryInfo {
	ids := s.Colorizers.IDs()
	out := make([]CategoryInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, CategoryInfo{
			ID:      id,
			Name:    s.Name(id),
			Backend: s.backends[id],
			Default: id == s.Default,
		})
	}
	return out
}

// Close gibt alle Handles frei, die io.Closer implementieren
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
