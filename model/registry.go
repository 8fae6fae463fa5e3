// Package model - Backend Registry fuer dynamische Modell-Registrierung.
//
// MODUL: registry
// ZWECK: Zentrale Registry fuer Modell-Backend-Factories mit Thread-sicherer Verwaltung
// INPUT: Backend-Name, Factory-Funktionen, Spec aus dem Manifest
// OUTPUT: Geladene Handles
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: sync (stdlib), manifest.go (Spec)
// HINWEISE: Backends registrieren sich via init() in ihren Packages
package model

import (
	"errors"
	"slices"
	"sync"
)

// Factory laedt ein Handle aus einem Manifest-Eintrag
type Factory func(spec Spec) (Handle, error)

// ErrBackendNotRegistered wird zurueckgegeben wenn ein Backend fehlt
var ErrBackendNotRegistered = errors.New("model: backend not registered")

// RegistryError repraesentiert einen Registry-spezifischen Fehler.
type RegistryError struct {
	Op   string // Operation (z.B. "create")
	Name string // Backend-Name
	Err  error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface.
func (e *RegistryError) Error() string {
	return "model: " + e.Op + " backend '" + e.Name + "': " + e.Err.Error()
}

// Unwrap gibt den urspruenglichen Fehler zurueck.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Registry verwaltet registrierte Backend-Factories.
type Registry struct {
	backends map[string]Factory
	mu       sync.RWMutex
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Factory),
	}
}

// Register registriert eine Factory unter dem Namen.
// Ueberschreibt existierende Eintraege ohne Warnung.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[name] = factory
}

// Unregister entfernt ein Backend. Gibt true zurueck wenn es existierte.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.backends[name]
	delete(r.backends, name)
	return exists
}

// Get gibt die Factory fuer den Namen zurueck.
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.backends[name]
	return factory, exists
}

// Has prueft ob ein Backend registriert ist.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List gibt alle Backend-Namen sortiert zurueck.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create laedt ein Handle mit der registrierten Factory.
func (r *Registry) Create(spec Spec) (Handle, error) {
	factory, exists := r.Get(spec.Backend)
	if !exists {
		return nil, &RegistryError{Op: "create", Name: spec.Backend, Err: ErrBackendNotRegistered}
	}

	h, err := factory(spec)
	if err != nil {
		return nil, &RegistryError{Op: "create", Name: spec.Backend, Err: err}
	}
	return h, nil
}

// DefaultRegistry ist die globale Registry fuer Modell-Backends.
var DefaultRegistry = NewRegistry()

// Register registriert eine Factory in der DefaultRegistry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// MustRegister registriert eine Factory und panict bei nil-Factory.
// Fuer init()-Funktionen.
func MustRegister(name string, factory Factory) {
	if factory == nil {
		panic("model: nil factory for backend '" + name + "'")
	}
	Register(name, factory)
}

// Backends gibt die Namen aller Backends der DefaultRegistry zurueck.
func Backends() []string {
	return DefaultRegistry.List()
}
