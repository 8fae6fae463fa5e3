// Package model - Modell-Handles, Kategorie-Zuordnung und Routing.
//
// MODUL: handle
// ZWECK: Opakes Modell-Interface und unveraenderliche ClassID -> Handle Zuordnung
// INPUT: Handles je Kategorie
// OUTPUT: Map mit Lookup nach ClassID
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: vision (Tensor), types/errtypes
// HINWEISE: Map wird einmal gebaut und danach nur gelesen
package model

import (
	"slices"

	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// ClassID identifiziert eine inhaltliche Kategorie (z.B. urban, grassland)
type ClassID int

// Handle ist ein geladenes Modell. Predict ist fuer feste Gewichte
// deterministisch und darf langsam sein.
type Handle interface {
	Predict(in vision.Tensor) (vision.Tensor, error)
}

// HandleFunc erlaubt gewoehnliche Funktionen als Handle
type HandleFunc func(in vision.Tensor) (vision.Tensor, error)

// Predict ruft f(in) auf
func (f HandleFunc) Predict(in vision.Tensor) (vision.Tensor, error) {
	return f(in)
}

// Map ordnet jeder ClassID genau ein Colorization-Handle zu
type Map struct {
	handles map[ClassID]Handle
	ids     []ClassID
}

// NewMap kopiert die Zuordnung. Negative IDs und nil-Handles sind
// Konfigurationsfehler.
func NewMap(handles map[ClassID]Handle) (*Map, error) {
	m := &Map{handles: make(map[ClassID]Handle, len(handles))}
	for id, h := range handles {
		if id < 0 {
			return nil, errtypes.New(errtypes.KindConfiguration, "model map", "negative class id %d", id)
		}
		if h == nil {
			return nil, errtypes.New(errtypes.KindConfiguration, "model map", "class %d has no handle", id)
		}
		m.handles[id] = h
		m.ids = append(m.ids, id)
	}
	slices.Sort(m.ids)
	return m, nil
}

// Get gibt das Handle fuer id zurueck
func (m *Map) Get(id ClassID) (Handle, bool) {
	if m == nil {
		return nil, false
	}
	h, ok := m.handles[id]
	return h, ok
}

// Lookup ist Get mit MissingCategory-Fehler
func (m *Map) Lookup(id ClassID) (Handle, error) {
	h, ok := m.Get(id)
	if !ok {
		return nil, errtypes.New(errtypes.KindMissingCategory, "lookup", "class %d not in model map", id)
	}
	return h, nil
}

// IDs gibt alle ClassIDs aufsteigend zurueck
func (m *Map) IDs() []ClassID {
	if m == nil {
		return nil
	}
	return slices.Clone(m.ids)
}

// Len gibt die Anzahl Kategorien zurueck
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}
