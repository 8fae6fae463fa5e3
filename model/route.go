package model

import (
	"github.com/emirpasic/gods/v2/maps/treemap"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Routing ist die Entscheidung, welches Modell jedes Tile einfaerbt
type Routing struct {
	// Classes ist die wirksame Kategorie je Tile (nach Override)
	Classes  []ClassID
	Handles  []Handle
	Majority ClassID
	Share    float64
	Override bool
}

// Route waehlt die Modelle fuer klassifizierte Tiles. Hat die haeufigste
// Kategorie mehr als 50% Anteil, bekommen alle Tiles deren Modell, sonst
// behaelt jedes Tile sein eigenes. Gleichstand gewinnt die kleinste ClassID.
func Route(classes []ClassID, m *Map) (Routing, error) {
	if len(classes) == 0 {
		return Routing{}, errtypes.New(errtypes.KindUnclassifiableInput, "route", "no classified tiles")
	}

	counts := treemap.New[ClassID, int]()
	for _, c := range classes {
		if _, ok := m.Get(c); !ok {
			return Routing{}, errtypes.New(errtypes.KindMissingCategory, "route", "class %d not in model map", c)
		}
		n, _ := counts.Get(c)
		counts.Put(c, n+1)
	}

	majority, best := majorityOf(counts)
	r := Routing{
		Majority: majority,
		Share:    float64(best) / float64(len(classes)),
		Classes:  make([]ClassID, len(classes)),
		Handles:  make([]Handle, len(classes)),
	}
	r.Override = r.Share > 0.5

	for i, c := range classes {
		if r.Override {
			c = majority
		}
		h, _ := m.Get(c)
		r.Classes[i] = c
		r.Handles[i] = h
	}
	return r, nil
}

// majorityOf laeuft aufsteigend ueber die Schluessel, daher gewinnt bei
// Gleichstand die kleinste ClassID.
func majorityOf(counts *treemap.Map[ClassID, int]) (ClassID, int) {
	var majority ClassID
	best := 0
	it := counts.Iterator()
	for it.Next() {
		if it.Value() > best {
			majority, best = it.Key(), it.Value()
		}
	}
	return majority, best
}
