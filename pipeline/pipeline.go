// Package pipeline - Colorization eines Bildes als Ganzes oder in Kacheln.
//
// Ganzbild-Pfad wenn beide Kanten <= WholeImageLimit, sonst Kachel-Pfad:
// Zielgroesse -> Lanczos -> Split -> Prepare+Classify je Kachel -> Route ->
// Colorize je Kachel -> Finalize -> Reconstruct -> Lanczos zurueck auf die
// Originalgroesse. Kacheln werden streng zeilenweise nacheinander verarbeitet.
package pipeline

import (
	"image"
	"log/slog"
	"time"

	"github.com/7blacky7/sarcolor/envconfig"
	"github.com/7blacky7/sarcolor/logutil"
	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/tiling"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// Path ist der gewaehlte Verarbeitungspfad
type Path string

const (
	PathWhole Path = "whole"
	PathTiled Path = "tiled"
)

// Options sind die Policy-Konstanten der Pipeline
type Options struct {
	// BlockSize ist die Kachelkante; Zielgroessen sind Vielfache davon
	BlockSize int
	// WholeImageLimit ist die groesste Kante fuer den Ganzbild-Pfad
	WholeImageLimit int
	// InputSize ist die feste Modell-Eingabegroesse
	InputSize int
}

// DefaultOptions gibt 128/512/128 zurueck
func DefaultOptions() Options {
	return Options{BlockSize: 128, WholeImageLimit: 512, InputSize: model.DefaultInputSize}
}

// OptionsFromEnv liest Blockgroesse und Schwelle aus SARCOLOR_*
func OptionsFromEnv() Options {
	opts := DefaultOptions()
	opts.BlockSize = int(envconfig.BlockSize())
	opts.WholeImageLimit = int(envconfig.TileThreshold())
	return opts
}

func (o Options) validate() error {
	if o.BlockSize <= 0 || o.WholeImageLimit <= 0 || o.InputSize <= 0 {
		return errtypes.New(errtypes.KindConfiguration, "pipeline", "invalid options %+v", o)
	}
	return nil
}

// Request ist ein einzelner Colorize-Auftrag
type Request struct {
	Image image.Image
	// Category erzwingt ein Modell fuer alle Kacheln, der Klassifikator laeuft dann nicht
	Category *model.ClassID
}

// Result ist das eingefaerbte Bild mit Diagnosedaten
type Result struct {
	Image image.Image
	Path  Path
	// Target ist die Groesse nach dem Resize auf Block-Vielfache (nur Kachel-Pfad)
	Target     image.Point
	Rows, Cols int
	// Classes sind die rohen Klassifikationen je Kachel (leer bei erzwungener Kategorie)
	Classes []model.ClassID
	// Routing ist die wirksame Modellwahl je Kachel
	Routing    model.Routing
	Forced     bool
	Inferences int
	Duration   time.Duration
}

// Colorize faerbt img ein. Mit category wird der Klassifikator nie
// aufgerufen; ohne category ist ein Klassifikator Pflicht.
func Colorize(img image.Image, classifier model.Handle, colorizers *model.Map, category *model.ClassID, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "colorize", "no image")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "colorize", "invalid size %dx%d", size.X, size.Y)
	}

	r := &runner{classifier: classifier, colorizers: colorizers, opts: opts}
	if category != nil {
		h, err := colorizers.Lookup(*category)
		if err != nil {
			return nil, err
		}
		r.forced, r.forcedID = h, *category
	} else if classifier == nil {
		return nil, errtypes.New(errtypes.KindConfiguration, "colorize", "neither classifier nor category")
	}

	var res *Result
	var err error
	if size.X <= opts.WholeImageLimit && size.Y <= opts.WholeImageLimit {
		slog.Debug("colorize whole image", "width", size.X, "height", size.Y)
		res, err = r.whole(img, size)
	} else {
		slog.Debug("colorize tiled", "width", size.X, "height", size.Y, "block", opts.BlockSize)
		res, err = r.tiled(img, size)
	}
	if err != nil {
		return nil, err
	}

	res.Forced = category != nil
	res.Inferences = r.inferences
	res.Duration = time.Since(start)
	return res, nil
}

// runner haelt den Zustand eines einzelnen Aufrufs
type runner struct {
	classifier model.Handle
	colorizers *model.Map
	opts       Options

	forced     model.Handle
	forcedID   model.ClassID
	inferences int
}

func (r *runner) classify(t vision.Tensor) (model.ClassID, error) {
	r.inferences++
	return model.Classify(r.classifier, t)
}

func (r *runner) predict(h model.Handle, t vision.Tensor) (vision.Tensor, error) {
	r.inferences++
	out, err := h.Predict(t)
	if err != nil {
		return vision.Tensor{}, errtypes.Wrap(errtypes.KindModelInference, "colorize", err)
	}
	return out, nil
}

func (r *runner) whole(img image.Image, size image.Point) (*Result, error) {
	t, err := vision.Prepare(img, r.opts.InputSize)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: PathWhole, Rows: 1, Cols: 1}
	classes := []model.ClassID{r.forcedID}
	if r.forced == nil {
		id, err := r.classify(t)
		if err != nil {
			return nil, err
		}
		classes[0] = id
		res.Classes = classes
	}

	if res.Routing, err = model.Route(classes, r.colorizers); err != nil {
		return nil, err
	}

	out, err := r.predict(res.Routing.Handles[0], t)
	if err != nil {
		return nil, err
	}
	if res.Image, err = vision.Finalize(out, size); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *runner) tiled(img image.Image, size image.Point) (*Result, error) {
	block := r.opts.BlockSize
	th, tw, err := tiling.TargetSize(size.Y, size.X, block)
	if err != nil {
		return nil, err
	}

	resized, err := vision.Resize(img, tw, th)
	if err != nil {
		return nil, err
	}
	grid, err := tiling.Split(resized, block)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: PathTiled, Target: image.Pt(tw, th), Rows: grid.Rows, Cols: grid.Cols}
	n := grid.Len()
	tensors := make([]vision.Tensor, n)
	for i := range n {
		if tensors[i], err = vision.Prepare(grid.At(i), r.opts.InputSize); err != nil {
			return nil, err
		}
	}

	// Alle Klassifikationen vor dem ersten Colorizer, sonst waere die Mehrheit unbekannt
	classes := make([]model.ClassID, n)
	if r.forced != nil {
		for i := range classes {
			classes[i] = r.forcedID
		}
	} else {
		for i := range n {
			if classes[i], err = r.classify(tensors[i]); err != nil {
				return nil, err
			}
			logutil.Trace("classified tile", "row", i/grid.Cols, "col", i%grid.Cols, "class", classes[i])
		}
		res.Classes = classes
	}

	if res.Routing, err = model.Route(classes, r.colorizers); err != nil {
		return nil, err
	}
	slog.Debug("routing", "tiles", n, "majority", res.Routing.Majority, "share", res.Routing.Share, "override", res.Routing.Override)

	tileSize := image.Pt(block, block)
	out := tiling.NewGrid(grid.Rows, grid.Cols)
	for i := range n {
		pred, err := r.predict(res.Routing.Handles[i], tensors[i])
		if err != nil {
			return nil, err
		}
		tile, err := vision.Finalize(pred, tileSize)
		if err != nil {
			return nil, err
		}
		out.Set(i, tile)
		tensors[i] = vision.Tensor{}
		logutil.Trace("colorized tile", "row", i/grid.Cols, "col", i%grid.Cols, "class", res.Routing.Classes[i])
	}

	stitched, err := tiling.Reconstruct(out)
	if err != nil {
		return nil, err
	}
	if res.Image, err = vision.Resize(stitched, size.X, size.Y); err != nil {
		return nil, err
	}
	return res, nil
}

// Pipeline bindet ein model.Set an feste Options
type Pipeline struct {
	set  *model.Set
	opts Options
}

// New erstellt eine Pipeline. InputSize kommt aus dem Set, falls gesetzt.
func New(set *model.Set, opts Options) *Pipeline {
	if set != nil && set.InputSize > 0 {
		opts.InputSize = set.InputSize
	}
	return &Pipeline{set: set, opts: opts}
}

// Set gibt das gebundene Modell-Set zurueck
func (p *Pipeline) Set() *model.Set {
	return p.set
}

// Options gibt die wirksamen Options zurueck
func (p *Pipeline) Options() Options {
	return p.opts
}

// Colorize fuehrt einen Request aus. Ohne Klassifikator und ohne Kategorie
// wird die Default-Kategorie des Sets verwendet.
func (p *Pipeline) Colorize(req Request) (*Result, error) {
	if p.set == nil {
		return nil, errtypes.New(errtypes.KindConfiguration, "colorize", "no models loaded")
	}

	category := req.Category
	if category == nil && p.set.Classifier == nil {
		d := p.set.Default
		category = &d
	}

	res, err := Colorize(req.Image, p.set.Classifier, p.set.Colorizers, category, p.opts)
	if err != nil {
		return nil, err
	}
	slog.Info("colorized", "path", res.Path, "grid", [2]int{res.Rows, res.Cols}, "majority", p.set.Name(res.Routing.Majority),
		"override", res.Routing.Override, "inferences", res.Inferences, "duration", res.Duration)
	return res, nil
}
