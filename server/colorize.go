// colorize.go - Colorize-Handler
// Enthaelt: ColorizeHandler (POST /api/colorize), LegacyColorizeHandler (POST /colorize),
// gemeinsamer Ablauf laden -> einfaerben -> ausliefern/hochladen -> History

package server

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/7blacky7/sarcolor/api"
	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/pipeline"
	"github.com/7blacky7/sarcolor/store"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// paletteSize ist die Anzahl dominanter Farben in der Antwort
const paletteSize = 5

// maxImageBytes begrenzt Quellbilder
const maxImageBytes = 64 << 20

// colorizeJob beschreibt einen Auftrag unabhaengig vom Endpunkt
type colorizeJob struct {
	imageID  string
	category string
	upload   bool
	// source laedt die Bilddaten, Default ist sar_images/<id> aus dem Bucket
	source func(ctx context.Context) ([]byte, error)
}

// ColorizeHandler faerbt ein Quellbild aus dem Bucket ein
func (s *Server) ColorizeHandler(c *gin.Context) {
	var req api.ColorizeRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		badRequest(c, "missing request body")
		return
	} else if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	resp, err := s.colorize(ctx, colorizeJob{imageID: req.ImageID, category: req.Category, upload: req.Upload})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LegacyColorizeHandler nimmt {imageUrl, imageId} entgegen, laedt das Bild
// von der URL und legt das Ergebnis unter colorized_sar_images/<imageId> ab
func (s *Server) LegacyColorizeHandler(c *gin.Context) {
	var req api.LegacyColorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ImageID == "" {
		badRequest(c, "imageId is required")
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	job := colorizeJob{imageID: req.ImageID, upload: true}
	if req.ImageURL != "" {
		job.source = func(ctx context.Context) ([]byte, error) {
			return fetch(ctx, req.ImageURL)
		}
	}

	resp, err := s.colorize(ctx, job)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.LegacyColorizeResponse{
		Message:           "Image colorized successfully",
		ColorizedImageURL: resp.URL,
	})
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

// colorize fuehrt einen Auftrag aus und zeichnet ihn in der History auf
func (s *Server) colorize(ctx context.Context, job colorizeJob) (*api.ColorizeResponse, error) {
	rec := &store.Job{ID: uuid.Must(uuid.NewV7()).String(), ImageID: job.imageID, Category: job.category}
	start := time.Now()

	resp, err := s.run(ctx, job, rec)

	rec.Duration = time.Since(start)
	if err != nil {
		rec.Status, rec.Error = store.StatusError, err.Error()
	}
	s.record(rec)
	if err != nil {
		return nil, err
	}
	resp.ID = rec.ID
	return resp, nil
}

func (s *Server) run(ctx context.Context, job colorizeJob, rec *store.Job) (*api.ColorizeResponse, error) {
	if err := store.ValidateID(job.imageID); err != nil {
		return nil, err
	}

	release, err := s.schedule(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	gen, done, err := s.models()
	if err != nil {
		return nil, err
	}
	defer done()
	set := gen.pipe.Set()

	// Kategorie vor dem Laden aufloesen, damit Tippfehler nichts kosten
	var category *model.ClassID
	if job.category != "" {
		id, err := set.Category(job.category)
		if err != nil {
			return nil, err
		}
		category = &id
	}

	load := job.source
	if load == nil {
		load = func(ctx context.Context) ([]byte, error) {
			return s.bucket.Get(ctx, store.SourceKey(job.imageID))
		}
	}
	data, err := load(ctx)
	if err != nil {
		return nil, err
	}

	img, _, err := vision.Decode(data)
	if err != nil {
		return nil, err
	}

	res, err := gen.pipe.Colorize(pipeline.Request{Image: img, Category: category})
	if err != nil {
		return nil, err
	}
	rec.Path, rec.Rows, rec.Cols = string(res.Path), res.Rows, res.Cols
	rec.Majority, rec.Override, rec.Inferences = set.Name(res.Routing.Majority), res.Routing.Override, res.Inferences

	png, err := vision.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}

	resp := response(job.imageID, set, res)
	if job.upload {
		if resp.URL, err = s.bucket.Put(ctx, store.ColorizedKey(job.imageID), png, vision.FormatPNG.MimeType()); err != nil {
			return nil, err
		}
	} else {
		resp.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
	return resp, nil
}

// response baut die API-Antwort aus einem Pipeline-Ergebnis
func response(imageID string, set *model.Set, res *pipeline.Result) *api.ColorizeResponse {
	size := res.Image.Bounds().Size()
	resp := &api.ColorizeResponse{
		ImageID:    imageID,
		Width:      size.X,
		Height:     size.Y,
		Path:       string(res.Path),
		Rows:       res.Rows,
		Cols:       res.Cols,
		Majority:   set.Name(res.Routing.Majority),
		Share:      res.Routing.Share,
		Override:   res.Routing.Override,
		Forced:     res.Forced,
		Inferences: res.Inferences,
		Palette:    palette(res.Image),
		Duration:   api.Duration{Duration: res.Duration},
	}
	for _, id := range res.Classes {
		resp.Classes = append(resp.Classes, set.Name(id))
	}
	return resp
}

func palette(img image.Image) []api.Swatch {
	var out []api.Swatch
	for _, sw := range vision.Palette(img, paletteSize) {
		out = append(out, api.Swatch{Hex: sw.Hex, Weight: sw.Weight})
	}
	return out
}

// record schreibt einen Job in die History, Fehler werden nur geloggt
func (s *Server) record(job *store.Job) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Record(ctx, job); err != nil {
		slog.Warn("record history", "image_id", job.ImageID, "error", err)
	}
}

// fetch laedt ein Quellbild von einer URL
func fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindInvalidImage, "fetch", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &errtypes.Error{Kind: errtypes.KindStorage, Op: "fetch", Msg: rawURL, Err: store.ErrNotExist}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errtypes.New(errtypes.KindStorage, "fetch", "%s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "fetch", err)
	}
	return data, nil
}
