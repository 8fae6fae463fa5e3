// cmd_colorize.go - Colorize und Push Commands
// Hauptfunktionen: ColorizeHandler (lokal oder --remote), PushHandler
package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/7blacky7/sarcolor/api"
	"github.com/7blacky7/sarcolor/envconfig"
	"github.com/7blacky7/sarcolor/logutil"
	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/pipeline"
	"github.com/7blacky7/sarcolor/store"
	"github.com/7blacky7/sarcolor/vision"

	// Modell-Backends registrieren
	_ "github.com/7blacky7/sarcolor/model/linear"
	_ "github.com/7blacky7/sarcolor/model/lut"
	_ "github.com/7blacky7/sarcolor/model/onnx"
)

const dataURLPrefix = "data:image/png;base64,"

// colorizeOptions - Flags des colorize Commands
type colorizeOptions struct {
	Category string
	OutDir   string
	Models   string
	Parallel int
	Remote   bool
}

// outputPath - <dir>/<name>_color.png, dir ist Default das Verzeichnis der Eingabe
func outputPath(in, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, base+"_color.png")
}

// imageID - Bild-ID aus dem Dateinamen, unerlaubte Zeichen werden zu '_'
func imageID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, base)
	if store.ValidateID(id) != nil {
		return "image"
	}
	return id
}

// progress - Fortschritt auf stderr, als mitlaufende Zeile wenn stderr ein Terminal ist
type progress struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	total int
	done  int
}

func newProgress(total int) *progress {
	return &progress{w: os.Stderr, tty: term.IsTerminal(int(os.Stderr.Fd())), total: total}
}

func (p *progress) step(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if !p.tty {
		fmt.Fprintln(p.w, msg)
		return
	}
	fmt.Fprintf(p.w, "\r\033[K[%d/%d] %s", p.done, p.total, msg)
	if p.done == p.total {
		fmt.Fprintln(p.w)
	}
}

// colorizer - faerbt eine Datei ein und gibt eine Zusammenfassung zurueck
type colorizer func(ctx context.Context, in, out string) (string, error)

// localColorizer - Pipeline im Prozess mit dem Manifest aus SARCOLOR_MODELS
func localColorizer(opts colorizeOptions) (colorizer, func() error, error) {
	set, err := model.LoadOrDefault(opts.Models)
	if err != nil {
		return nil, nil, err
	}

	var category *model.ClassID
	if opts.Category != "" {
		id, err := set.Category(opts.Category)
		if err != nil {
			set.Close()
			return nil, nil, err
		}
		category = &id
	}

	p := pipeline.New(set, pipeline.OptionsFromEnv())
	fn := func(_ context.Context, in, out string) (string, error) {
		img, _, err := vision.LoadImage(in)
		if err != nil {
			return "", err
		}
		res, err := p.Colorize(pipeline.Request{Image: img, Category: category})
		if err != nil {
			return "", err
		}
		data, err := vision.EncodePNG(res.Image)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %dx%d %s", res.Path, res.Rows, res.Cols, set.Name(res.Routing.Majority)), nil
	}
	return fn, set.Close, nil
}

// remoteColorizer - Upload und Colorize ueber den Server
func remoteColorizer(client *api.Client, opts colorizeOptions) colorizer {
	return func(ctx context.Context, in, out string) (string, error) {
		data, err := os.ReadFile(in)
		if err != nil {
			return "", err
		}
		id := imageID(in)
		if _, err := client.Upload(ctx, id, bytes.NewReader(data), vision.DetectFormat(data).MimeType()); err != nil {
			return "", err
		}

		resp, err := client.Colorize(ctx, &api.ColorizeRequest{ImageID: id, Category: opts.Category})
		if err != nil {
			return "", err
		}
		png, err := decodeDataURL(resp.Image)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %dx%d %s", resp.Path, resp.Rows, resp.Cols, resp.Majority), nil
	}
}

func decodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, errors.New("response contains no inline image")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(s, dataURLPrefix))
}

// ColorizeHandler - Faerbt alle Dateien ein, parallel bis --parallel
func ColorizeHandler(cmd *cobra.Command, args []string) error {
	var opts colorizeOptions
	var err error
	flags := cmd.Flags()
	if opts.Category, err = flags.GetString("category"); err != nil {
		return err
	}
	if opts.OutDir, err = flags.GetString("output"); err != nil {
		return err
	}
	if opts.Models, err = flags.GetString("models"); err != nil {
		return err
	}
	if opts.Parallel, err = flags.GetInt("parallel"); err != nil {
		return err
	}
	if opts.Remote, err = flags.GetBool("remote"); err != nil {
		return err
	}
	if opts.Models == "" {
		opts.Models = envconfig.Models()
	}
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return err
		}
	}

	var fn colorizer
	if opts.Remote {
		if err := checkServerHeartbeat(cmd, args); err != nil {
			return err
		}
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		fn = remoteColorizer(client, opts)
	} else {
		local, closeFn, err := localColorizer(opts)
		if err != nil {
			return err
		}
		defer closeFn()
		fn = local
	}

	return colorizeFiles(cmd.Context(), fn, args, opts)
}

// colorizeFiles - Verarbeitet alle Dateien, der erste Fehler bricht ab
func colorizeFiles(ctx context.Context, fn colorizer, files []string, opts colorizeOptions) error {
	prog := newProgress(len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallel, 1))

	for _, in := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := outputPath(in, opts.OutDir)
			summary, err := fn(ctx, in, out)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			prog.step(fmt.Sprintf("%s -> %s (%s)", in, out, summary))
			return nil
		})
	}
	return g.Wait()
}

// PushHandler - Laedt ein Quellbild auf den Server
func PushHandler(cmd *cobra.Command, args []string) error {
	id, path := args[0], args[1]
	if err := store.ValidateID(id); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	resp, err := client.Upload(cmd.Context(), id, bytes.NewReader(data), vision.DetectFormat(data).MimeType())
	if err != nil {
		return err
	}
	cmd.Printf("%s (%s %dx%d) -> %s\n", resp.Key, resp.Format, resp.Width, resp.Height, resp.URL)
	return nil
}

// newColorizeCmd - Erstellt den colorize Command
func newColorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colorize FILE...",
		Short: "Colorize SAR images",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ColorizeHandler,
	}
	cmd.Flags().StringP("category", "c", "", "Force a category and skip classification")
	cmd.Flags().StringP("output", "o", "", "Output directory (default: next to the input)")
	cmd.Flags().String("models", "", "Model manifest for local colorization (default: $SARCOLOR_MODELS)")
	cmd.Flags().IntP("parallel", "p", 1, "Number of images processed in parallel")
	cmd.Flags().Bool("remote", false, "Colorize through the running server")
	return cmd
}

// newPushCmd - Erstellt den push Command
func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "push ID FILE",
		Short:   "Upload a source image to the server",
		Args:    cobra.ExactArgs(2),
		PreRunE: checkServerHeartbeat,
		RunE:    PushHandler,
	}
}
