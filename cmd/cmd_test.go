package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/sarcolor/api"
	"github.com/7blacky7/sarcolor/model/lut"
	"github.com/7blacky7/sarcolor/vision"
)

func TestOutputPath(t *testing.T) {
	cases := map[string]struct {
		in, dir, want string
	}{
		"neben eingabe":    {"/data/scene.tif", "", "/data/scene_color.png"},
		"ausgabeordner":    {"/data/scene.tif", "/out", "/out/scene_color.png"},
		"ohne endung":      {"scene", "", "scene_color.png"},
		"mehrere punkte":   {"a/b.v2.png", "", "a/b.v2_color.png"},
		"relativer ordner": {"x.jpg", "out", "out/x_color.png"},
	}
	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			if got := outputPath(tt.in, tt.dir); got != tt.want {
				t.Errorf("outputPath(%q, %q) = %q, erwartet %q", tt.in, tt.dir, got, tt.want)
			}
		})
	}
}

func TestImageID(t *testing.T) {
	cases := map[string]string{
		"/data/S1A_IW_GRDH.tif": "S1A_IW_GRDH",
		"scene 01.png":          "scene_01",
		"ä.png":                 "_",
		"a/b.v2.png":            "b.v2",
		".png":                  "image",
	}
	for in, want := range cases {
		if got := imageID(in); got != want {
			t.Errorf("imageID(%q) = %q, erwartet %q", in, got, want)
		}
	}
}

func TestHumanTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "Never"},
		{now.Add(-10 * time.Second), "Less than a minute ago"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
	}
	for _, tt := range cases {
		if got := humanTime(tt.t, now); got != tt.want {
			t.Errorf("humanTime(%v) = %q, erwartet %q", tt.t, got, tt.want)
		}
	}
}

func TestHistoryRows(t *testing.T) {
	now := time.Now()
	jobs := []api.Job{
		{
			ID: "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", ImageID: "scene", Path: "tiled",
			Rows: 3, Cols: 5, Majority: "urban", Status: "ok",
			Duration: api.Duration{Duration: 1234567 * time.Microsecond}, CreatedAt: now.Add(-2 * time.Minute),
		},
		{ID: "abc", ImageID: "missing", Status: "error", Error: "not found", CreatedAt: now},
	}

	want := [][]string{
		{"0190a1b2", "scene", "tiled", "3x5", "urban", "1.235s", "2 minutes ago", "ok"},
		{"abc", "missing", "", "-", "", "0s", "Less than a minute ago", "error: not found"},
	}
	if diff := cmp.Diff(want, historyRows(jobs, now)); diff != "" {
		t.Errorf("historyRows mismatch (-want +got):\n%s", diff)
	}
}

func TestModelRows(t *testing.T) {
	models := &api.ModelsResponse{
		Categories: []api.Category{
			{ID: 0, Name: "urban", Backend: "onnx", Default: true},
			{ID: 1, Name: "water", Backend: "gradient"},
		},
	}
	want := [][]string{
		{"0", "urban", "onnx", "*"},
		{"1", "water", "gradient", ""},
	}
	if diff := cmp.Diff(want, modelRows(models)); diff != "" {
		t.Errorf("modelRows mismatch (-want +got):\n%s", diff)
	}
}

func writeScene(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	data, err := vision.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestColorizeLocal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SARCOLOR_MODELS", filepath.Join(dir, "missing.yaml"))
	t.Setenv("SARCOLOR_BLOCK_SIZE", "")
	t.Setenv("SARCOLOR_TILE_THRESHOLD", "")

	small := filepath.Join(dir, "small.png")
	large := filepath.Join(dir, "large.png")
	writeScene(t, small, 64, 48)
	writeScene(t, large, 600, 300)

	out := filepath.Join(dir, "out")
	cmd := newColorizeCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"-o", out, "-p", "2", small, large})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	for name, size := range map[string]image.Point{"small_color.png": {64, 48}, "large_color.png": {600, 300}} {
		img, format, err := vision.LoadImage(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if format != vision.FormatPNG {
			t.Errorf("%s: format %s, erwartet png", name, format)
		}
		if got := vision.Size(img); got != size {
			t.Errorf("%s: groesse %v, erwartet %v", name, got, size)
		}
		if _, ok := img.(*image.Gray); ok {
			t.Errorf("%s: erwartet farbiges Bild", name)
		}
	}
}

func TestColorizeLocalUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SARCOLOR_MODELS", filepath.Join(dir, "missing.yaml"))

	in := filepath.Join(dir, "scene.png")
	writeScene(t, in, 16, 16)

	cmd := newColorizeCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"-c", "sea", in})
	if err := cmd.Execute(); err == nil {
		t.Fatal("erwartet Fehler fuer unbekannte Kategorie")
	}
	if _, err := os.Stat(outputPath(in, "")); !os.IsNotExist(err) {
		t.Errorf("keine Ausgabe erwartet, stat: %v", err)
	}
}

func TestColorizeLocalInvalidImage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SARCOLOR_MODELS", filepath.Join(dir, "missing.yaml"))

	in := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(in, []byte("no image here"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newColorizeCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{in})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), in) {
		t.Fatalf("erwartet Fehler mit Dateiname, got %v", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	got, err := decodeDataURL(dataURLPrefix + "aGFsbG8=")
	if err != nil || string(got) != "hallo" {
		t.Errorf("decodeDataURL = %q, %v", got, err)
	}
	if _, err := decodeDataURL("https://example.com/x.png"); err == nil {
		t.Error("erwartet Fehler ohne data URL")
	}
}

func TestLutGradient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.lut")

	var out bytes.Buffer
	cmd := newLutCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gradient", "--colors", "#000000,#0000ff", "--dtype", "f16", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "f16") {
		t.Errorf("ausgabe %q ohne dtype", out.String())
	}

	table, err := lut.LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows != lut.Levels || table.Cols != 3 {
		t.Fatalf("tabelle %dx%d, erwartet %dx3", table.Rows, table.Cols, lut.Levels)
	}
	if b := table.At(lut.Levels-1, 2); b < 0.99 {
		t.Errorf("blau am hellen Ende = %f, erwartet ~1", b)
	}
	if r := table.At(0, 0); r > 0.01 {
		t.Errorf("rot am dunklen Ende = %f, erwartet ~0", r)
	}

	out.Reset()
	cmd.SetArgs([]string{"show", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "256x3") {
		t.Errorf("show ausgabe %q", out.String())
	}
}

func TestLutGradientRejectsSingleColor(t *testing.T) {
	cmd := newLutCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"gradient", "--colors", "#000000", filepath.Join(t.TempDir(), "x.lut")})
	if err := cmd.Execute(); err == nil {
		t.Error("erwartet Fehler fuer einzelne Farbe")
	}
}
