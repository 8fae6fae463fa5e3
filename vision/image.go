// MODUL: image
// ZWECK: Bild-Codec und Bildoperationen fuer die Colorization-Pipeline
// INPUT: Dateipfad, Bytes oder io.Reader; image.Image
// OUTPUT: Dekodierte Bilder, PNG-Bytes, skalierte Bilder
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei LoadImage
// ABHAENGIGKEITEN: golang.org/x/image (draw, webp, tiff), disintegration/imaging
// HINWEISE: Resampling immer mit Lanczos, Ausgabe immer als PNG (verlustfrei)

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	// Standard-Decoder registrieren
	_ "image/jpeg"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// LoadImage laedt ein Bild von einem Dateipfad
func LoadImage(path string) (image.Image, ImageFormat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FormatUnknown, errtypes.Wrap(errtypes.KindInvalidImage, "load", err)
	}
	return Decode(data)
}

// Decode dekodiert ein Bild aus Byte-Daten. Das Format wird vorab ueber die
// Magic-Bytes geprueft, damit unbekannte Daten nicht erst den Decoder erreichen.
func Decode(data []byte) (image.Image, ImageFormat, error) {
	format := DetectFormat(data)
	if err := ValidateFormat(format); err != nil {
		return nil, format, &errtypes.Error{Kind: errtypes.KindInvalidImage, Op: "decode", Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, &errtypes.Error{Kind: errtypes.KindInvalidImage, Op: "decode", Msg: format.String(), Err: err}
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, format, errtypes.New(errtypes.KindInvalidDimensions, "decode", "leeres Bild %dx%d", b.Dx(), b.Dy())
	}

	return img, format, nil
}

// DecodeReader dekodiert ein Bild aus einem io.Reader
func DecodeReader(r io.Reader) (image.Image, ImageFormat, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("daten lesen fehlgeschlagen: %w", err)
	}
	return Decode(data)
}

// EncodePNG kodiert ein Bild verlustfrei als PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png kodieren fehlgeschlagen: %w", err)
	}
	return buf.Bytes(), nil
}

// Size gibt die Bildgroesse als (Breite, Hoehe) zurueck
func Size(img image.Image) image.Point {
	return img.Bounds().Size()
}

// Resize skaliert ein Bild mit Lanczos auf exakt width x height
func Resize(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errtypes.New(errtypes.KindInvalidDimensions, "resize", "ungueltige Groesse: %dx%d", width, height)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// Luminance konvertiert ein Bild in ein einkanaliges Graustufenbild mit
// Ursprung (0,0). Bereits graue Bilder werden kopiert, nicht geteilt.
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
