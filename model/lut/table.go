// Package lut - Lookup-Tabellen-Colorizer und das binaere Tabellenformat.
//
// MODUL: table
// ZWECK: Lesen und Schreiben von Gewichtstabellen (f32, f16, bf16)
// INPUT: io.Reader / Dateipfad
// OUTPUT: Table (Rows x Cols float32, row-major)
// NEBENEFFEKTE: Dateisystem-Zugriff bei LoadTable/SaveTable
// ABHAENGIGKEITEN: x448/float16, d4l3k/go-bfloat16
// HINWEISE: Header: "SCWT", dtype u8, reserviert u8, rows u16, cols u16 (little endian)
package lut

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// DType ist der Speichertyp der Tabellenwerte
type DType uint8

const (
	F32 DType = iota
	F16
	BF16
)

var magic = [4]byte{'S', 'C', 'W', 'T'}

// ErrBadMagic wird bei fremden Dateien zurueckgegeben
var ErrBadMagic = errors.New("lut: not a table file")

func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// ParseDType liest "f32", "f16" oder "bf16"
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(s) {
	case "f32", "float32", "":
		return F32, nil
	case "f16", "float16":
		return F16, nil
	case "bf16", "bfloat16":
		return BF16, nil
	}
	return 0, fmt.Errorf("lut: unknown dtype %q", s)
}

// Table ist eine dichte Rows x Cols Matrix
type Table struct {
	Rows, Cols int
	Data       []float32
}

// At gibt den Wert in Zeile r, Spalte c zurueck
func (t *Table) At(r, c int) float32 {
	return t.Data[r*t.Cols+c]
}

type header struct {
	Magic    [4]byte
	DType    DType
	Reserved uint8
	Rows     uint16
	Cols     uint16
}

// ReadTable liest eine Tabelle
func ReadTable(r io.Reader) (*Table, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("lut: header: %w", err)
	}
	if h.Magic != magic {
		return nil, ErrBadMagic
	}
	if h.Rows == 0 || h.Cols == 0 {
		return nil, fmt.Errorf("lut: empty table %dx%d", h.Rows, h.Cols)
	}

	n := int(h.Rows) * int(h.Cols)
	t := &Table{Rows: int(h.Rows), Cols: int(h.Cols), Data: make([]float32, n)}

	switch h.DType {
	case F32:
		bits := make([]uint32, n)
		if err := binary.Read(r, binary.LittleEndian, bits); err != nil {
			return nil, fmt.Errorf("lut: data: %w", err)
		}
		for i, b := range bits {
			t.Data[i] = math.Float32frombits(b)
		}
	case F16:
		bits := make([]uint16, n)
		if err := binary.Read(r, binary.LittleEndian, bits); err != nil {
			return nil, fmt.Errorf("lut: data: %w", err)
		}
		for i, b := range bits {
			t.Data[i] = float16.Frombits(b).Float32()
		}
	case BF16:
		raw := make([]byte, 2*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("lut: data: %w", err)
		}
		t.Data = bfloat16.DecodeFloat32(raw)
	default:
		return nil, fmt.Errorf("lut: unsupported %s", h.DType)
	}
	return t, nil
}

// WriteTable schreibt eine Tabelle im gegebenen Speichertyp
func WriteTable(w io.Writer, t *Table, dt DType) error {
	if t.Rows <= 0 || t.Cols <= 0 || t.Rows > math.MaxUint16 || t.Cols > math.MaxUint16 {
		return fmt.Errorf("lut: invalid table size %dx%d", t.Rows, t.Cols)
	}
	if len(t.Data) != t.Rows*t.Cols {
		return fmt.Errorf("lut: table %dx%d has %d values", t.Rows, t.Cols, len(t.Data))
	}

	h := header{Magic: magic, DType: dt, Rows: uint16(t.Rows), Cols: uint16(t.Cols)}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}

	switch dt {
	case F32:
		return binary.Write(w, binary.LittleEndian, t.Data)
	case F16:
		bits := make([]uint16, len(t.Data))
		for i, v := range t.Data {
			bits[i] = float16.Fromfloat32(v).Bits()
		}
		return binary.Write(w, binary.LittleEndian, bits)
	case BF16:
		_, err := w.Write(bfloat16.EncodeFloat32(t.Data))
		return err
	}
	return fmt.Errorf("lut: unsupported %s", dt)
}

// LoadTable liest eine Tabellendatei
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadTable(bufio.NewReader(f))
}

// SaveTable schreibt eine Tabellendatei
func SaveTable(path string, t *Table, dt DType) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := WriteTable(bw, t, dt); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
