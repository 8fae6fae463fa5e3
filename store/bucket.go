// bucket.go - Object Store fuer Quell- und Ergebnisbilder
// Enthaelt: Bucket Interface, Objekt-Schluessel, FSBucket (lokales Verzeichnis),
// HTTPBucket (entfernter Store mit GET/PUT), Open

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// Praefixe im Bucket
const (
	SourcePrefix    = "sar_images"
	ColorizedPrefix = "colorized_sar_images"
)

// ErrNotExist wird zurueckgegeben wenn ein Objekt nicht existiert
var ErrNotExist = errors.New("object does not exist")

// Bucket ist ein einfacher Object Store. Alle Fehler sind vom Kind Storage.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) (publicURL string, err error)
}

// SourceKey gibt den Schluessel des Quellbildes zurueck
func SourceKey(imageID string) string {
	return SourcePrefix + "/" + imageID
}

// ColorizedKey gibt den Schluessel des eingefaerbten Bildes zurueck
func ColorizedKey(imageID string) string {
	return ColorizedPrefix + "/" + imageID
}

// ValidateID prueft eine Bild-ID. Erlaubt sind Buchstaben, Ziffern, '-', '_' und '.'.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || len(id) > 200 {
		return errtypes.New(errtypes.KindInvalidImage, "image id", "invalid image id %q", id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return errtypes.New(errtypes.KindInvalidImage, "image id", "invalid character %q in image id", r)
		}
	}
	return nil
}

// cleanKey normalisiert einen Schluessel und verhindert Pfade ausserhalb des Buckets
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", errtypes.New(errtypes.KindStorage, "key", "invalid key %q", key)
	}
	return k, nil
}

func notExist(op, key string) error {
	return &errtypes.Error{Kind: errtypes.KindStorage, Op: op, Msg: key, Err: ErrNotExist}
}

// FSBucket legt Objekte als Dateien unterhalb von Root ab
type FSBucket struct {
	Root string
	// Public ist die Basis-URL, unter der der Server die Objekte ausliefert
	Public *url.URL
}

// NewFSBucket erstellt das Wurzelverzeichnis falls noetig
func NewFSBucket(root string, public *url.URL) (*FSBucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "bucket", err)
	}
	return &FSBucket{Root: root, Public: public}, nil
}

func (b *FSBucket) path(key string) (string, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(b.Root, filepath.FromSlash(k)), nil
}

// Get liest ein Objekt
func (b *FSBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "get", err)
	}
	k, p, err := b.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notExist("get", k)
	} else if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "get", err)
	}
	return data, nil
}

// Put schreibt ein Objekt atomar (temp + rename). Der Inhaltstyp wird beim
// Ausliefern aus den Daten bestimmt und hier nicht gespeichert.
func (b *FSBucket) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	k, p, err := b.path(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}

	return b.url(k), nil
}

func (b *FSBucket) url(key string) string {
	if b.Public == nil {
		return key
	}
	return b.Public.JoinPath(strings.Split(key, "/")...).String()
}

// HTTPBucket spricht einen entfernten Store ueber GET und PUT auf Base/<key> an,
// z.B. den /files Endpunkt eines anderen sarcolor Servers
type HTTPBucket struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPBucket erstellt einen HTTPBucket mit dem Default-Client
func NewHTTPBucket(base *url.URL) *HTTPBucket {
	return &HTTPBucket{Base: base, Client: http.DefaultClient}
}

func (b *HTTPBucket) objectURL(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return b.Base.JoinPath(strings.Split(k, "/")...).String(), nil
}

// Get laedt ein Objekt
func (b *HTTPBucket) Get(ctx context.Context, key string) ([]byte, error) {
	u, err := b.objectURL(key)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "get", err)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "get", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notExist("get", key)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, errtypes.New(errtypes.KindStorage, "get", "%s: %s", u, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "get", err)
	}
	return data, nil
}

// Put laedt ein Objekt hoch und gibt dessen URL zurueck
func (b *HTTPBucket) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	u, err := b.objectURL(key)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return "", errtypes.Wrap(errtypes.KindStorage, "put", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return "", errtypes.New(errtypes.KindStorage, "put", "%s: %s", u, resp.Status)
	}
	return u, nil
}

// Open waehlt die Bucket-Implementierung: http(s) URLs ergeben einen
// HTTPBucket, alles andere ist ein lokales Verzeichnis
func Open(location string, public *url.URL) (Bucket, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, errtypes.Wrap(errtypes.KindConfiguration, "bucket", fmt.Errorf("parse %q: %w", location, err))
		}
		return NewHTTPBucket(u), nil
	}
	return NewFSBucket(location, public)
}
