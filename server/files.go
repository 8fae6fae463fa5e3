// files.go - Upload und Auslieferung von Bucket-Objekten
// Enthaelt: UploadHandler (PUT /api/images/:id), GetFileHandler und
// PutFileHandler (/files/*key)

package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/sarcolor/api"
	"github.com/7blacky7/sarcolor/store"
	"github.com/7blacky7/sarcolor/types/errtypes"
	"github.com/7blacky7/sarcolor/vision"
)

// readBody liest den Request-Body bis maxImageBytes
func readBody(c *gin.Context) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes))
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindInvalidImage, "upload", err)
	}
	return data, nil
}

// UploadHandler speichert ein Quellbild unter sar_images/<id>
func (s *Server) UploadHandler(c *gin.Context) {
	id := c.Param("id")
	if err := store.ValidateID(id); err != nil {
		writeError(c, err)
		return
	}

	data, err := readBody(c)
	if err != nil {
		writeError(c, err)
		return
	}

	img, format, err := vision.Decode(data)
	if err != nil {
		writeError(c, err)
		return
	}

	key := store.SourceKey(id)
	u, err := s.bucket.Put(c.Request.Context(), key, data, format.MimeType())
	if err != nil {
		writeError(c, err)
		return
	}

	size := vision.Size(img)
	c.JSON(http.StatusCreated, api.UploadResponse{Key: key, URL: u, Format: format.String(), Width: size.X, Height: size.Y})
}

// GetFileHandler liefert ein Bucket-Objekt aus
func (s *Server) GetFileHandler(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, err := s.bucket.Get(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}

	contentType := vision.DetectFormat(data).MimeType()
	if contentType == vision.FormatUnknown.MimeType() {
		contentType = http.DetectContentType(data)
	}
	c.Data(http.StatusOK, contentType, data)
}

// PutFileHandler speichert ein Bild unter einem beliebigen Schluessel, damit
// ein anderer Server diesen als HTTP-Bucket nutzen kann
func (s *Server) PutFileHandler(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, err := readBody(c)
	if err != nil {
		writeError(c, err)
		return
	}

	format := vision.DetectFormat(data)
	if err := vision.ValidateFormat(format); err != nil {
		writeError(c, &errtypes.Error{Kind: errtypes.KindInvalidImage, Op: "upload", Err: err})
		return
	}

	u, err := s.bucket.Put(c.Request.Context(), key, data, format.MimeType())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.UploadResponse{Key: key, URL: u, Format: format.String()})
}
