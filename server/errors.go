// MODUL: errors
// ZWECK: Fehler-Definitionen und Abbildung auf HTTP-Status und API-Codes
// INPUT: Fehler aus Pipeline, Modell-Set und Store
// OUTPUT: JSON-Fehler {"code", "error"} mit passendem Status
// NEBENEFFEKTE: HTTP-Responses schreiben
// ABHAENGIGKEITEN: gin-gonic/gin, types/errtypes
// HINWEISE: Unbekannte Fehler sind INTERNAL_ERROR mit 500

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/sarcolor/store"
	"github.com/7blacky7/sarcolor/types/errtypes"
)

var (
	// ErrMaxQueue wird zurueckgegeben wenn die Warteschlange voll ist
	ErrMaxQueue = errors.New("server busy, please try again.  maximum pending requests exceeded")

	// ErrNoModels wird zurueckgegeben solange kein Modell-Set geladen ist
	ErrNoModels = errors.New("no models loaded")
)

// errorStatus ist Status und API-Code einer Fehlerart
type errorStatus struct {
	status int
	code   string
}

// kindStatus mappt errtypes.Kind auf HTTP-Status und API-Code
var kindStatus = map[errtypes.Kind]errorStatus{
	errtypes.KindInvalidDimensions:   {http.StatusBadRequest, "INVALID_DIMENSIONS"},
	errtypes.KindInvalidImage:        {http.StatusBadRequest, "INVALID_IMAGE"},
	errtypes.KindMissingCategory:     {http.StatusNotFound, "MISSING_CATEGORY"},
	errtypes.KindUnclassifiableInput: {http.StatusUnprocessableEntity, "UNCLASSIFIABLE_INPUT"},
	errtypes.KindShapeMismatch:       {http.StatusInternalServerError, "SHAPE_MISMATCH"},
	errtypes.KindModelInference:      {http.StatusInternalServerError, "MODEL_INFERENCE_ERROR"},
	errtypes.KindStorage:             {http.StatusBadGateway, "STORAGE_ERROR"},
	errtypes.KindConfiguration:       {http.StatusInternalServerError, "CONFIGURATION_ERROR"},
}

// statusOf bestimmt Status und Code eines Fehlers
func statusOf(err error) errorStatus {
	switch {
	case errors.Is(err, ErrMaxQueue):
		return errorStatus{http.StatusServiceUnavailable, "SERVER_BUSY"}
	case errors.Is(err, ErrNoModels):
		return errorStatus{http.StatusServiceUnavailable, "MODELS_NOT_LOADED"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorStatus{http.StatusGatewayTimeout, "TIMEOUT"}
	case errors.Is(err, store.ErrNotExist):
		return errorStatus{http.StatusNotFound, "NOT_FOUND"}
	}

	if s, ok := kindStatus[errtypes.KindOf(err)]; ok {
		return s
	}
	return errorStatus{http.StatusInternalServerError, "INTERNAL_ERROR"}
}

// writeError schreibt einen Fehler als JSON Response und bricht ab
func writeError(c *gin.Context, err error) {
	s := statusOf(err)
	if s.status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "code", s.code, "error", err)
	}
	c.AbortWithStatusJSON(s.status, gin.H{"code": s.code, "error": err.Error()})
}

// badRequest schreibt einen 400 fuer ungueltige Request-Bodies
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": msg})
}
