// models.go - Modell-Listing, Reload und History
// Enthaelt: ModelsHandler, ReloadHandler, HistoryHandler

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/sarcolor/api"
	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/pipeline"
	"github.com/7blacky7/sarcolor/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

// modelsResponse beschreibt ein Modell-Set
func modelsResponse(set *model.Set, opts pipeline.Options) api.ModelsResponse {
	resp := api.ModelsResponse{
		Classifier: set.Classifier != nil,
		Default:    set.Name(set.Default),
		InputSize:  opts.InputSize,
		BlockSize:  opts.BlockSize,
		Threshold:  opts.WholeImageLimit,
		Backends:   model.Backends(),
	}
	for _, c := range set.Categories() {
		resp.Categories = append(resp.Categories, api.Category{
			ID:      int(c.ID),
			Name:    c.Name,
			Backend: c.Backend,
			Default: c.Default,
		})
	}
	return resp
}

// ModelsHandler listet die Kategorien des geladenen Sets
func (s *Server) ModelsHandler(c *gin.Context) {
	gen, done, err := s.models()
	if err != nil {
		writeError(c, err)
		return
	}
	defer done()

	c.JSON(http.StatusOK, modelsResponse(gen.pipe.Set(), gen.pipe.Options()))
}

// ReloadHandler baut das Modell-Set neu. Laufende Requests behalten das alte.
func (s *Server) ReloadHandler(c *gin.Context) {
	if _, err := s.Reload(); err != nil {
		writeError(c, err)
		return
	}
	s.ModelsHandler(c)
}

// HistoryHandler gibt die letzten Jobs zurueck, neueste zuerst
func (s *Server) HistoryHandler(c *gin.Context) {
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	resp := api.HistoryResponse{Jobs: []api.Job{}}
	if s.history == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	jobs, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, apiJob(j))
	}
	c.JSON(http.StatusOK, resp)
}

func apiJob(j store.Job) api.Job {
	return api.Job{
		ID:         j.ID,
		ImageID:    j.ImageID,
		Category:   j.Category,
		Path:       j.Path,
		Rows:       j.Rows,
		Cols:       j.Cols,
		Majority:   j.Majority,
		Override:   j.Override,
		Inferences: j.Inferences,
		Status:     j.Status,
		Error:      j.Error,
		Duration:   api.Duration{Duration: j.Duration},
		CreatedAt:  j.CreatedAt,
	}
}
