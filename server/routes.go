// routes.go - Router-Registrierung und Server-Start
// Enthaelt: GenerateRoutes(), Serve()

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/7blacky7/sarcolor/envconfig"
	"github.com/7blacky7/sarcolor/logutil"
	"github.com/7blacky7/sarcolor/pipeline"
	"github.com/7blacky7/sarcolor/store"
	"github.com/7blacky7/sarcolor/version"

	// Modell-Backends registrieren
	_ "github.com/7blacky7/sarcolor/model/linear"
	_ "github.com/7blacky7/sarcolor/model/lut"
	_ "github.com/7blacky7/sarcolor/model/onnx"
)

var mode string = gin.DebugMode

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodHead, http.MethodOptions}
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(corsConfig))

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "sarcolor is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "sarcolor is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Colorization
	r.POST("/api/colorize", s.ColorizeHandler)
	r.POST("/colorize", s.LegacyColorizeHandler)

	// Objekte
	r.PUT("/api/images/:id", s.UploadHandler)
	r.GET("/files/*key", s.GetFileHandler)
	r.HEAD("/files/*key", s.GetFileHandler)
	r.PUT("/files/*key", s.PutFileHandler)

	// Modelle und History
	r.GET("/api/models", s.ModelsHandler)
	r.POST("/api/reload", s.ReloadHandler)
	r.GET("/api/history", s.HistoryHandler)

	return r
}

// Serve laedt die Modelle, oeffnet Store und History und startet den HTTP-Server
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	bucket, err := store.Open(envconfig.Bucket(), envconfig.PublicURL())
	if err != nil {
		return err
	}

	var history *store.History
	if !envconfig.NoHistory() {
		if history, err = store.OpenHistory(envconfig.DB()); err != nil {
			return err
		}
	}

	s := New(Config{
		Addr:        ln.Addr(),
		Manifest:    envconfig.Models(),
		Options:     pipeline.OptionsFromEnv(),
		Bucket:      bucket,
		History:     history,
		NumParallel: int(envconfig.NumParallel()),
		MaxQueue:    int(envconfig.MaxQueue()),
		Timeout:     envconfig.RequestTimeout(),
	})

	set, err := s.Reload()
	if err != nil {
		s.Close()
		return err
	}
	slog.Info("models loaded", "categories", len(set.Categories()), "classifier", set.Classifier != nil, "input_size", set.InputSize)

	ctx, done := context.WithCancel(context.Background())

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{
		Handler: s.GenerateRoutes(),
	}

	// listen for a ctrl+c and release the loaded models
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
		if err := s.Close(); err != nil {
			slog.Warn("shutdown", "error", err)
		}
		done()
	}()

	err = srvr.Serve(ln)
	// If server is closed from the signal handler, wait for the ctx to be done
	// otherwise error out quickly
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-ctx.Done()
	return nil
}
