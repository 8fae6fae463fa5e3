// Package server - HTTP-Server fuer die SAR-Colorization
// Beinhaltet: Server-Struct, Modell-Generationen fuer Hot Reload,
// Request-Begrenzung (Semaphore + Warteschlange)
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/7blacky7/sarcolor/model"
	"github.com/7blacky7/sarcolor/pipeline"
	"github.com/7blacky7/sarcolor/store"
)

// Config sind die Abhaengigkeiten eines Servers
type Config struct {
	Addr net.Addr
	// Manifest ist der Pfad fuer Reload
	Manifest string
	// Load baut ein Modell-Set, Default model.LoadOrDefault
	Load    func(path string) (*model.Set, error)
	Options pipeline.Options
	Bucket  store.Bucket
	// History ist optional, nil schaltet die Aufzeichnung ab
	History     *store.History
	NumParallel int
	MaxQueue    int
	Timeout     time.Duration
}

// generation ist ein Modell-Set samt seiner laufenden Requests
type generation struct {
	pipe *pipeline.Pipeline
	refs sync.WaitGroup
}

// Server verwaltet Modelle, Store und Request-Begrenzung
type Server struct {
	addr     net.Addr
	manifest string
	load     func(string) (*model.Set, error)
	opts     pipeline.Options
	bucket   store.Bucket
	history  *store.History
	timeout  time.Duration

	// mu schuetzt gen. refs.Add passiert unter RLock, damit nach dem
	// Tausch keine neuen Referenzen auf die alte Generation entstehen.
	mu  sync.RWMutex
	gen *generation

	reloadMu sync.Mutex

	sem      *semaphore.Weighted
	parallel int64
	maxQueue int64
	pending  atomic.Int64
}

// New erstellt einen Server ohne geladene Modelle
func New(cfg Config) *Server {
	if cfg.Load == nil {
		cfg.Load = model.LoadOrDefault
	}
	if cfg.NumParallel <= 0 {
		cfg.NumParallel = 1
	}
	if cfg.MaxQueue < 0 {
		cfg.MaxQueue = 0
	}
	return &Server{
		addr:     cfg.Addr,
		manifest: cfg.Manifest,
		load:     cfg.Load,
		opts:     cfg.Options,
		bucket:   cfg.Bucket,
		history:  cfg.History,
		timeout:  cfg.Timeout,
		sem:      semaphore.NewWeighted(int64(cfg.NumParallel)),
		parallel: int64(cfg.NumParallel),
		maxQueue: int64(cfg.MaxQueue),
	}
}

// SetModels tauscht das Modell-Set. Das alte Set wird geschlossen, sobald
// alle Requests, die es noch halten, fertig sind.
func (s *Server) SetModels(set *model.Set) {
	var next *generation
	if set != nil {
		next = &generation{pipe: pipeline.New(set, s.opts)}
	}

	s.mu.Lock()
	old := s.gen
	s.gen = next
	s.mu.Unlock()

	if old != nil {
		go retire(old)
	}
}

func retire(g *generation) {
	g.refs.Wait()
	if err := g.pipe.Set().Close(); err != nil {
		slog.Warn("close model set", "error", err)
	}
}

// Reload baut das Modell-Set aus dem Manifest neu
func (s *Server) Reload() (*model.Set, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	set, err := s.load(s.manifest)
	if err != nil {
		return nil, err
	}
	s.SetModels(set)
	return set, nil
}

// models reserviert die aktuelle Generation, release muss aufgerufen werden
func (s *Server) models() (*generation, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen == nil {
		return nil, nil, ErrNoModels
	}
	g := s.gen
	g.refs.Add(1)
	return g, g.refs.Done, nil
}

// schedule wartet auf einen freien Slot. Mehr als NumParallel+MaxQueue
// gleichzeitige Requests werden sofort mit ErrMaxQueue abgelehnt.
func (s *Server) schedule(ctx context.Context) (func(), error) {
	if s.pending.Add(1) > s.parallel+s.maxQueue {
		s.pending.Add(-1)
		return nil, ErrMaxQueue
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.pending.Add(-1)
		return nil, err
	}
	return func() {
		s.sem.Release(1)
		s.pending.Add(-1)
	}, nil
}

// Close schliesst das aktuelle Set nach den laufenden Requests
func (s *Server) Close() error {
	s.mu.Lock()
	old := s.gen
	s.gen = nil
	s.mu.Unlock()

	var err error
	if old != nil {
		old.refs.Wait()
		err = old.pipe.Set().Close()
	}
	if s.history != nil {
		if herr := s.history.Close(); err == nil {
			err = herr
		}
	}
	return err
}
