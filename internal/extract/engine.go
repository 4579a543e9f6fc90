// Package extract orchestrates template-driven field extraction: regions are
// located and recognized over a bounded worker pool, then resolved into
// typed, validated field values. The package also hosts the auto-layout scan
// used when a page carries no template.
package extract

import (
	"errors"
	"log/slog"

	"github.com/atlasocr/wasl/internal/layout"
	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/template"
)

// DefaultWorkers caps the region worker pool when the caller does not set
// an explicit size.
const DefaultWorkers = 4

// Config holds configuration for the extraction engine.
type Config struct {
	// Workers caps the per-run region pool; the effective pool size is the
	// smaller of this and the region count.
	Workers int

	// Layout tunes the auto-layout classifier built when none is injected.
	Layout layout.Config
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Workers: DefaultWorkers,
		Layout:  layout.DefaultConfig(),
	}
}

// Builder constructs an Engine with fluent configuration.
type Builder struct {
	cfg        Config
	store      *template.Store
	backend    ocr.Backend
	engines    *ocr.EngineSet
	classifier layout.Classifier
	logger     *slog.Logger
}

// NewBuilder creates an engine builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithStore sets the template store extraction runs resolve ids against.
func (b *Builder) WithStore(s *template.Store) *Builder {
	if s != nil {
		b.store = s
	}
	return b
}

// WithBackend sets the OCR backend. Unless WithEngines is also called, the
// default engine set (french, arabic, receipt, hybrid) is built over it. The
// engine takes ownership and closes the backend on Close.
func (b *Builder) WithBackend(backend ocr.Backend) *Builder {
	if backend != nil {
		b.backend = backend
	}
	return b
}

// WithEngines overrides the engine registry entirely.
func (b *Builder) WithEngines(set *ocr.EngineSet) *Builder {
	if set != nil {
		b.engines = set
	}
	return b
}

// WithWorkers caps the region worker pool (if n > 0).
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Workers = n
	}
	return b
}

// WithLayoutConfig tunes the built-in auto-layout classifier.
func (b *Builder) WithLayoutConfig(cfg layout.Config) *Builder {
	b.cfg.Layout = cfg
	return b
}

// WithClassifier injects a layout classifier for auto-layout scans.
func (b *Builder) WithClassifier(c layout.Classifier) *Builder {
	if c != nil {
		b.classifier = c
	}
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Build wires the engine. A backend or an engine set is required; the store
// defaults to an empty one, the classifier to the projection heuristic and
// the logger to slog.Default.
func (b *Builder) Build() (*Engine, error) {
	if b.engines == nil && b.backend == nil {
		return nil, errors.New("an OCR backend or engine set is required")
	}

	e := &Engine{
		cfg:        b.cfg,
		store:      b.store,
		backend:    b.backend,
		engines:    b.engines,
		classifier: b.classifier,
		logger:     b.logger,
	}
	if e.store == nil {
		e.store = template.NewStore()
	}
	if e.engines == nil {
		e.engines = ocr.DefaultEngineSet(b.backend)
	}
	if e.classifier == nil {
		e.classifier = layout.NewProjectionClassifier(b.cfg.Layout)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.cfg.Workers <= 0 {
		e.cfg.Workers = DefaultWorkers
	}
	return e, nil
}

// Engine runs template extractions and auto-layout scans. It is safe for
// concurrent use: runs share only the read-only store and registry.
type Engine struct {
	cfg        Config
	store      *template.Store
	backend    ocr.Backend
	engines    *ocr.EngineSet
	classifier layout.Classifier
	logger     *slog.Logger
}

// Store returns the engine's template store.
func (e *Engine) Store() *template.Store { return e.store }

// Engines returns the engine registry.
func (e *Engine) Engines() *ocr.EngineSet { return e.engines }

// Close releases the owned backend, if any.
func (e *Engine) Close() error {
	if e.backend != nil {
		err := e.backend.Close()
		e.backend = nil
		return err
	}
	return nil
}
