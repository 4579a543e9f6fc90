// Package server exposes the extraction engine over HTTP: template listing,
// template extraction and auto-layout scans on multipart uploads, prometheus
// metrics, and a websocket variant that streams per-stage progress.
package server

import (
	"context"
	"errors"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/template"
)

// extractor is the engine surface the server depends on.
type extractor interface {
	ExtractImage(ctx context.Context, img image.Image, templateID string) (*extract.Result, error)
	ScanImage(ctx context.Context, img image.Image) (*extract.ScanResult, error)
	Store() *template.Store
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	engine      extractor
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
}

// HealthResponse reports service liveness and the loaded template count.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Templates int    `json:"templates"`
	Time      string `json:"time"`
}

// TemplatesResponse lists the registered template summaries.
type TemplatesResponse struct {
	Templates []template.Info `json:"templates"`
	Count     int             `json:"count"`
}

// ExtractResponse wraps one template extraction outcome.
type ExtractResponse struct {
	Success bool            `json:"success"`
	Result  *extract.Result `json:"result,omitempty"`
	Missing []string        `json:"missing_required,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ScanResponse wraps one auto-layout scan outcome.
type ScanResponse struct {
	Success bool                `json:"success"`
	Result  *extract.ScanResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// NewServer creates a server over an extraction engine. The server takes
// ownership of the engine and closes it on Close.
func NewServer(config Config, engine extractor) (*Server, error) {
	if engine == nil {
		return nil, errors.New("an extraction engine is required")
	}
	return &Server{
		engine:      engine,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// Close releases engine resources.
func (s *Server) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/templates", s.corsMiddleware(s.templatesHandler))
	mux.HandleFunc("/templates/", s.corsMiddleware(s.templateInfoHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.scanHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
