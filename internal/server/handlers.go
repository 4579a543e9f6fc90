package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/atlasocr/wasl/internal/common"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ver, _, _ := version.Info()
	response := HealthResponse{
		Status:    "healthy",
		Version:   ver,
		Templates: s.engine.Store().Len(),
		Time:      time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// templatesHandler lists the registered templates.
func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := s.engine.Store()
	infos := make([]template.Info, 0, store.Len())
	for _, id := range store.List() {
		info, err := store.Info(id)
		if err != nil {
			continue
		}
		infos = append(infos, *info)
	}

	s.writeJSON(w, http.StatusOK, TemplatesResponse{Templates: infos, Count: len(infos)})
}

// templateInfoHandler describes a single template by id.
func (s *Server) templateInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/templates/")
	if id == "" || strings.Contains(id, "/") {
		s.writeErrorResponse(w, "No template id provided", http.StatusBadRequest)
		return
	}

	info, err := s.engine.Store().Info(id)
	if err != nil {
		var unknown *template.UnknownTemplateError
		if errors.As(err, &unknown) {
			s.writeErrorResponse(w, err.Error(), http.StatusNotFound)
			return
		}
		s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// extractHandler runs a template extraction over an uploaded image.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stages := common.NewStages()
	decoded := stages.Time("decode")
	img, ok := s.decodeImageUpload(w, r)
	decoded()
	if !ok {
		return
	}

	templateID := r.FormValue("template_id")
	if templateID == "" {
		s.writeErrorResponse(w, "No template_id provided", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.boundedContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := s.engine.ExtractImage(ctx, img, templateID)
	elapsed := time.Since(start)
	stages.Record("extract", elapsed)
	if err != nil {
		extractionsTotal.WithLabelValues("template", "error").Inc()
		var unknown *template.UnknownTemplateError
		if errors.As(err, &unknown) {
			s.writeErrorResponse(w, err.Error(), http.StatusNotFound)
			return
		}
		s.writeErrorResponse(w, "Extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	extractionsTotal.WithLabelValues("template", "success").Inc()
	extractionDuration.WithLabelValues("template").Observe(elapsed.Seconds())
	fieldsResolved.WithLabelValues("template").Observe(float64(len(res.Fields)))

	slog.Info("extract request served",
		"template", templateID, "fields", len(res.Fields), "stages", stages.Milliseconds())

	s.writeJSON(w, http.StatusOK, ExtractResponse{
		Success: true,
		Result:  res,
		Missing: res.MissingRequired(),
	})
}

// scanHandler runs an auto-layout scan over an uploaded image.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stages := common.NewStages()
	decoded := stages.Time("decode")
	img, ok := s.decodeImageUpload(w, r)
	decoded()
	if !ok {
		return
	}

	ctx, cancel := s.boundedContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := s.engine.ScanImage(ctx, img)
	elapsed := time.Since(start)
	stages.Record("scan", elapsed)
	if err != nil {
		extractionsTotal.WithLabelValues("scan", "error").Inc()
		s.writeErrorResponse(w, "Scan failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	extractionsTotal.WithLabelValues("scan", "success").Inc()
	extractionDuration.WithLabelValues("scan").Observe(elapsed.Seconds())

	slog.Info("scan request served",
		"doc_type", res.DocType, "stages", stages.Milliseconds())

	s.writeJSON(w, http.StatusOK, ScanResponse{Success: true, Result: res})
}

// decodeImageUpload reads the multipart "image" part into a decoded image,
// writing the error response itself on failure.
func (s *Server) decodeImageUpload(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

// boundedContext derives a run context, bounded by the configured request
// timeout when one is set.
func (s *Server) boundedContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeoutSec > 0 {
		return context.WithTimeout(parent, time.Duration(s.timeoutSec)*time.Second)
	}
	return context.WithCancel(parent)
}

// writeJSON writes a JSON response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ExtractResponse{Success: false, Error: message})
}
