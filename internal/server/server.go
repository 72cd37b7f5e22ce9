// Package server exposes the HTTP API: narration processing, render jobs,
// the debug tone endpoint, and dependency status.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"clipcast/internal/assembly"
	"clipcast/internal/capture"
	"clipcast/internal/config"
	"clipcast/internal/deps"
	"clipcast/internal/imageres"
	"clipcast/internal/logging"
	"clipcast/internal/narration"
	"clipcast/internal/services"
)

const maxRequestBody = 1 << 20

// renderTimeout bounds a full render: fetch, narration, capture, and encode.
const renderTimeout = 10 * time.Minute

// Processor turns an article URL into a narration payload.
type Processor interface {
	Process(ctx context.Context, rawURL string) (narration.Payload, error)
}

// Renderer assembles a narration payload into a video artifact.
type Renderer interface {
	Assemble(ctx context.Context, payload narration.Payload, job *assembly.Job) (string, error)
}

// Recorder captures narration audio with the local speech synthesizer.
type Recorder interface {
	Record(ctx context.Context, text string) ([]byte, error)
}

// Server is the clipcast HTTP API.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipeline  Processor
	assembler Renderer
	recorder  Recorder

	mu   sync.Mutex
	jobs map[string]*assembly.Job

	listener net.Listener
	server   *http.Server
}

// New builds a server. The recorder may be nil when the local capture path
// is disabled; renders then proceed without narration capture fallback.
func New(cfg *config.Config, pipeline Processor, assembler Renderer, recorder Recorder, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "api-server"),
		pipeline:  pipeline,
		assembler: assembler,
		recorder:  recorder,
		jobs:      make(map[string]*assembly.Job),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/debug-tone", s.handleDebugTone)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/jobs/", s.handleJobs)
	mux.HandleFunc("/api/status", s.handleStatus)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the request mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Args(logging.Error(err))...)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening",
		logging.Args(logging.String("address", listener.Addr().String()))...)
	return nil
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) readURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable request body")
		return "", false
	}
	var req urlRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return "", false
		}
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "Missing url")
		return "", false
	}
	return strings.TrimSpace(req.URL), true
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rawURL, ok := s.readURL(w, r)
	if !ok {
		return
	}

	payload, err := s.pipeline.Process(r.Context(), rawURL)
	if err != nil {
		s.logger.Warn("processing failed",
			logging.Args(logging.String(logging.FieldURL, rawURL), logging.Error(err))...)
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDebugTone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload := narration.DebugTonePayload(imageres.Resolve("", "diagnostic test tone"))
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rawURL, ok := s.readURL(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	for _, job := range s.jobs {
		if job.Active() {
			s.mu.Unlock()
			s.writeError(w, http.StatusConflict, "a render is already in progress")
			return
		}
	}
	job := assembly.NewJob()
	s.jobs[job.ID()] = job
	s.mu.Unlock()

	go s.render(rawURL, job)

	s.writeJSON(w, http.StatusAccepted, map[string]string{"jobId": job.ID()})
}

// render runs detached from the originating request.
func (s *Server) render(rawURL string, job *assembly.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	payload, err := s.pipeline.Process(ctx, rawURL)
	if err != nil {
		s.logger.Warn("render pipeline failed",
			logging.Args(logging.String(logging.FieldURL, rawURL), logging.Error(err))...)
		job.Fail(err)
		return
	}

	if !payload.HasAudio() && s.recorder != nil {
		audio, err := s.recorder.Record(ctx, payload.Summary)
		if err != nil {
			s.logger.Warn("narration capture failed",
				logging.Args(logging.Error(err))...)
		} else {
			payload.SetAudio(audio, narration.FormatWAV)
			payload.EstimatedDurationSec = narration.EstimateFromAudio(audio, narration.FormatWAV, s.cfg.MaxDuration())
		}
	}

	if _, err := s.assembler.Assemble(ctx, payload, job); err != nil {
		s.logger.Warn("render assembly failed",
			logging.Args(logging.String(logging.FieldJobID, job.ID()), logging.Error(err))...)
	}
}

func (s *Server) job(id string) *assembly.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job := s.job(id)
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	switch sub {
	case "":
		s.writeJSON(w, http.StatusOK, job.Snapshot())
	case "video":
		snapshot := job.Snapshot()
		if snapshot.Phase != assembly.PhaseDone || snapshot.Artifact == "" {
			s.writeError(w, http.StatusConflict, "render not finished")
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, snapshot.Artifact)
	default:
		s.writeError(w, http.StatusNotFound, "job not found")
	}
}

type dependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

type statusResponse struct {
	Running      bool               `json:"running"`
	Dependencies []dependencyStatus `json:"dependencies"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	statuses := deps.CheckBinaries(deps.Requirements(s.cfg))
	converted := make([]dependencyStatus, len(statuses))
	for i, status := range statuses {
		converted[i] = dependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		}
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:      true,
		Dependencies: converted,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Args(logging.Error(err))...)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// NewRecorder builds the capture recorder when the alternate capture path is
// enabled and its binary resolves, nil otherwise.
func NewRecorder(cfg *config.Config, logger *slog.Logger) Recorder {
	if !cfg.Capture.Enabled {
		return nil
	}
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:     "Speech synthesizer",
		Command:  cfg.Capture.Binary,
		Optional: true,
	}})
	if len(statuses) == 0 || !statuses[0].Available {
		logging.NewComponentLogger(logger, "api-server").Warn("speech synthesizer unavailable, capture fallback disabled",
			logging.Args(logging.String("binary", cfg.Capture.Binary))...)
		return nil
	}
	return capture.NewRecorder(cfg, logger)
}
