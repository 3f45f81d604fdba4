package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"ws-tools/internal/tools"

	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 1 << 20

// StatusForKind maps a tool error kind onto an HTTP status code.
func StatusForKind(kind tools.Kind) int {
	switch kind {
	case tools.KindInvalidInput:
		return http.StatusBadRequest
	case tools.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Server exposes the tool catalog and dispatcher over HTTP.
type Server struct {
	dispatcher   *tools.Dispatcher
	logger       *zap.Logger
	maxBodyBytes int64
}

// New constructs a Server.
func New(dispatcher *tools.Dispatcher, logger *zap.Logger, maxBodyBytes int64) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{dispatcher: dispatcher, logger: logger, maxBodyBytes: maxBodyBytes}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/tools", s.handleCatalog)
	mux.HandleFunc("POST /api/tools/{name}", s.handleInvoke)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("tool server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("tool server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tools.Success(s.dispatcher.Registry().Catalog()))
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	input, err := s.decodeBody(w, r)
	if err != nil {
		s.logger.Debug("rejected tool request body", zap.String("tool", name), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, tools.Envelope{OK: false, Error: "request body must be a JSON object"})
		return
	}

	env := s.dispatcher.Dispatch(r.Context(), name, input)
	status := http.StatusOK
	if !env.OK {
		status = StatusForKind(env.Kind)
	}
	writeJSON(w, status, env)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
