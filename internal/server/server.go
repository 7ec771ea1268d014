// Package server exposes the legal tasks over HTTP. Responses stream as
// newline-delimited JSON events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hpkotak/lexbud/internal/config"
	"github.com/hpkotak/lexbud/internal/prompt"
	"github.com/hpkotak/lexbud/internal/provider"
	"github.com/hpkotak/lexbud/internal/sections"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
	// writeSlack is added to the dispatch timeout for the write deadline.
	writeSlack = 30 * time.Second
)

// Dispatcher streams one request into a sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, req provider.Request, sink provider.Sink) (*provider.Result, error)
}

type Server struct {
	cfg        *config.Config
	dispatcher Dispatcher
	app        *echo.Echo
	address    string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg *config.Config, d Dispatcher) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if d == nil {
		return nil, errors.New("dispatcher must not be nil")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return nil, errors.New("server.addr cannot be empty")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Str("request_id", v.RequestID).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))

	srv := &Server{
		cfg:        cfg,
		dispatcher: d,
		app:        e,
		address:    cfg.Server.Addr,
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("addr", s.address).Msg("starting server")

	httpServer := &http.Server{
		Addr:        s.address,
		Handler:     s.app,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
	}
	if s.cfg.Timeout > 0 {
		httpServer.WriteTimeout = s.cfg.Timeout + writeSlack
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info().Msg("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/api/models", s.handleModels)
	s.app.POST("/api/tasks/:task", s.handleTask)
	s.app.POST("/api/chat", s.handleChat)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type modelInfo struct {
	ID      string `json:"id"`
	Backend string `json:"backend"`
}

type modelsResponse struct {
	Default string      `json:"default"`
	Models  []modelInfo `json:"models"`
}

func (s *Server) handleModels(c echo.Context) error {
	selector := s.cfg.Selector()
	resp := modelsResponse{Default: s.cfg.Model}
	for _, id := range s.cfg.CatalogueModels() {
		backend, err := selector.Classify(id)
		if err != nil {
			continue
		}
		resp.Models = append(resp.Models, modelInfo{ID: id, Backend: backend.String()})
	}
	return c.JSON(http.StatusOK, resp)
}

// taskRequest carries the model plus the parameters of every task; each task
// reads only its own fields.
type taskRequest struct {
	Model string `json:"model"`
	prompt.SummaryParams
	prompt.DraftParams
	prompt.ResearchParams
}

var taskBuilders = map[string]func(taskRequest) (prompt.Task, error){
	prompt.TaskSummarize: func(r taskRequest) (prompt.Task, error) { return prompt.Summary(r.SummaryParams) },
	prompt.TaskDraft:     func(r taskRequest) (prompt.Task, error) { return prompt.Draft(r.DraftParams) },
	prompt.TaskResearch:  func(r taskRequest) (prompt.Task, error) { return prompt.Research(r.ResearchParams) },
}

func (s *Server) handleTask(c echo.Context) error {
	name := c.Param("task")
	build, ok := taskBuilders[name]
	if !ok {
		return requestError{
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("unknown task %q", name),
			Type:    "not_found",
		}
	}

	var req taskRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	task, err := build(req)
	if err != nil {
		return requestError{Status: http.StatusBadRequest, Message: err.Error(), Type: "invalid_request_error"}
	}

	return s.stream(c, provider.Request{Model: req.Model, Messages: task.Messages, Layout: task.Layout})
}

type chatRequest struct {
	Model    string             `json:"model"`
	Messages []provider.Message `json:"messages"`
	Layout   string             `json:"layout"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	if len(req.Messages) == 0 {
		return requestError{Status: http.StatusBadRequest, Message: "messages cannot be empty", Type: "invalid_request_error"}
	}
	layout, ok := sections.ByName(req.Layout)
	if !ok {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("unknown layout %q", req.Layout),
			Type:    "invalid_request_error",
		}
	}

	return s.stream(c, provider.Request{Model: req.Model, Messages: req.Messages, Layout: layout})
}

// stream dispatches req and writes its events. Nothing is written until the
// first event, so an unsupported model still gets a plain 400.
func (s *Server) stream(c echo.Context, req provider.Request) error {
	req.ID = c.Response().Header().Get(echo.HeaderXRequestID)
	sink := &eventSink{c: c}

	result, err := s.dispatcher.Dispatch(c.Request().Context(), req, sink)
	if err != nil {
		var unsupported *provider.UnsupportedModelError
		if errors.As(err, &unsupported) {
			return requestError{Status: http.StatusBadRequest, Message: err.Error(), Type: "unsupported_model"}
		}
		return err
	}

	if result == nil {
		sink.write(event{Type: eventDone})
		return nil
	}
	sink.write(event{
		Type:     eventResult,
		Text:     result.Text,
		Backend:  result.Backend.String(),
		Sections: result.Sections,
	})
	return nil
}

const (
	eventUpdate = "update"
	eventError  = "error"
	eventResult = "result"
	eventDone   = "done"
)

type event struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Message  string          `json:"message,omitempty"`
	Backend  string          `json:"backend,omitempty"`
	Sections sections.Result `json:"sections,omitempty"`
}

// eventSink writes sink calls as NDJSON lines and flushes each one.
type eventSink struct {
	c       echo.Context
	started bool
	broken  bool
}

func (s *eventSink) Update(snapshot string) {
	s.write(event{Type: eventUpdate, Text: snapshot})
}

func (s *eventSink) Fail(message string) {
	s.write(event{Type: eventError, Message: message})
}

func (s *eventSink) write(ev event) {
	if s.broken {
		return
	}
	resp := s.c.Response()
	if !s.started {
		resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
		resp.Header().Set("Cache-Control", "no-cache")
		resp.WriteHeader(http.StatusOK)
		s.started = true
	}

	data, err := json.Marshal(ev)
	if err == nil {
		_, err = resp.Write(append(data, '\n'))
	}
	if err != nil {
		// The client is gone; its request context cancels the stream.
		log.Debug().Err(err).Msg("event write failed")
		s.broken = true
		return
	}
	resp.Flush()
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
				Type:    "invalid_request_error",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
			Type:    "invalid_request_error",
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
			Type:    "invalid_request_error",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
	Type    string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType string) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	return c.JSON(status, payload)
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, fmt.Sprint(he.Message), "invalid_request_error")
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error")
}
