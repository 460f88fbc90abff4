// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
	"github.com/okian/items/pkg/logger"
	"github.com/okian/items/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.NewItem) (model.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the items API.
type Server struct {
	healthHandler *HealthHandler
	itemsHandler  *ItemsHandler
	readyHandler  *ReadyHandler

	logger       logger.Logger
	corsOrigin   string
	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and handler errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithClock sets the time source of the health timestamp.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.healthHandler.clock = clock
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		itemsHandler:  NewItemsHandler(deps),
		readyHandler:  NewReadyHandler(deps),
		logger:        logger.Nop(),
		corsOrigin:    "*",
		maxBodyBytes:  100 << 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.itemsHandler.logger = s.logger
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /api/items", MetricsMiddleware(s.itemsHandler.HandleListItems, "items_list"))
	mux.HandleFunc("POST /api/items", MetricsMiddleware(
		JSONBodyMiddleware(s.itemsHandler.HandleCreateItem, s.maxBodyBytes), "items_create"))
	mux.HandleFunc("DELETE /api/items/{id}", MetricsMiddleware(s.itemsHandler.HandleDeleteItem, "items_delete"))

	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.readyHandler.HandleReady, "readyz"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// Handler wraps next with the middleware every request goes through.
func (s *Server) Handler(next http.Handler) http.Handler {
	return RequestIDMiddleware(AccessLogMiddleware(CORSMiddleware(next, s.corsOrigin), s.logger))
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err with the raw error text and its kind.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: fault.KindOf(err).String()})
}

// statusFor maps a fault kind onto a response code. Bodies over the
// size limit are reported as 413.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
