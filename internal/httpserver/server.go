// Package httpserver serves the yard backend as a JSON REST API.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/model"
)

// DefaultAddr is used when no listen address is configured.
const DefaultAddr = "127.0.0.1:3080"

// Server provides an HTTP API over a model.Backend.
type Server struct {
	addr      string
	backend   model.Backend
	logger    zerolog.Logger
	validate  *validator.Validate
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, backend model.Backend, logger zerolog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		backend:   backend,
		logger:    logger.With().Str("component", "http").Logger(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)

	animals := api.Group("/animals")
	animals.GET("", s.listAnimals)
	animals.POST("", s.createAnimal)
	animals.GET("/:id", s.getAnimal)
	animals.PUT("/:id", s.updateAnimal)
	animals.DELETE("/:id", s.deleteAnimal)
	animals.PATCH("/:id/status", s.setAnimalStatus)
	animals.POST("/:id/slaughter", s.slaughterAnimal)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", s.listSuppliers)
	suppliers.POST("", s.createSupplier)
	suppliers.GET("/:id", s.getSupplier)
	suppliers.PUT("/:id", s.updateSupplier)
	suppliers.DELETE("/:id", s.deleteSupplier)
	suppliers.PATCH("/:id/active", s.setSupplierActive)

	carcasses := api.Group("/carcasses")
	carcasses.GET("", s.listCarcasses)
	carcasses.GET("/:publicID", s.getCarcass)
	carcasses.DELETE("/:publicID", s.deleteCarcass)
	carcasses.PATCH("/:publicID/condemn", s.condemnCarcass)

	api.GET("/stats/throughput", s.throughput)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("serve failed")
		}
	}()
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("listening")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Debug()
		switch {
		case status >= http.StatusInternalServerError:
			ev = logger.Error()
		case status >= http.StatusBadRequest:
			ev = logger.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	counts, err := s.backend.RowCounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"row_counts": counts,
	})
}
