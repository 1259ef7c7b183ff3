// Package server exposes the evaluator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/logger"
	"github.com/spigell/jobstir/internal/matching"
)

const (
	defaultAddress        = ":8080"
	defaultMaxBatch       = 50
	defaultMaxUploadBytes = 5 << 20
	defaultMaxBodyBytes   = 10 << 20
	multipartOverhead     = 64 << 10
	shutdownTimeout       = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second
)

// Service is the part of the evaluator the handlers use.
type Service interface {
	Evaluate(ctx context.Context, req evaluator.Request) (*evaluator.Result, error)
	EvaluateBatch(ctx context.Context, reqs []evaluator.Request) []evaluator.Outcome
	Recommend(ctx context.Context, resumeText string, limit int) ([]matching.Recommendation, error)
}

type Config struct {
	Address        string `mapstructure:"address"`
	MaxBatch       int    `mapstructure:"max-batch"`
	MaxUploadBytes int64  `mapstructure:"max-upload-bytes"`
	MaxBodyBytes   int64  `mapstructure:"max-body-bytes"`
}

func (c Config) withDefaults() Config {
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = defaultMaxBatch
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	return c
}

type Server struct {
	cfg     Config
	service Service
	logger  *zap.Logger
	engine  *gin.Engine
}

// New builds the gin engine with middleware and routes registered. The gin
// mode is left to the caller.
func New(cfg Config, service Service, log *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg.withDefaults(),
		service: service,
		logger:  logger.Component(log, "server"),
	}

	r := gin.New()
	r.MaxMultipartMemory = s.cfg.MaxUploadBytes
	r.Use(
		requestID(),
		requestLogger(s.logger),
		recovery(s.logger),
	)

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	jsonBody := limitBody(s.cfg.MaxBodyBytes)
	api.POST("/evaluations", jsonBody, s.evaluate)
	api.POST("/evaluations/upload", limitBody(s.cfg.MaxUploadBytes+multipartOverhead), s.evaluateUpload)
	api.POST("/evaluations/batch", jsonBody, s.evaluateBatch)
	api.POST("/recommendations", jsonBody, s.recommend)

	s.engine = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}
