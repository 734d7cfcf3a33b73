// Package server exposes the LLM proxy and the student store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

type Options struct {
	// Provider backs /api/gemini. Nil disables the proxy with 503s.
	Provider llm.Provider
	Profiles store.ProfileRepo
	Log      *zap.Logger

	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	Burst     int

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string
}

type Server struct {
	opts   Options
	log    *zap.Logger
	engine *gin.Engine
}

func New(opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	s := &Server{opts: opts, log: logger.OrNop(opts.Log)}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), metrics.MetricsMiddleware())

	r.GET("/healthz", s.health)
	r.GET("/metrics", metrics.PrometheusHandler())

	api := r.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(newIPLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1)).middleware())
	}
	api.Any("/gemini", s.proxy)

	students := api.Group("/students")
	students.GET("", s.listStudents)
	students.POST("", s.createStudent)
	students.GET("/:name", s.getStudent)
	students.PUT("/:name", s.saveStudent)
	students.DELETE("/:name", s.deleteStudent)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{"status": "ok", "llm": s.opts.Provider != nil}
	if s.opts.Provider != nil {
		status["model"] = s.opts.Provider.ModelID()
	}
	c.JSON(http.StatusOK, status)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)))
	}
}

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{limiters: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
