// Package server exposes chat sessions to the browser widget over a small
// JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"glowdesk/internal/chat"
	"glowdesk/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionFactory builds a session rendering into r.
type SessionFactory func(r view.Renderer) *chat.Session

type entry struct {
	mu      sync.Mutex
	session *chat.Session
	buf     *view.Buffer
	// lastSeen is the unix nano time of the latest request for this session.
	lastSeen atomic.Int64
}

// Server keeps one chat session per browser session id.
type Server struct {
	newSession     SessionFactory
	logger         *zap.Logger
	requestTimeout time.Duration
	sessionTTL     time.Duration
	maxSessions    int
	now            func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

type Options struct {
	NewSession     SessionFactory
	Logger         *zap.Logger
	RequestTimeout time.Duration
	// SessionTTL evicts sessions idle for longer. Zero keeps them forever.
	SessionTTL time.Duration
	// MaxSessions caps the registry. Zero means no cap.
	MaxSessions int
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		newSession:     opts.NewSession,
		logger:         logger,
		requestTimeout: opts.RequestTimeout,
		sessionTTL:     opts.SessionTTL,
		maxSessions:    opts.MaxSessions,
		now:            time.Now,
		sessions:       make(map[string]*entry),
	}
}

// Status values reported to the widget.
const (
	StatusOK       = "ok"
	StatusEmpty    = "empty"
	StatusOffTopic = "off_topic"
	StatusBusy     = "busy"
	StatusFailed   = "failed"
)

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	View            []view.Instruction `json:"view"`
	ContextTracking bool               `json:"context_tracking"`
	ShowHistory     bool               `json:"show_history"`
	ContextLabel    string             `json:"context_label"`
	HistoryLabel    string             `json:"history_label"`
	Pending         bool               `json:"pending"`
}

type submitRequest struct {
	Text string `json:"text"`
}

// Handler builds the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/sessions")
	api.POST("", s.createSession)
	api.GET("/:id", s.withSession(s.getSession))
	api.POST("/:id/messages", s.withSession(s.submit))
	api.POST("/:id/toggles/context", s.withSession(s.toggleContext))
	api.POST("/:id/toggles/history", s.withSession(s.toggleHistory))
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.sessionTTL > 0 {
		go s.sweep(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Len returns the number of live sessions.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions idle for longer than the TTL. Sessions waiting on
// a reply are kept. It returns the number evicted.
func (s *Server) EvictIdle() int {
	if s.sessionTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

// evictLocked must be called with s.mu held.
func (s *Server) evictLocked() int {
	cutoff := s.now().Add(-s.sessionTTL).UnixNano()
	n := 0
	for id, e := range s.sessions {
		if e.lastSeen.Load() > cutoff {
			continue
		}
		e.mu.Lock()
		pending := e.session.State().Pending()
		e.mu.Unlock()
		if pending {
			continue
		}
		delete(s.sessions, id)
		n++
	}
	if n > 0 {
		s.logger.Info("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", len(s.sessions)))
	}
	return n
}

func (s *Server) sweep(ctx context.Context) {
	interval := s.sessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

func (s *Server) touch(e *entry) {
	e.lastSeen.Store(s.now().UnixNano())
}

func (s *Server) createSession(c *gin.Context) {
	e := &entry{buf: &view.Buffer{}}
	e.session = s.newSession(e.buf)
	s.touch(e)

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		if s.sessionTTL > 0 {
			s.evictLocked()
		}
		if len(s.sessions) >= s.maxSessions {
			s.mu.Unlock()
			s.logger.Warn("session limit reached", zap.Int("max", s.maxSessions))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many sessions"})
			return
		}
	}
	s.sessions[e.session.ID()] = e
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session", e.session.ID()))
	c.JSON(http.StatusCreated, e.response(StatusOK))
}

func (s *Server) withSession(h func(*gin.Context, *entry)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.RLock()
		e, ok := s.sessions[c.Param("id")]
		s.mu.RUnlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		s.touch(e)
		h(c, e)
	}
}

func (s *Server) getSession(c *gin.Context, e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c.JSON(http.StatusOK, e.response(StatusOK))
}

// submit holds the entry lock only around Begin and Finish; the completion
// call runs unlocked so toggles and reads stay responsive while pending.
func (s *Server) submit(c *gin.Context, e *entry) {
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	e.mu.Lock()
	req, err := e.session.Begin(body.Text)
	if err != nil {
		code, status := classify(err)
		resp := e.response(status)
		e.mu.Unlock()
		c.JSON(code, resp)
		return
	}
	e.mu.Unlock()

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	reply, sendErr := e.session.Send(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.session.Finish(reply, sendErr); err != nil {
		code, status := classify(err)
		c.JSON(code, e.response(status))
		return
	}
	c.JSON(http.StatusOK, e.response(StatusOK))
}

func (s *Server) toggleContext(c *gin.Context, e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.ToggleContext()
	c.JSON(http.StatusOK, e.response(StatusOK))
}

func (s *Server) toggleHistory(c *gin.Context, e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.ToggleHistory()
	c.JSON(http.StatusOK, e.response(StatusOK))
}

// response must be called with e.mu held.
func (e *entry) response(status string) SessionResponse {
	state := e.session.State()
	contextLabel, historyLabel := e.session.Labels()
	return SessionResponse{
		ID:              e.session.ID(),
		Status:          status,
		View:            e.buf.Items(),
		ContextTracking: state.ContextTrackingEnabled(),
		ShowHistory:     state.ShowHistoryEnabled(),
		ContextLabel:    contextLabel,
		HistoryLabel:    historyLabel,
		Pending:         state.Pending(),
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return http.StatusBadRequest, StatusEmpty
	case errors.Is(err, chat.ErrOffTopic):
		return http.StatusOK, StatusOffTopic
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict, StatusBusy
	default:
		return http.StatusBadGateway, StatusFailed
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
