package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"karaoke/internal/api"
	"karaoke/internal/catalog"
	"karaoke/internal/logging"
	"karaoke/internal/notifications"
	"karaoke/internal/queue"
)

const (
	codeTimeout      = "TIMEOUT"
	maxImportBytes   = 4 << 20
	sseKeepAlive     = 25 * time.Second
	defaultOpTimeout = 10 * time.Second
)

// StatusFunc reports daemon runtime information for GET /api/status.
type StatusFunc func(ctx context.Context) (api.DaemonStatus, error)

// HandlerConfig wires the HTTP API to the services it exposes.
type HandlerConfig struct {
	Engine  *queue.Engine
	Catalog *catalog.Service
	// Hub feeds the server-sent event stream. Nil disables the endpoint.
	Hub    *notifications.Hub
	Status StatusFunc
	// Token enables bearer authentication when non-empty.
	Token            string
	OperationTimeout time.Duration
	DefaultLimit     int
	Logger           *slog.Logger
}

type apiServer struct {
	engine       *queue.Engine
	catalog      *catalog.Service
	hub          *notifications.Hub
	status       StatusFunc
	opTimeout    time.Duration
	defaultLimit int
	keepAlive    time.Duration
	logger       *slog.Logger
}

// NewHandler builds the gin router serving /api.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Engine == nil || cfg.Catalog == nil {
		return nil, errors.New("daemon: handler requires queue engine and catalog")
	}
	s := &apiServer{
		engine:       cfg.Engine,
		catalog:      cfg.Catalog,
		hub:          cfg.Hub,
		status:       cfg.Status,
		opTimeout:    cfg.OperationTimeout,
		defaultLimit: cfg.DefaultLimit,
		keepAlive:    sseKeepAlive,
		logger:       logging.NewComponentLogger(cfg.Logger, "api-server"),
	}
	if s.opTimeout <= 0 {
		s.opTimeout = defaultOpTimeout
	}
	return s.router(cfg.Token), nil
}

func (s *apiServer) router(token string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	// Queue ids are path escaped by clients and may contain slashes.
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "route not found", Code: queue.CodeValidation})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed", Code: queue.CodeValidation})
	})
	r.Use(gin.CustomRecovery(s.recover), requestContext(), s.accessLog())

	r.GET("/api/health", s.handleHealth)

	authed := r.Group("/api", authMiddleware(token))
	{
		authed.GET("/status", s.handleStatus)
		authed.GET("/queues", s.handleQueues)

		q := authed.Group("/queues/:queueId")
		q.GET("/items", s.handleItems)
		q.POST("/items", s.handleEnqueue)
		q.DELETE("/items", s.handleClear)
		q.GET("/items/peek", s.handlePeek)
		q.DELETE("/items/dequeue", s.handleDequeue)
		q.PUT("/items/:position", s.handleMove)
		q.DELETE("/items/:position", s.handleRemove)
		q.POST("/renumber", s.handleRenumber)
		q.GET("/playing", s.handlePlaying)
		q.PUT("/playing", s.handleSetPlaying)
		q.DELETE("/playing", s.handleClearPlaying)
		q.POST("/playing/next", s.handlePlayNext)
		q.POST("/playing/skip", s.handleSkip)
		q.GET("/events", s.handleEvents)

		authed.GET("/songs", s.handleSongs)
		authed.POST("/songs", s.handleCreateSong)
		authed.POST("/songs/search", s.handleSearchSongs)
		authed.POST("/songs/import", s.handleImportSongs)
		authed.GET("/songs/:id", s.handleSong)
		authed.DELETE("/songs/:id", s.handleDeleteSong)
		authed.PUT("/songs/:id/playCount", s.handleRecordPlay)
	}
	return r
}

// opContext bounds one queue or catalog operation.
func (s *apiServer) opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.opTimeout)
}

func (s *apiServer) recover(c *gin.Context, recovered any) {
	logging.WithContext(c.Request.Context(), s.logger).Error("handler panic",
		logging.String("route", c.FullPath()),
		logging.Any("panic", recovered),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error", Code: queue.CodeStore})
}

func (s *apiServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleStatus(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusOK, api.DaemonStatus{Running: true})
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	status, err := s.status(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// httpServer holds a listening http.Server.
type httpServer struct {
	listener net.Listener
	server   *http.Server
}

func listen(bind string, handler http.Handler) (*httpServer, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("api listen: %w", err)
	}
	return &httpServer{
		listener: listener,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

func (h *httpServer) addr() string { return h.listener.Addr().String() }

// serve blocks until ctx is cancelled, then drains connections.
func (h *httpServer) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(h.listener)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		_ = h.server.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
