package api

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	reader "memwatch/internal/memory"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Source is the read surface of the memory reader plus interval control
type Source interface {
	Usage() observable.View[reader.MemorySnapshot]
	TopProcesses() observable.View[[]ranking.ProcessUsage]
	UtilizationRatio() observable.View[float64]
	Interval() time.Duration
	SetInterval(seconds int)
}

type formattedUsage struct {
	Total string `json:"total"`
	Used  string `json:"used"`
	Free  string `json:"free"`
}

type usageResponse struct {
	Total       float64        `json:"total"`
	Used        float64        `json:"used"`
	Free        float64        `json:"free"`
	Utilization float64        `json:"utilization"`
	Timestamp   time.Time      `json:"timestamp"`
	Formatted   formattedUsage `json:"formatted"`
}

func newUsageResponse(snapshot reader.MemorySnapshot) usageResponse {
	return usageResponse{
		Total:       snapshot.Total,
		Used:        snapshot.Used,
		Free:        snapshot.Free,
		Utilization: reader.UtilizationRatio(snapshot),
		Timestamp:   snapshot.Timestamp,
		Formatted: formattedUsage{
			Total: reader.FormatBytes(snapshot.Total),
			Used:  reader.FormatBytes(snapshot.Used),
			Free:  reader.FormatBytes(snapshot.Free),
		},
	}
}

type intervalRequest struct {
	Seconds *int `json:"seconds" binding:"required,min=0,max=86400"`
}

// Server exposes the reader over HTTP
type Server struct {
	source  Source
	hub     *Hub
	logger  *zap.Logger
	engine  *gin.Engine
	clients atomic.Uint64

	upgrader websocket.Upgrader
}

// NewServer registers the memory routes. metrics may be nil.
func NewServer(source Source, hub *Hub, metrics http.Handler, logger *zap.Logger) (*Server, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if hub == nil {
		return nil, ErrNilHub
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		source: source,
		hub:    hub,
		logger: logger.With(zap.String("component", "http")),
		engine: gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	memory := s.engine.Group("/memory")
	{
		memory.GET("/usage", s.getUsage)
		memory.GET("/processes", s.getProcesses)
		memory.PUT("/interval", s.putInterval)
		memory.GET("/stream", s.stream)
	}
	if metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics))
	}

	return s, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown")
	}
	if err := <-errC; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) getUsage(c *gin.Context) {
	c.JSON(http.StatusOK, newUsageResponse(s.source.Usage().Get()))
}

func (s *Server) getProcesses(c *gin.Context) {
	processes := s.source.TopProcesses().Get()
	if processes == nil {
		processes = []ranking.ProcessUsage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"processes":   processes,
		"utilization": s.source.UtilizationRatio().Get(),
	})
}

func (s *Server) putInterval(c *gin.Context) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.source.SetInterval(*req.Seconds)
	interval := s.source.Interval()
	s.logger.Info("update interval changed over http",
		zap.Int("requested", *req.Seconds),
		zap.Duration("interval", interval),
	)

	c.JSON(http.StatusOK, gin.H{"interval_seconds": int(interval / time.Second)})
}

func (s *Server) stream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   c.ClientIP() + "-" + strconv.FormatUint(s.clients.Add(1), 10),
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
	// the current value first, later publishes follow from the hub
	cl.send <- Message{Type: "usage", Timestamp: time.Now(), Data: newUsageResponse(s.source.Usage().Get())}

	if !s.hub.add(cl) {
		_ = conn.Close()
		return
	}

	go s.hub.readPump(cl)
	go s.hub.writePump(cl)
}
