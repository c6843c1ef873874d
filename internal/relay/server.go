package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/davrell/switchboard/internal/config"
	"github.com/davrell/switchboard/internal/mux"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Server accepts duplex websocket connections and serves streaming
// subscriptions plus one-shot multiplexer operations.
type Server struct {
	mux      mux.Mux
	port     int
	interval time.Duration
	lines    int
	upgrader websocket.Upgrader

	// ctx is the parent of every connection and polling loop; cancel drains
	// them all on shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// New creates a relay Server over the given multiplexer.
func New(m mux.Mux, cfg config.RelayConfig) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		mux:      m,
		port:     cfg.Port,
		interval: cfg.PollInterval(),
		lines:    cfg.CaptureLines,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler returns the HTTP handler serving /healthz and /ws.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", func(c *gin.Context) {
		s.handleWS(c.Writer, c.Request)
	})
	return router
}

// Start runs the relay until ctx is cancelled, then cancels every polling
// loop and shuts the listener down gracefully.
func (s *Server) Start(ctx context.Context, out io.Writer) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.cancel()
		srv.Shutdown(context.Background())
	}()

	if out != nil {
		fmt.Fprintf(out, "Relay listening on :%d\n", s.port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("relay: %w", err)
	}
	// Every loop must be gone before the listener resources are released.
	s.loops.Wait()
	return nil
}

// Close cancels every connection and loop. Used by tests and by Start.
func (s *Server) Close() {
	s.cancel()
}
