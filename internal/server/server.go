// Package server exposes a running particle field over HTTP: the current
// frame as PNG, the active config and frame statistics.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/render/raster"
	"github.com/Garsondee/Particle-Field/internal/view"
)

const shutdownTimeout = 5 * time.Second

// Server serves one view drawn on a raster host.
type Server struct {
	view   *view.View
	host   *raster.Host
	logger *log.Logger
	engine *gin.Engine

	mu  sync.Mutex
	cfg config.Config
}

// New wires the routes. v must be mounted on host.
func New(v *view.View, host *raster.Host, cfg config.Config, logger *log.Logger) *Server {
	s := &Server{view: v, host: host, logger: logger, cfg: cfg}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/healthz", s.healthz)
	r.GET("/frame.png", s.frame)
	r.GET("/config", s.config)
	r.GET("/stats", s.stats)
	r.POST("/theme", s.toggleTheme)
	r.POST("/pointer", s.pointer)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// SetConfig swaps the active config and rebuilds the field from it.
func (s *Server) SetConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.view.Remount(view.OptionsFrom(cfg))
}

// Config returns the active config.
func (s *Server) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview shutdown: %w", err)
	}
	<-errc
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func (s *Server) healthz(c *gin.Context) {
	st := s.view.Stats()
	code := http.StatusOK
	if st.State != view.Running {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": st.State.String(), "view": st.ID})
}

// frame encodes the current canvas. ?w= and ?h= bound a scaled thumbnail.
func (s *Server) frame(c *gin.Context) {
	maxW, err1 := queryInt(c, "w")
	maxH, err2 := queryInt(c, "h")
	if err := errors.Join(err1, err2); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	var encErr error
	s.view.WithSurface(func(field.Surface) {
		canvas := s.host.Canvas()
		w, h := canvas.Size()
		if maxW == 0 {
			maxW = w
		}
		if maxH == 0 {
			maxH = h
		}
		encErr = raster.EncodePNG(&buf, canvas.Thumbnail(maxW, maxH))
	})
	if encErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": encErr.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) config(c *gin.Context) {
	c.Data(http.StatusOK, "application/toml; charset=utf-8", []byte(s.Config().String()))
}

type statsResponse struct {
	View      string `json:"view"`
	State     string `json:"state"`
	Variant   string `json:"variant"`
	Theme     string `json:"theme"`
	Frames    int    `json:"frames"`
	Particles int    `json:"particles"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Glowing   int    `json:"glowing"`
	Respawned int    `json:"respawned"`
}

func (s *Server) stats(c *gin.Context) {
	st := s.view.Stats()
	theme := "light"
	if st.Dark {
		theme = "dark"
	}
	c.JSON(http.StatusOK, statsResponse{
		View:      st.ID,
		State:     st.State.String(),
		Variant:   string(st.Variant),
		Theme:     theme,
		Frames:    st.Frames,
		Particles: st.Particles,
		Width:     st.Width,
		Height:    st.Height,
		Glowing:   st.Last.Glowing,
		Respawned: st.Last.Respawned,
	})
}

func (s *Server) toggleTheme(c *gin.Context) {
	s.view.ToggleTheme()
	c.JSON(http.StatusOK, gin.H{"dark": s.host.Dark()})
}

// pointer moves the virtual pointer to ?x=&y=.
func (s *Server) pointer(c *gin.Context) {
	x, err1 := strconv.ParseFloat(c.Query("x"), 64)
	y, err2 := strconv.ParseFloat(c.Query("y"), 64)
	if err := errors.Join(err1, err2); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.host.MovePointer(x, y)
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
