// Package api exposes inspection and conversion of twix containers over
// HTTP.
package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/twixread/internal/cfl"
	"github.com/samcharles93/twixread/internal/convert"
	"github.com/samcharles93/twixread/internal/logger"
)

// Config configures a Server.
type Config struct {
	// Root confines request paths to one directory. Empty allows any path.
	Root    string
	Version string
	Logger  logger.Logger
}

type Server struct {
	root    string
	version string
	log     logger.Logger

	// mu serialises conversions; each one maps a whole output array.
	mu sync.Mutex
}

func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		root:    cfg.Root,
		version: cfg.Version,
		log:     log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/inspect", s.handleInspect)
	e.POST("/v1/convert", s.handleConvert)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleInspect(c *echo.Context) error {
	req, err := decodeJSON[InspectRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Scan < 0 {
		return writeBadRequest(c, "scan must not be negative")
	}
	if req.Scan > 0 && (req.Readout < 1 || req.Channels < 1) {
		return writeBadRequest(c, "readout and channels are required when scan is set")
	}
	path, err := resolvePath(s.root, req.Path)
	if err != nil {
		return writeFailure(c, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return writeFailure(c, err)
	}
	defer func() { _ = f.Close() }()

	rep, err := convert.Inspect(f, convert.InspectOptions{
		Scan:     req.Scan,
		Readout:  req.Readout,
		Channels: req.Channels,
	})
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (s *Server) handleConvert(c *echo.Context) error {
	req, err := decodeJSON[ConvertRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	opts := convert.Options{Dims: req.Extents.Dims(), Acquisitions: req.Acquisitions}
	if err := opts.Validate(); err != nil {
		return writeBadRequest(c, err.Error())
	}
	in, err := resolvePath(s.root, req.Input)
	if err != nil {
		return writeFailure(c, fmt.Errorf("input: %w", err))
	}
	base := cfl.Base(req.Output)
	out, err := resolvePath(s.root, base)
	if err != nil {
		return writeFailure(c, fmt.Errorf("output: %w", err))
	}
	for _, ext := range []string{".hdr", ".cfl"} {
		if _, err := resolvePath(s.root, base+ext); err != nil {
			return writeFailure(c, fmt.Errorf("output: %w", err))
		}
	}

	ctx := logger.WithContext(c.Request().Context(), s.log.With("input", in, "output", out))

	s.mu.Lock()
	res, err := convert.File(ctx, in, out, opts)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("conversion failed", "input", in, "error", err)
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, ConvertResponse{Output: out, Result: res})
}
