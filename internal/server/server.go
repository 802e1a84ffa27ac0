// Package server exposes plan generation and section classification over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"itinera/internal/logger"
	"itinera/internal/planner"
	"itinera/internal/sections"
	"itinera/internal/trip"
)

const shutdownGrace = 10 * time.Second

type Options struct {
	Addr string
	// RequestTimeout bounds each model call; zero means no bound.
	RequestTimeout time.Duration
}

type Server struct {
	planner *planner.Planner
	opts    Options
	router  *gin.Engine
}

func New(p *planner.Planner, opts Options) *Server {
	s := &Server{planner: p, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recovery(), requestLogging())
	r.GET("/health", s.health)
	v1 := r.Group("/v1")
	v1.POST("/plans", s.createPlan)
	v1.POST("/plans/refine", s.refinePlan)
	v1.POST("/sections", s.classify)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.opts.Addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infow("HTTP server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type planResponse struct {
	Plan    *planner.Plan           `json:"plan"`
	Cleaned map[sections.Key]string `json:"cleaned"`
}

type refineRequest struct {
	Plan    string `json:"plan"`
	Request string `json:"request"`
}

type sectionsRequest struct {
	Text string `json:"text"`
}

type sectionsResponse struct {
	Sections sections.SectionMap     `json:"sections"`
	Cleaned  map[sections.Key]string `json:"cleaned"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePlanError maps input problems to 400 and everything the model call
// produced to 502, or 504 when the request timeout fired.
func writePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrInvalidPreferences),
		errors.Is(err, planner.ErrNoPlan),
		errors.Is(err, planner.ErrEmptyRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(c, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) modelContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

// health handles GET /health.
func (s *Server) health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// createPlan handles POST /v1/plans.
func (s *Server) createPlan(c *gin.Context) {
	var prefs trip.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := s.modelContext(c)
	defer cancel()

	plan, err := s.planner.Generate(ctx, prefs.Normalized())
	if err != nil {
		writePlanError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, planResponse{Plan: plan, Cleaned: plan.Sections.Cleaned()})
}

// refinePlan handles POST /v1/plans/refine.
func (s *Server) refinePlan(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Plan) == "" || strings.TrimSpace(req.Request) == "" {
		writeError(c, http.StatusBadRequest, "missing plan or request")
		return
	}
	ctx, cancel := s.modelContext(c)
	defer cancel()

	plan, err := s.planner.RefineText(ctx, req.Plan, req.Request)
	if err != nil {
		writePlanError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, planResponse{Plan: plan, Cleaned: plan.Sections.Cleaned()})
}

// classify handles POST /v1/sections. No model call is made.
func (s *Server) classify(c *gin.Context) {
	var req sectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	m := s.planner.Classify(req.Text)
	writeJSON(c, http.StatusOK, sectionsResponse{Sections: m, Cleaned: m.Cleaned()})
}
