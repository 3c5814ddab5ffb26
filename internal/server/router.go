package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/viz"
)

// Search result limits.
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Courses   int       `json:"courses"`
	Relations int       `json:"relations"`
	LoadedAt  time.Time `json:"loaded_at"`
}

func newHealthResponse(cat *catalog.Catalog) healthResponse {
	return healthResponse{
		Status:    "ok",
		Courses:   len(cat.Courses()),
		Relations: len(cat.Relations()),
		LoadedAt:  cat.LoadedAt(),
	}
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	// Course names may contain "/"; keep an escaped slash inside one path parameter.
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	r.GET("/", s.handlePage)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/graph", s.handleGraph)
		api.GET("/courses", s.handleCourses)
		api.GET("/courses/:name", s.handleCourse)
		api.GET("/search", s.handleSearch)
		api.GET("/events", gin.WrapH(s.hub))
	}
	return r
}

func (s *Server) handlePage(c *gin.Context) {
	view, err := viz.ParseView(c.Query("view"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	page, err := viz.GenerateHTML(nil, viz.HTMLOptions{
		Mode:   viz.ModeLive,
		Layout: s.config.Layout,
		Title:  s.config.Title,
		View:   view,
		Course: c.Query("course"),
	})
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, newHealthResponse(s.catalog.Load()))
}

func (s *Server) handleGraph(c *gin.Context) {
	view, err := viz.ParseView(c.Query("view"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	graph, err := viz.Build(s.catalog.Load(), view, c.Query("course"))
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (s *Server) handleCourses(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Load().Options())
}

func (s *Server) handleCourse(c *gin.Context) {
	name := c.Param("name")
	record, ok := s.catalog.Load().Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "course not found: " + name})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleSearch(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := s.index.SearchCourses(c.Query("q"), limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", c.Query("q")).Msg("search failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// statusFor maps projection errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, viz.ErrInvalidView),
		errors.Is(err, viz.ErrMissingCourse),
		errors.Is(err, viz.ErrInvalidLayout):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
