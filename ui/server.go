package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"epidash/adapters/render"
	"epidash/app"
	"epidash/internal"
	"epidash/internal/metrics"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server is the dashboard's HTTP surface
type Server struct {
	router    *gin.Engine
	templates *template.Template

	dashboard *app.DashboardService
	store     *app.RecordStore
	renderers *render.Registry
	metrics   *metrics.Metrics
	logger    *internal.Logger
}

// Deps are the collaborators the server reads from
type Deps struct {
	Dashboard *app.DashboardService
	Store     *app.RecordStore
	Renderers *render.Registry
	Metrics   *metrics.Metrics
	Logger    *internal.Logger
}

// NewServer creates a server and registers every route
func NewServer(deps Deps) (*Server, error) {
	if deps.Dashboard == nil || deps.Store == nil {
		return nil, fmt.Errorf("dashboard service and record store are required")
	}
	if deps.Renderers == nil {
		deps.Renderers = render.Default()
	}
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}

	templates, err := template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		templates: templates,
		dashboard: deps.Dashboard,
		store:     deps.Store,
		renderers: deps.Renderers,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With("Server"),
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.setupRoutes()
	return s, nil
}

// Router exposes the engine for tests and embedding
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	api.GET("/facets", s.handleFacets)

	api.GET("/filters", s.handleGetFilters)
	api.PUT("/filters/:facet", s.handleSetFilter)
	api.DELETE("/filters", s.handleClearFilters)

	api.GET("/views", s.handleViews)
	api.GET("/views/:name", s.handleView)
	api.GET("/countries/:country", s.handleCountry)

	api.GET("/state", s.handleGetState)
	api.POST("/state/save", s.handleSaveState)

	api.GET("/export/timeline.svg", s.handleExport("timeline"))
	api.GET("/export/map.geojson", s.handleExport("map"))
	api.GET("/report", s.handleExport("report"))
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting epidash on http://%s", addr)
	return s.router.Run(addr)
}

// Handler returns the server as a plain http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}
