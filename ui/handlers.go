package ui

import (
	"bytes"
	stderrors "errors"
	"net/http"

	"epidash/domain/cases"
	"epidash/domain/charts"
	"epidash/domain/core"
	"epidash/internal/errors"

	"github.com/gin-gonic/gin"
)

type setFilterRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.dashboard.Current()
	state := s.dashboard.Selection()

	s.renderTemplate(c, "index.html", gin.H{
		"Title":    charts.RootName + " Dashboard",
		"Facets":   s.dashboard.Facets(),
		"Region":   state.Get(cases.FacetRegion),
		"Year":     state.Get(cases.FacetYear),
		"Snapshot": snap,
		"Empty":    snap.Records == 0,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"loaded":  s.store.Loaded(),
		"records": s.store.Len(),
		"source":  s.store.Source(),
	}
	if at := s.store.LoadedAt(); !at.IsZero() {
		body["loaded_at"] = core.NewTimestamp(at.UTC())
	}
	if err := s.store.LoadError(); err != nil {
		// the empty dataset is still served
		body["status"] = "degraded"
		body["load_error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleFacets(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Facets())
}

func (s *Server) handleGetFilters(c *gin.Context) {
	state := s.dashboard.Selection()
	c.JSON(http.StatusOK, gin.H{
		"filters":     state.ActiveFilters,
		"fingerprint": state.Fingerprint(),
	})
}

func (s *Server) handleSetFilter(c *gin.Context) {
	var req setFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("request body must be {\"value\": \"...\"}", err))
		return
	}
	if req.Value == nil {
		s.respondError(c, errors.InvalidInput("missing value", nil))
		return
	}

	snap, err := s.dashboard.SetFilter(c.Param("facet"), *req.Value)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleClearFilters(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.ClearFilters())
}

func (s *Server) handleViews(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Current())
}

func (s *Server) handleView(c *gin.Context) {
	view, err := s.dashboard.View(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleCountry(c *gin.Context) {
	entry, err := s.dashboard.Country(c.Param("country"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleGetState(c *gin.Context) {
	body := gin.H{"state": s.dashboard.Selection()}
	if receipt, ok := s.dashboard.LastSave(); ok {
		body["last_save"] = receipt
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleSaveState(c *gin.Context) {
	receipt, err := s.dashboard.Save(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// handleExport renders the current views with a named renderer
func (s *Server) handleExport(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderer, err := s.renderers.Get(name)
		if err != nil {
			s.respondError(c, errors.WithCode(errors.CodeNotFound, err))
			return
		}

		snap := s.dashboard.Current()
		var buf bytes.Buffer
		if err := renderer.Render(c.Request.Context(), snap.Views, &buf); err != nil {
			if stderrors.Is(err, core.ErrNotEnoughData) {
				s.respondError(c, errors.InvalidInput("nothing to export", err))
				return
			}
			s.respondError(c, errors.Wrapf(err, "render %s", name))
			return
		}
		c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
	}
}

// respondError writes an AppError as JSON with its mapped status
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
