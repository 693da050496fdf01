// Package api provides the HTTP surface of the provenance service: event
// ingestion, the query pass-through, and health reporting, served with Echo.
package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	provinspector "github.com/dbis-ilm/streamvizzard-provinspector"
	"github.com/dbis-ilm/streamvizzard-provinspector/data"
	"github.com/dbis-ilm/streamvizzard-provinspector/version"
)

// QueryRequest is the body of a query call.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the cursor of a query call.
type QueryResponse struct {
	Keys    []string         `json:"keys"`
	Records []map[string]any `json:"records"`
}

// Server exposes a ProvInspector translator over HTTP.
type Server struct {
	inspector *provinspector.ProvInspector
	echo      *echo.Echo
}

// NewServer wires the routes around a translator.
func NewServer(inspector *provinspector.ProvInspector) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{inspector: inspector, echo: e}

	e.GET("/healthz", s.health)
	e.POST("/query", s.query)
	e.POST("/clear", s.clear)
	e.POST("/initialize", s.initialize)
	e.POST("/events", s.event)

	return s
}

// Start serves the API on the given address until the listener fails.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Handler returns the underlying HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"build":  version.GetBuildInfo(),
	})
}

// query passes a query string through to the backing store and returns the
// collected cursor.
func (s *Server) query(c echo.Context) error {
	var request QueryRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query request")
	}
	if request.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}

	cursor, err := s.inspector.Query(c.Request().Context(), request.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	response := QueryResponse{Keys: cursor.Keys, Records: make([]map[string]any, 0, len(cursor.Records))}
	for _, record := range cursor.Records {
		response.Records = append(response.Records, record.AsMap())
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) clear(c echo.Context) error {
	if err := s.inspector.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// initialize consumes initialization change records, one JSON object per
// line, mirroring the dump file format.
func (s *Server) initialize(c echo.Context) error {
	body := c.Request().Body
	defer body.Close()

	changes, err := data.LoadInitData(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.inspector.Initialize(c.Request().Context(), changes); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// event consumes a single debug step record.
func (s *Server) event(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	step, err := data.DecodeDebugStep(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.inspector.Update(c.Request().Context(), step); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
