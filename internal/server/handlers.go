package server

import (
	"errors"
	"net/http"
	"strconv"

	"fraudlens/internal/store"
	"fraudlens/internal/types"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.cfg.Name,
		"version": s.cfg.Version,
	})
}

func (s *Server) handleInvestigate(c echo.Context) error {
	var alert types.Alert
	if err := c.Bind(&alert); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid alert payload: " + err.Error()})
	}
	if err := alert.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	report, err := s.pipeline.Investigate(c.Request().Context(), alert)
	if err != nil {
		s.captureError(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleGetInvestigation(c echo.Context) error {
	report, err := s.pipeline.Store().GetReport(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	if err != nil {
		s.captureError(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleListInvestigations(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = parsed
	}

	list, err := s.pipeline.Store().ListReports(c.Request().Context(), limit)
	if err != nil {
		s.captureError(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if list == nil {
		list = []store.ReportSummary{}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleListTools(c echo.Context) error {
	var out []toolInfo
	for _, tool := range s.pipeline.Registry().All() {
		out = append(out, toolInfo{
			Name:        tool.Name,
			Description: tool.Description,
			Category:    string(tool.Category),
			Priority:    tool.Priority,
		})
	}
	return c.JSON(http.StatusOK, out)
}
