package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdash/domain/analytics"
	"opsdash/domain/core"
	"opsdash/internal/errors"
)

// scenarioRequest is the body of POST /api/scenarios
type scenarioRequest struct {
	DatasetID      string   `json:"datasetId" binding:"required"`
	Metric         string   `json:"metric" binding:"required"`
	WorkforceLevel *float64 `json:"workforceLevel" binding:"required"`
}

func (s *Server) handleKPIs(c *gin.Context) {
	domain, err := domainParam(c, "domain")
	if err != nil {
		s.respondError(c, err)
		return
	}
	kpis, hasData, err := s.service.GetKPIs(c.Request.Context(), domain)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": domain, "kpis": kpis, "hasRealData": hasData})
}

func (s *Server) handleChart(c *gin.Context) {
	domain, err := domainParam(c, "domain")
	if err != nil {
		s.respondError(c, err)
		return
	}
	shape, err := analytics.ParseShape(c.Param("shape"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	records, err := s.service.GetChartData(c.Request.Context(), domain, shape)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": domain, "shape": shape, "data": records})
}

func (s *Server) handleTimeSeries(c *gin.Context) {
	domain, err := domainParam(c, "domain")
	if err != nil {
		s.respondError(c, err)
		return
	}
	points, err := s.service.GetTimeSeries(c.Request.Context(), domain)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": domain, "data": points})
}

func (s *Server) handleOverview(c *gin.Context) {
	overview, err := s.service.GetOverview(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": overview})
}

func (s *Server) handleScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.ValidationError(err.Error()))
		return
	}
	id, err := core.ParseID(req.DatasetID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := s.service.RunScenario(c.Request.Context(), id, req.Metric, *req.WorkforceLevel)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
