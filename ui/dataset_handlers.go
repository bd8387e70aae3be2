package ui

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdash/domain/dataset"
	"opsdash/internal/analysis"
	"opsdash/internal/errors"
)

// handleImportDataset accepts a multipart upload with a "file" part and a
// "domain" field
func (s *Server) handleImportDataset(c *gin.Context) {
	domain, err := dataset.ParseDomain(c.PostForm("domain"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, errors.InvalidInput("missing file part: "+err.Error()))
		return
	}
	f, err := header.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, errors.InvalidInput("failed to read upload: "+err.Error()))
		return
	}

	result, err := s.service.ImportFile(c.Request.Context(), header.Filename, domain, data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []*dataset.Dataset
		err  error
	)
	if raw := c.Query("domain"); raw != "" {
		domain, perr := dataset.ParseDomain(raw)
		if perr != nil {
			s.respondError(c, perr)
			return
		}
		list, err = s.service.ListByDomain(ctx, domain)
	} else {
		list, err = s.service.ListDatasets(ctx)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	if list == nil {
		list = []*dataset.Dataset{}
	}
	c.JSON(http.StatusOK, gin.H{"datasets": list, "count": len(list)})
}

func (s *Server) handleGetDataset(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds, err := s.service.GetDataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleRemoveDataset(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	outcome, err := s.service.RemoveDataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": id, "persist": outcome})
}

func (s *Server) handleClearDatasets(c *gin.Context) {
	if err := s.service.ClearDatasets(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleAnalyzeDataset returns the report as JSON, or rendered when format
// is html or markdown
func (s *Server) handleAnalyzeDataset(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	report, err := s.service.AnalyzeDataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	raw := c.Query("format")
	if raw == "" {
		c.JSON(http.StatusOK, report)
		return
	}
	format, err := analysis.ParseFormat(raw)
	if err != nil {
		s.respondError(c, err)
		return
	}
	contentType := "text/markdown; charset=utf-8"
	if format == analysis.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(report.Render(format)))
}

func (s *Server) handleScenarioMetrics(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	cols, err := s.service.ScenarioMetrics(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": cols})
}
