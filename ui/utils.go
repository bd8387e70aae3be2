package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/internal/errors"
)

// multipartOverhead is the slack allowed above the file limit for form fields
// and multipart boundaries
const multipartOverhead = 1 << 20

// respondError writes err as {"error": {code, message}} with the status its
// code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	code := errors.GetCode(appErr)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}

func domainParam(c *gin.Context, name string) (dataset.OperationDomain, error) {
	return dataset.ParseDomain(c.Param(name))
}

func idParam(c *gin.Context) (core.ID, error) {
	return core.ParseID(c.Param("id"))
}
