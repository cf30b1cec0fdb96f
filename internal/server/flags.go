package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) ListFlags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flags": s.flags.All()})
}

type setFlagRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) SetFlag(c *gin.Context) {
	var req setFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := c.Param("name")
	if !s.flags.Set(name, *req.Enabled) {
		AbortWithError(c, apiError{Status: http.StatusNotFound, Code: "unknown_flag", Detail: name})
		return
	}

	s.log.Info("feature flag updated",
		zap.String("flag", name),
		zap.Bool("enabled", *req.Enabled),
	)
	c.JSON(http.StatusOK, gin.H{"flag": name, "enabled": *req.Enabled})
}
