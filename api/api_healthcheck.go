package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mailio/go-mailio-identity/global"
)

type HealthCheckAPI struct {
}

func NewHealthCheckAPI() *HealthCheckAPI {
	return &HealthCheckAPI{}
}

func (ha *HealthCheckAPI) HealthCheck(c *gin.Context) {
	version := global.Conf.Version
	mode := global.Conf.Mode
	publicUrl := global.Conf.Federation.PublicURL
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version, "mode": mode, "publicUrl": publicUrl})
}
