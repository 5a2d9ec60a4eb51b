package health

import (
	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes for the health module
func RegisterRoutes(g *gin.RouterGroup, service string) {
	g.GET("/health", getStatus(service))
}

// getStatus returns the status of the API along with the name of the service answering
func getStatus(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := api_types.NewSuccessResponse("OK", gin.H{"service": service})
		c.JSON(res.AsGinResponse())
	}
}
