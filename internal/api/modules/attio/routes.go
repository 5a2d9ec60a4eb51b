package attio_module

import (
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the relay routes on g, behind any extra handlers given
func RegisterRoutes(g *gin.RouterGroup, ctl *Controller, handlers ...gin.HandlerFunc) {
	group := g.Group("/", handlers...)

	group.POST(sdk.GET_OBJECT_DEFINITION_PATH, ctl.GetObjectDefinition) // Fetch an object's attribute definitions
	group.POST(sdk.ASSERT_DEAL_PATH, ctl.AssertDeal)                    // Create or update a deal
}
