package attio_module

import (
	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Controller exposes the relay operations over HTTP
type Controller struct {
	service *relay.Service
}

// NewController creates a controller backed by service
func NewController(service *relay.Service) *Controller {
	return &Controller{service: service}
}

// GetObjectDefinition handles POST requests to fetch an object's attribute definitions
func (ctl *Controller) GetObjectDefinition(c *gin.Context) {
	// Parse request body
	var req sdk.GetObjectDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render(c, relay.UnparsableBody(err))
		return
	}

	render(c, ctl.service.GetObjectDefinition(c.Request.Context(), &req))
}

// AssertDeal handles POST requests to create or update a deal
func (ctl *Controller) AssertDeal(c *gin.Context) {
	// Parse request body
	var req sdk.AssertDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render(c, relay.UnparsableBody(err))
		return
	}

	render(c, ctl.service.AssertDeal(c.Request.Context(), &req))
}

// render writes the result body as-is so success payloads reach the caller unmodified
func render(c *gin.Context, result relay.Result) {
	c.Data(result.Status, relay.CONTENT_TYPE, result.Body)
}
