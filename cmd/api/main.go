package main

import (
	"fmt"
	"os"

	"github.com/ethanbaker/attio-relay/internal/api"
	"github.com/ethanbaker/attio-relay/internal/interop"
	"github.com/gin-gonic/gin"
)

// Start the API server
func main() {
	i, err := interop.NewInteroperability()
	if err != nil {
		fmt.Printf("failed to create interop: %s\n", err)
		os.Exit(1)
	}
	defer i.Shutdown()

	if !i.Config.GetBool("GIN_DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	err = api.Start(&api.Dependencies{
		Config:  i.Config,
		Logger:  i.Logger,
		App:     i.App,
		Service: i.Relay,
	})
	if err != nil {
		i.Logger.Errorf("[API-MAIN]: %s", err)
		i.Shutdown()
		os.Exit(2)
	}
}
