package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ethanbaker/attio-relay/internal/interop"
	"github.com/ethanbaker/attio-relay/internal/lambdaproxy"
)

func main() {
	i, err := interop.NewInteroperability()
	if err != nil {
		fmt.Printf("failed to create interop: %s\n", err)
		os.Exit(1)
	}
	defer i.Shutdown()

	handler := lambdaproxy.NewHandler(i.Relay, i.Logger)
	lambda.Start(handler.Handle)
}
