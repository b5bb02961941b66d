// Command ownership-feed consumes the name table's DynamoDB stream and logs
// every registration and transfer.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/nameservice/internal/config"
	"github.com/jacentio/nameservice/internal/logging"
	"github.com/jacentio/nameservice/stream"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	h := stream.NewHandler(stream.LogSink{Logger: logger}, logger)
	lambda.Start(h.HandleOwnershipChanges)
}
