package main

import (
	"context"
	"os"

	"github.com/target/carecircle/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()
	root := newRootCmd(&adminApp{logger: logger, out: os.Stdout, connect: connectInfra})
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}
