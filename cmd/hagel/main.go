// Command hagel is a terminal client for the Hagelskott forum API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// Version information, set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func versionString() string {
	return fmt.Sprintf("hagel %s (%s, %s, %s)", version, commit[:min(7, len(commit))], date, runtime.Version())
}
