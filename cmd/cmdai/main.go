package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/cmdai-go/internal/infrastructure/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cli.Options{Verbose: isVerbose(os.Args[1:])}

	root, closeFn, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeFn()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// isVerbose is decided before flag parsing because the logger is built
// together with the container.
func isVerbose(args []string) bool {
	debug := os.Getenv("CMDAI_DEBUG")
	if strings.EqualFold(debug, "1") || strings.EqualFold(debug, "true") {
		return true
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--verbose" || arg == "-v" {
			return true
		}
	}
	return false
}
