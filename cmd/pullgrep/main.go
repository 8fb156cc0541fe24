package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.llib.dev/lazyiter/internal/pullgrep"
)

func main() {
	os.Exit(int(run()))
}

func run() pullgrep.ExitCode {
	cfg, err := pullgrep.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pullgrep: %s\n", err)
		return pullgrep.ExitCodeError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := bufio.NewWriter(os.Stdout)
	cli := &pullgrep.CLI{
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: out,
		Stderr: os.Stderr,
	}
	code := cli.Run(ctx, os.Args[1:])
	if err := out.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "pullgrep: %s\n", err)
		return pullgrep.ExitCodeError
	}
	return code
}
