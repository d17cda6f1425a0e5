package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

const (
	exitOK    = 0
	exitError = 1
	exitAbort = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case kiterrors.IsAbort(err):
		return exitAbort
	default:
		return exitError
	}
}
