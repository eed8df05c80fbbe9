package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const maxConcurrentRequests = 256

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	if err := run(ctx, maxConcurrentRequests); err != nil {
		os.Exit(1)
	}
}
