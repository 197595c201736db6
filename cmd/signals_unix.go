//go:build !windows

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

type pauser interface {
	Pause()
	Resume()
}

// watchControlSignals pauses the run on SIGUSR1 and resumes it on SIGUSR2.
func watchControlSignals(ctx context.Context, p pauser) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case sig := <-ch:
				if sig == syscall.SIGUSR1 {
					p.Pause()
				} else {
					p.Resume()
				}
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
