//go:build windows

package cmd

import "context"

type pauser interface {
	Pause()
	Resume()
}

func watchControlSignals(context.Context, pauser) func() { return func() {} }
