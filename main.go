/*
This is an example application that uses the engine package
to exercise the renderer.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/hyperion/engine"
	"github.com/spaghettifunk/hyperion/testbed"
)

func main() {
	tb := testbed.NewTestGame()

	eng, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = eng.Shutdown()
	}()

	if err := eng.Run(); err != nil {
		panic(err)
	}

	_ = eng.Shutdown()
}
