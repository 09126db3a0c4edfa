// Command ctrlloop is the board firmware: it brings up the peripherals and
// runs the control loop until a reset command arrives.
package main

import (
	"context"
	"time"

	"ctrlloop-go/platform"
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

// board is set with -ldflags "-X main.board=pico-expander".
var board string

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	cfg, err := config.ForBoard(board)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		println("config:", err.Error())
		return
	}

	log := logx.New(platform.ConsoleSink(cfg.Console), cfg.Level())
	b, err := platform.New(cfg, log)
	if err != nil {
		log.Error("platform init failed", logx.Err(err))
		return
	}

	b.System.Init()
	if err := b.System.Run(context.Background()); err != nil {
		log.Info("control loop stopped", logx.Err(err))
	}
	// A real reset never gets here.
	for {
		time.Sleep(time.Second)
	}
}
