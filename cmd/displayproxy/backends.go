package main

import (
	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/display"
	"github.com/stut/displayproxy/internal/display/epaper"
	"github.com/stut/displayproxy/internal/display/simulator"
	"github.com/stut/displayproxy/internal/display/window"
	"github.com/stut/displayproxy/internal/server"
)

var backends = map[display.Kind]server.Constructor{
	display.KindInky: epaper.Open,
	display.KindWindow: func(cfg *config.Config, tracker *buttons.Tracker) (display.Display, error) {
		return simulator.New(cfg, tracker, window.New())
	},
}
