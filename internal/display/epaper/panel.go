package epaper

import (
	"errors"
	"fmt"
	"image"
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/display"
	pins "github.com/stut/displayproxy/internal/gpio"
)

var impressionBorders = map[string]inky.ImpressionColor{
	"black":  inky.BlackImpression,
	"white":  inky.WhiteImpression,
	"green":  inky.GreenImpression,
	"blue":   inky.BlueImpression,
	"red":    inky.RedImpression,
	"yellow": inky.YellowImpression,
	"orange": inky.OrangeImpression,
	"clean":  inky.CleanImpression,
}

type impressionPanel struct {
	dev  *inky.DevImpression
	port spi.PortCloser
}

// OpenPanel initialises the host drivers, reads the HAT EEPROM to detect the
// panel model and opens it on the configured SPI port.
func OpenPanel(cfg *config.Config) (Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epaper: host init: %w", err)
	}

	port, err := spireg.Open(cfg.String("spi_port", "SPI0.0"))
	if err != nil {
		return nil, fmt.Errorf("epaper: open spi: %w", err)
	}

	var pinErr error
	lookup := func(key, def string) gpio.PinIO {
		name := cfg.String(key, def)
		p := gpioreg.ByName(name)
		if p == nil {
			pinErr = errors.Join(pinErr, fmt.Errorf("option %s: unknown pin %q", key, name))
		}
		return p
	}
	dc := lookup("dc_pin", "22")
	reset := lookup("reset_pin", "27")
	busy := lookup("busy_pin", "17")
	if pinErr != nil {
		port.Close()
		return nil, fmt.Errorf("epaper: %w", pinErr)
	}

	bus, err := i2creg.Open(cfg.String("i2c_bus", ""))
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper: open eeprom bus: %w", err)
	}
	defer bus.Close()

	opts, err := inky.DetectOpts(bus)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper: detect panel: %w", err)
	}

	dev, err := inky.NewImpression(port, dc, reset, busy, opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper: open panel: %w", err)
	}
	return &impressionPanel{dev: dev, port: port}, nil
}

func (p *impressionPanel) Bounds() image.Rectangle { return p.dev.Bounds() }

func (p *impressionPanel) Show(img image.Image, saturation float64, border string) error {
	if err := p.dev.SetSaturation(saturationLevel(saturation)); err != nil {
		return err
	}
	p.dev.SetBorder(impressionBorders[border])
	return p.dev.Draw(img.Bounds(), img, image.Point{})
}

// saturationLevel converts a 0..1 saturation into the panel's 0..100 level.
func saturationLevel(saturation float64) uint {
	return uint(math.Round(min(max(saturation, 0), 1) * 100))
}

func (p *impressionPanel) Close() error {
	return p.port.Close()
}

// Open builds the hardware backend on the attached panel and GPIO chip.
func Open(cfg *config.Config, tracker *buttons.Tracker) (display.Display, error) {
	panel, err := OpenPanel(cfg)
	if err != nil {
		return nil, err
	}
	watcher := pins.NewWatcher(cfg.String("gpio_chip", pins.DefaultChip))
	d, err := New(cfg, tracker, panel, watcher, nil)
	if err != nil {
		return nil, errors.Join(err, watcher.Close(), panel.Close())
	}
	return d, nil
}
