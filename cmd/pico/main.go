//go:build tinygo

// Command pico runs one demo directly on a Raspberry Pi Pico. The demo is
// picked at build time through mode.
package main

import (
	"context"
	"fmt"
	"log"
	"machine"
	"time"

	"github.com/ericogr/pico-loops/pkg/calibrate"
	"github.com/ericogr/pico-loops/pkg/config"
	"github.com/ericogr/pico-loops/pkg/display"
	"github.com/ericogr/pico-loops/pkg/led"
	"github.com/ericogr/pico-loops/pkg/loop"
	"github.com/ericogr/pico-loops/pkg/output/console"
	"github.com/ericogr/pico-loops/pkg/sensor"
	"github.com/ericogr/pico-loops/pkg/timer"
)

// override with -ldflags="-X main.mode=thermometer"
var mode = config.ModeBlink

var (
	potPin     = machine.Pin(config.PicoADCGPIO)
	oneWirePin = machine.Pin(config.PicoOneWireGPIO)
	sdaPin     = machine.Pin(config.PicoSDAGPIO)
	sclPin     = machine.Pin(config.PicoSCLGPIO)
)

const (
	displayAddr   = 0x3C
	displayWidth  = 128
	displayHeight = 64
)

var (
	// potentiometer full travel onto 0..1s
	blinkCalibration = calibrate.FullScale(0, 1)
	hold             = 2 * time.Second
	resolution       = 12
	producerPeriod   = 500 * time.Millisecond
	timerPeriod      = time.Second
)

func main() {
	// give the USB serial console time to attach
	time.Sleep(2 * time.Second)
	fmt.Printf("starting %s\n", mode)

	if err := run(context.Background()); err != nil {
		for {
			log.Printf("%s: %v", mode, err)
			time.Sleep(5 * time.Second)
		}
	}
}

func run(ctx context.Context) error {
	opts := loop.Options{Output: console.NewConsole()}

	switch mode {
	case config.ModeADC:
		return loop.NewMonitor(sensor.NewPicoADC(potPin), time.Second, opts).Run(ctx)
	case config.ModeBlink:
		return loop.NewBlinker(sensor.NewPicoADC(potPin), led.NewBoardPin(machine.Pin(config.PicoLEDGPIO(mode))), blinkCalibration, opts).Run(ctx)
	case config.ModeBlinkDual:
		cell := loop.NewSharedInterval(500 * time.Millisecond)
		producer := loop.NewProducer(sensor.NewPicoADC(potPin), blinkCalibration, cell, producerPeriod, opts)
		consumer := loop.NewConsumer(led.NewBoardPin(machine.Pin(config.PicoLEDGPIO(mode))), cell, loop.Options{})
		return loop.RunDual(ctx, producer, consumer)
	case config.ModeThermometer:
		t, err := sensor.NewBoardThermometer(oneWirePin, resolution, 750*time.Millisecond)
		if err != nil {
			return err
		}
		fmt.Printf("devices: %v\n", t.Devices())
		if err := machine.I2C0.Configure(machine.I2CConfig{SDA: sdaPin, SCL: sclPin, Frequency: 200 * machine.KHz}); err != nil {
			return fmt.Errorf("i2c0: %w: %v", sensor.ErrPeripheralUnavailable, err)
		}
		panel := display.NewBoardSSD1306(machine.I2C0, displayAddr, displayWidth, displayHeight)
		canvas := display.NewCanvas(panel, displayWidth, displayHeight)
		return loop.NewThermometer(t, canvas, hold, opts).Run(ctx)
	case config.ModeTimer:
		t, err := led.NewToggler(led.NewBoardPin(machine.Pin(config.PicoLEDGPIO(mode))), false)
		if err != nil {
			return err
		}
		return timer.Run(ctx, timer.Ticker{}, timerPeriod, t.Toggle)
	}
	return fmt.Errorf("unknown mode %q", mode)
}
