//go:build !tinygo

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
	"github.com/ericogr/pico-loops/pkg/display"
	"github.com/ericogr/pico-loops/pkg/led"
	"github.com/ericogr/pico-loops/pkg/loop"
	"github.com/ericogr/pico-loops/pkg/metrics"
	"github.com/ericogr/pico-loops/pkg/output"
	"github.com/ericogr/pico-loops/pkg/output/console"
	"github.com/ericogr/pico-loops/pkg/output/kafka"
	"github.com/ericogr/pico-loops/pkg/output/mqtt"
	"github.com/ericogr/pico-loops/pkg/sensor"
	"github.com/ericogr/pico-loops/pkg/timer"
)

// simulated 1-Wire bus
var fakeROMs = []string{"28-00000a1b2c3d", "28-00000a1b2c3e"}

type outputEntry struct {
	Type       string
	IntervalMs int
	Output     output.Output
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	fmt.Printf("starting %s (sensor: %s)\n", cfg.Mode, cfg.SensorType)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
	fmt.Println("stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if cfg.Mode == config.ModeTimer {
		return runTimer(ctx, cfg)
	}

	s, err := openSensor(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	devices := printDiagnostics(cfg, s)

	entries, err := initOutputs(&cfg, sensorIntervalMs(cfg), devices...)
	if err != nil {
		return err
	}
	fan := make(output.Fanout, 0, len(entries))
	for _, e := range entries {
		fmt.Printf("output %s every %dms\n", e.Type, e.IntervalMs)
		fan = append(fan, output.NewThrottled(e.Output, time.Duration(e.IntervalMs)*time.Millisecond))
	}
	defer fan.Close()

	opts := loop.Options{Output: fan, Metrics: m}
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond

	switch cfg.Mode {
	case config.ModeADC:
		return loop.NewMonitor(s, interval, opts).Run(ctx)
	case config.ModeThermometer:
		d, closer, err := openDisplay(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		hold := time.Duration(cfg.Display.HoldMs) * time.Millisecond
		return loop.NewThermometer(s, d, hold, opts).Run(ctx)
	case config.ModeBlink:
		out, closer, err := openLED(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		return loop.NewBlinker(s, out, cfg.Calibration, opts).Run(ctx)
	case config.ModeBlinkDual:
		out, closer, err := openLED(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		cell := loop.NewSharedInterval(interval)
		producer := loop.NewProducer(s, cfg.Calibration, cell, time.Duration(cfg.ProducerIntervalMs)*time.Millisecond, opts)
		consumer := loop.NewConsumer(out, cell, loop.Options{Metrics: m})
		return loop.RunDual(ctx, producer, consumer)
	}
	return fmt.Errorf("unknown mode %q", cfg.Mode)
}

func runTimer(ctx context.Context, cfg config.Config) error {
	period := time.Duration(cfg.TimerPeriodMs) * time.Millisecond
	if cfg.TimerMessage != "" {
		msg := cfg.TimerMessage
		return timer.Run(ctx, timer.Ticker{}, period, func() { fmt.Println(msg) })
	}

	out, closer, err := openLED(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	t, err := led.NewToggler(out, false)
	if err != nil {
		return fmt.Errorf("led: %w", err)
	}
	err = timer.Run(ctx, timer.Ticker{}, period, t.Toggle)
	if n := t.Errors(); n > 0 {
		log.Printf("timer: %d toggles failed", n)
	}
	return err
}

func openSensor(cfg config.Config) (sensor.Sensor, error) {
	if cfg.SensorType == config.SensorSimulation {
		if cfg.Mode == config.ModeThermometer {
			return sensor.NewFakeThermometer(fakeROMs...), nil
		}
		return sensor.NewFakeSensor(cfg)
	}
	if cfg.Mode == config.ModeThermometer {
		return sensor.NewDS18B20Sensor(cfg)
	}
	return sensor.NewADS1115Sensor(cfg)
}

// printDiagnostics prints the startup banner and returns the source names the
// sensor answered for.
func printDiagnostics(cfg config.Config, s sensor.Sensor) []string {
	var devices []string
	if sc, ok := s.(sensor.Scanner); ok {
		devices = sc.Devices()
	}
	switch {
	case cfg.SensorType == config.SensorSimulation:
		fmt.Println("simulated sensor")
	case cfg.Mode == config.ModeThermometer:
		fmt.Printf("1-Wire bus %q, resolution %d bits\n", cfg.OneWireBus, cfg.Resolution)
	default:
		fmt.Printf("ADS1115 on i2c-%s addr 0x%02X, %d SPS\n", cfg.I2C.Bus, cfg.I2C.Address, cfg.SampleRate)
	}
	fmt.Printf("devices: %s\n", strings.Join(devices, ", "))
	return devices
}

// computeSensorInterval returns the time in ms one ADS1115 read of every
// enabled channel takes.
func computeSensorInterval(cfg config.Config) int {
	enabled := cfg.EnabledChannels()
	if len(enabled) == 0 {
		return int(sensor.ConversionDelay(cfg.SampleRate) / time.Millisecond)
	}
	total := 0
	for _, ch := range enabled {
		rate := ch.SampleRate
		if rate == 0 {
			rate = cfg.SampleRate
		}
		total += int(sensor.ConversionDelay(rate) / time.Millisecond)
	}
	return total
}

// sensorIntervalMs is the fastest rate at which the configured sensor can
// produce new readings.
func sensorIntervalMs(cfg config.Config) int {
	if cfg.Mode != config.ModeThermometer {
		return computeSensorInterval(cfg)
	}
	d := sensor.ConversionTime(cfg.Resolution)
	if min := time.Duration(cfg.ConversionDelayMs) * time.Millisecond; min > d {
		d = min
	}
	return int(d / time.Millisecond)
}

// initOutputs builds every configured output. Output intervals shorter than
// the sensor interval are raised to it.
func initOutputs(cfg *config.Config, sensorIntervalMs int, sources ...string) ([]outputEntry, error) {
	quantity := mqtt.Voltage
	if cfg.Mode == config.ModeThermometer {
		quantity = mqtt.Temperature
	}

	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		o := &cfg.Outputs[i]
		if o.IntervalMs < sensorIntervalMs {
			o.IntervalMs = sensorIntervalMs
		}

		var (
			out output.Output
			err error
		)
		switch o.Type {
		case "console":
			out = console.NewConsole()
		case "mqtt":
			mc := config.MQTTConfig{}
			if o.MQTT != nil {
				mc = *o.MQTT
			}
			out, err = mqtt.NewMQTT(mc, sources, quantity)
		case "kafka":
			kc := config.KafkaConfig{}
			if o.Kafka != nil {
				kc = *o.Kafka
			}
			out, err = kafka.NewKafka(kc)
		default:
			err = fmt.Errorf("unknown output type %q", o.Type)
		}
		if err != nil {
			for _, e := range entries {
				_ = e.Output.Close()
			}
			return nil, fmt.Errorf("output %s: %w", o.Type, err)
		}
		entries = append(entries, outputEntry{Type: o.Type, IntervalMs: o.IntervalMs, Output: out})
	}
	return entries, nil
}

func openDisplay(cfg config.Config) (display.Display, io.Closer, error) {
	w, h := int16(cfg.Display.Width), int16(cfg.Display.Height)
	if cfg.Display.Type == config.DisplaySSD1306 {
		p, err := display.NewSSD1306(cfg.Display.I2C.Bus, uint16(cfg.Display.I2C.Address), w, h)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("display: %s\n", p)
		return display.NewCanvas(p, w, h), p, nil
	}
	return display.NewCanvas(display.NewTextPanel(os.Stdout), w, h), nil, nil
}

// printLED stands in for an LED when no GPIO is wired up.
type printLED struct {
	w io.Writer
}

func (p printLED) Set(level bool) error {
	state := "off"
	if level {
		state = "on"
	}
	_, err := fmt.Fprintf(p.w, "%s led %s\n", time.Now().Format(time.RFC3339Nano), state)
	return err
}

func openLED(cfg config.Config) (led.Actuator, io.Closer, error) {
	if cfg.SensorType == config.SensorSimulation {
		return printLED{w: os.Stdout}, nil, nil
	}
	p, err := led.Open(cfg.LEDPin)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("led: %s\n", p)
	return p, p, nil
}
