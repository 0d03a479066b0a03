//go:build !tinygo

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
	"github.com/ericogr/pico-loops/pkg/sensor"
)

func TestComputeSensorInterval(t *testing.T) {
	// no enabled channels -> fallback to global sample rate
	cfg := config.Config{SampleRate: 128}
	if got := computeSensorInterval(cfg); got != 10 {
		t.Fatalf("fallback interval: got %d want 10", got)
	}

	// one enabled channel (default sample rate 128)
	cfg.Channels = []config.ChannelConfig{{Channel: 0, Enabled: true}}
	if got := computeSensorInterval(cfg); got != 10 {
		t.Fatalf("one channel interval: got %d want 10", got)
	}

	// two enabled channels at 128 -> ~20ms
	cfg.Channels = []config.ChannelConfig{{Channel: 0, Enabled: true}, {Channel: 1, Enabled: true}}
	if got := computeSensorInterval(cfg); got != 20 {
		t.Fatalf("two channel interval: got %d want 20", got)
	}

	// mixed sample rates: 128 and 250 -> expect 10 + 6 = 16
	cfg.Channels = []config.ChannelConfig{{Channel: 0, Enabled: true, SampleRate: 128}, {Channel: 1, Enabled: true, SampleRate: 250}}
	if got := computeSensorInterval(cfg); got != 16 {
		t.Fatalf("mixed interval: got %d want 16", got)
	}
}

func TestSensorIntervalThermometer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeThermometer
	cfg.ConversionDelayMs = 0
	if got := sensorIntervalMs(cfg); got != 750 {
		t.Fatalf("12-bit conversion: got %d want 750", got)
	}
	cfg.Resolution = 9
	cfg.ConversionDelayMs = 200
	if got := sensorIntervalMs(cfg); got != 200 {
		t.Fatalf("configured minimum: got %d want 200", got)
	}
}

func TestInitOutputsSetsInterval(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "console"}}}
	entries, err := initOutputs(&cfg, 123)
	if err != nil {
		t.Fatalf("initOutputs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries len: %d", len(entries))
	}
	if cfg.Outputs[0].IntervalMs != 123 {
		t.Fatalf("cfg output interval not set, got %d", cfg.Outputs[0].IntervalMs)
	}
	if entries[0].IntervalMs != 123 {
		t.Fatalf("entry interval not set, got %d", entries[0].IntervalMs)
	}
}

func TestInitOutputsKeepsSlowerInterval(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "console", IntervalMs: 5000}}}
	entries, err := initOutputs(&cfg, 10)
	if err != nil {
		t.Fatalf("initOutputs: %v", err)
	}
	if entries[0].IntervalMs != 5000 {
		t.Fatalf("interval overwritten, got %d", entries[0].IntervalMs)
	}
}

func TestInitOutputsRejectsBadOutputs(t *testing.T) {
	cfg := config.Config{Outputs: []config.OutputConfig{{Type: "console"}, {Type: "carrier-pigeon"}}}
	if _, err := initOutputs(&cfg, 10); err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Fatalf("expected unknown output error, got %v", err)
	}

	cfg = config.Config{Outputs: []config.OutputConfig{{Type: "kafka"}}}
	if _, err := initOutputs(&cfg, 10); err == nil {
		t.Fatal("expected kafka without brokers to fail")
	}
}

func TestOpenSensorSimulation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SensorType = config.SensorSimulation

	s, err := openSensor(cfg)
	if err != nil {
		t.Fatalf("openSensor: %v", err)
	}
	readings, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(readings) != 1 || readings[0].Source != "A0" {
		t.Fatalf("unexpected readings %+v", readings)
	}

	cfg.Mode = config.ModeThermometer
	s, err = openSensor(cfg)
	if err != nil {
		t.Fatalf("openSensor: %v", err)
	}
	sc, ok := s.(sensor.Scanner)
	if !ok {
		t.Fatal("fake thermometer does not list devices")
	}
	if got := sc.Devices(); len(got) != len(fakeROMs) {
		t.Fatalf("devices: got %v", got)
	}
}

func TestPrintLED(t *testing.T) {
	var buf bytes.Buffer
	p := printLED{w: &buf}
	if err := p.Set(true); err != nil {
		t.Fatal(err)
	}
	if err := p.Set(false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "led on\n") || !strings.HasSuffix(out, "led off\n") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunSimulatedADCStopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeADC
	cfg.SensorType = config.SensorSimulation
	cfg.IntervalMs = 5

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunSimulatedTimerMessage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeTimer
	cfg.TimerPeriodMs = 5
	cfg.TimerMessage = "tick"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
}
