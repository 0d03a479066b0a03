package config

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalConfigJSON(t *testing.T) {
	js := `{
        "mode": "thermometer",
        "i2c": { "bus": "2", "address": 72 },
        "sample_rate": 128,
        "outputs": [{"type":"console"}, {"type":"kafka", "kafka": {"brokers": ["localhost:9092"], "topic": "readings"}}],
        "sensor_type":"simulation",
        "calibration": {"src_lo": 0, "src_hi": 65535, "dst_lo": 0.1, "dst_hi": 2},
        "display": {"type": "ssd1306", "width": 128, "height": 32, "i2c": {"bus": "1", "address": 60}},
        "channels": [
            {"channel": 0, "enabled": true, "calibration_scale": 1.0, "calibration_offset": 0.12},
            {"channel": 1, "enabled": false, "calibration_scale": 0.98, "calibration_offset": -0.05}
        ]
    }`

	var cfg Config
	if err := json.Unmarshal([]byte(js), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Mode != ModeThermometer {
		t.Fatalf("mode: got %q", cfg.Mode)
	}
	if cfg.I2C.Address != 72 || cfg.I2C.Bus != "2" {
		t.Fatalf("i2c: got %+v", cfg.I2C)
	}
	if cfg.SensorType != SensorSimulation {
		t.Fatalf("sensor_type: got %q", cfg.SensorType)
	}
	if len(cfg.Outputs) != 2 || cfg.Outputs[1].Kafka == nil || cfg.Outputs[1].Kafka.Topic != "readings" {
		t.Fatalf("outputs: %+v", cfg.Outputs)
	}
	if cfg.Calibration.DstLo != 0.1 || cfg.Calibration.DstHi != 2 || cfg.Calibration.SrcHi != 65535 {
		t.Fatalf("calibration: %+v", cfg.Calibration)
	}
	if cfg.Display.Type != DisplaySSD1306 || cfg.Display.Height != 32 || cfg.Display.I2C.Address != 0x3C {
		t.Fatalf("display: %+v", cfg.Display)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("channels len: %d", len(cfg.Channels))
	}
	if cfg.Channels[0].Channel != 0 || !cfg.Channels[0].Enabled || cfg.Channels[0].CalibrationOffset != 0.12 {
		t.Fatalf("channel0 incorrect: %+v", cfg.Channels[0])
	}
	if cfg.Channels[1].Channel != 1 || cfg.Channels[1].Enabled || cfg.Channels[1].CalibrationScale != 0.98 {
		t.Fatalf("channel1 incorrect: %+v", cfg.Channels[1])
	}
	if got := cfg.EnabledChannels(); len(got) != 1 || got[0].Channel != 0 {
		t.Fatalf("enabled channels: %+v", got)
	}
}
