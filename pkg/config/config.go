package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ericogr/pico-loops/pkg/calibrate"
)

// Demo modes.
const (
	ModeADC         = "adc"
	ModeBlink       = "blink"
	ModeBlinkDual   = "blink-dual"
	ModeThermometer = "thermometer"
	ModeTimer       = "timer"
)

// Sensor types.
const (
	SensorReal       = "real"
	SensorSimulation = "simulation"
)

// Display types.
const (
	DisplayText    = "text"
	DisplaySSD1306 = "ssd1306"
)

type MQTTConfig struct {
	Server            string `json:"server"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	ClientID          string `json:"client_id"`
	StateTopic        string `json:"state_topic"`
	DiscoveryTopic    string `json:"discovery_topic"`
	DiscoveryName     string `json:"discovery_name"`
	DiscoveryUniqueID string `json:"discovery_unique_id"`
}

type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

type OutputConfig struct {
	Type       string       `json:"type"`
	IntervalMs int          `json:"interval_ms,omitempty"`
	MQTT       *MQTTConfig  `json:"mqtt,omitempty"`
	Kafka      *KafkaConfig `json:"kafka,omitempty"`
}

type ChannelConfig struct {
	Channel           int     `json:"channel"`
	Enabled           bool    `json:"enabled"`
	SampleRate        int     `json:"sample_rate,omitempty"`
	CalibrationScale  float64 `json:"calibration_scale"`
	CalibrationOffset float64 `json:"calibration_offset"`
}

type I2CConfig struct {
	Bus     string `json:"bus"`
	Address int    `json:"address"`
}

type DisplayConfig struct {
	Type   string    `json:"type"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	I2C    I2CConfig `json:"i2c"`
	HoldMs int       `json:"hold_ms"`
}

type Config struct {
	Mode               string           `json:"mode"`
	SensorType         string           `json:"sensor_type"`
	I2C                I2CConfig        `json:"i2c"`
	SampleRate         int              `json:"sample_rate"`
	Channels           []ChannelConfig  `json:"channels"`
	OneWireBus         string           `json:"onewire_bus"`
	Resolution         int              `json:"resolution"`
	LEDPin             string           `json:"led_pin"`
	Calibration        calibrate.Linear `json:"calibration"`
	IntervalMs         int              `json:"interval_ms"`
	ProducerIntervalMs int              `json:"producer_interval_ms"`
	ConversionDelayMs  int              `json:"conversion_delay_ms"`
	TimerPeriodMs      int              `json:"timer_period_ms"`
	TimerMessage       string           `json:"timer_message"`
	Display            DisplayConfig    `json:"display"`
	Outputs            []OutputConfig   `json:"outputs"`
	MetricsAddr        string           `json:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		Mode:               ModeBlink,
		SensorType:         SensorReal,
		I2C:                I2CConfig{Bus: "1", Address: 0x48},
		SampleRate:         128,
		Channels:           []ChannelConfig{{Channel: 0, Enabled: true, CalibrationScale: 1.0}},
		Resolution:         12,
		LEDPin:             "GPIO16",
		Calibration:        calibrate.FullScale(0, 1),
		IntervalMs:         1000,
		ProducerIntervalMs: 500,
		ConversionDelayMs:  750,
		TimerPeriodMs:      1000,
		Display: DisplayConfig{
			Type:   DisplayText,
			Width:  128,
			Height: 64,
			I2C:    I2CConfig{Bus: "1", Address: 0x3C},
			HoldMs: 2000,
		},
		Outputs: []OutputConfig{{Type: "console"}},
	}
}

// LoadFromFlags loads configuration from the process command line.
func LoadFromFlags() (Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("pico-loops", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to JSON config file")
	flagMode := fs.String("mode", "", "demo: adc|blink|blink-dual|thermometer|timer")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|simulation")
	flagI2CBus := fs.String("i2c-bus", "", "ADS1115 I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := fs.String("i2c-address", "", "ADS1115 I2C address (decimal or 0x hex)")
	flagSampleRate := fs.Int("sample-rate", -1, "ADS1115 sample rate (SPS)")
	flagChannels := fs.String("channels", "", "Comma-separated enabled channels e.g. 0,1")
	flagScales := fs.String("channel-scales", "", "Per-channel calibration scale e.g. 0=1.0,1=0.98")
	flagOffsets := fs.String("channel-offsets", "", "Per-channel calibration offset e.g. 0=0.12")
	flagRates := fs.String("channel-rates", "", "Per-channel sample rate e.g. 0=128,1=250")
	flagEnabled := fs.String("channel-enabled", "", "Per-channel enable switch e.g. 0=true,1=false")
	flagCalibration := fs.String("calibration", "", "Interval calibration src_lo,src_hi,dst_lo,dst_hi (seconds)")
	flagOneWire := fs.String("onewire-bus", "", "1-Wire bus name (empty for the default bus)")
	flagResolution := fs.Int("resolution", -1, "DS18B20 resolution in bits (9-12)")
	flagLEDPin := fs.String("led-pin", "", "LED GPIO name e.g. GPIO16")
	flagInterval := fs.Int("interval-ms", -1, "Sample/report interval in ms")
	flagProducer := fs.Int("producer-interval-ms", -1, "Potentiometer sampling period for blink-dual in ms")
	flagConversion := fs.Int("conversion-delay-ms", -1, "Minimum DS18B20 conversion delay in ms")
	flagTimerPeriod := fs.Int("timer-period-ms", -1, "Timer period in ms")
	flagTimerMessage := fs.String("timer-message", "", "Message printed by the timer instead of toggling the LED")
	flagDisplay := fs.String("display", "", "display type: text|ssd1306")
	flagDisplayBus := fs.String("display-i2c-bus", "", "SSD1306 I2C bus")
	flagDisplayAddr := fs.String("display-i2c-address", "", "SSD1306 I2C address (decimal or 0x hex)")
	flagHold := fs.Int("display-hold-ms", -1, "Time each reading stays on the display in ms")
	flagOutputs := fs.String("outputs", "", "Comma-separated outputs (console,mqtt,kafka)")
	flagOutputIntervals := fs.String("output-intervals", "", "Comma-separated output intervals e.g. console=1000,mqtt=5000")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT state topic")
	flagKafkaBrokers := fs.String("kafka-brokers", "", "Comma-separated Kafka brokers")
	flagKafkaTopic := fs.String("kafka-topic", "", "Kafka topic")
	flagMetrics := fs.String("metrics-addr", "", "Listen address for /metrics and /status (empty disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagMode != "" {
		cfg.Mode = *flagMode
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagChannels != "" {
		chs, err := parseChannels(*flagChannels)
		if err != nil {
			return cfg, err
		}
		cfg.Channels = mergeEnabledChannels(cfg.Channels, chs)
	}
	if *flagScales != "" {
		m, err := parseKeyFloatMap(*flagScales)
		if err != nil {
			return cfg, fmt.Errorf("channel-scales: %w", err)
		}
		for ch, v := range m {
			channelByID(&cfg, ch).CalibrationScale = v
		}
	}
	if *flagOffsets != "" {
		m, err := parseKeyFloatMap(*flagOffsets)
		if err != nil {
			return cfg, fmt.Errorf("channel-offsets: %w", err)
		}
		for ch, v := range m {
			channelByID(&cfg, ch).CalibrationOffset = v
		}
	}
	if *flagRates != "" {
		m, err := parseKeyIntMap(*flagRates)
		if err != nil {
			return cfg, fmt.Errorf("channel-rates: %w", err)
		}
		for ch, v := range m {
			channelByID(&cfg, ch).SampleRate = v
		}
	}
	if *flagEnabled != "" {
		m, err := parseKeyBoolMap(*flagEnabled)
		if err != nil {
			return cfg, fmt.Errorf("channel-enabled: %w", err)
		}
		for ch, v := range m {
			channelByID(&cfg, ch).Enabled = v
		}
	}
	if *flagCalibration != "" {
		l, err := parseLinear(*flagCalibration)
		if err != nil {
			return cfg, fmt.Errorf("calibration: %w", err)
		}
		cfg.Calibration = l
	}
	if *flagOneWire != "" {
		cfg.OneWireBus = *flagOneWire
	}
	if *flagResolution != -1 {
		cfg.Resolution = *flagResolution
	}
	if *flagLEDPin != "" {
		cfg.LEDPin = *flagLEDPin
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagProducer != -1 {
		cfg.ProducerIntervalMs = *flagProducer
	}
	if *flagConversion != -1 {
		cfg.ConversionDelayMs = *flagConversion
	}
	if *flagTimerPeriod != -1 {
		cfg.TimerPeriodMs = *flagTimerPeriod
	}
	if *flagTimerMessage != "" {
		cfg.TimerMessage = *flagTimerMessage
	}
	if *flagDisplay != "" {
		cfg.Display.Type = *flagDisplay
	}
	if *flagDisplayBus != "" {
		cfg.Display.I2C.Bus = *flagDisplayBus
	}
	if *flagDisplayAddr != "" {
		v, err := parseIntOrHex(*flagDisplayAddr)
		if err != nil {
			return cfg, fmt.Errorf("display-i2c-address: %w", err)
		}
		cfg.Display.I2C.Address = v
	}
	if *flagHold != -1 {
		cfg.Display.HoldMs = *flagHold
	}
	if *flagOutputs != "" {
		// convert simple CSV of types into structured OutputConfig entries
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		outIntervals := map[string]int{}
		for _, p := range parseCSV(*flagOutputIntervals) {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			if v, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil {
				outIntervals[strings.TrimSpace(kv[0])] = v
			}
		}
		for i := range cfg.Outputs {
			if v, ok := outIntervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		m := outputByType(&cfg, "mqtt")
		if m.MQTT == nil {
			m.MQTT = &MQTTConfig{}
		}
		if *flagMQTTServer != "" {
			m.MQTT.Server = *flagMQTTServer
		}
		if *flagMQTTUser != "" {
			m.MQTT.Username = *flagMQTTUser
		}
		if *flagMQTTPass != "" {
			m.MQTT.Password = *flagMQTTPass
		}
		if *flagClientID != "" {
			m.MQTT.ClientID = *flagClientID
		}
		if *flagTopic != "" {
			m.MQTT.StateTopic = *flagTopic
		}
	}
	if *flagKafkaBrokers != "" || *flagKafkaTopic != "" {
		k := outputByType(&cfg, "kafka")
		if k.Kafka == nil {
			k.Kafka = &KafkaConfig{}
		}
		if *flagKafkaBrokers != "" {
			k.Kafka.Brokers = parseCSV(*flagKafkaBrokers)
		}
		if *flagKafkaTopic != "" {
			k.Kafka.Topic = *flagKafkaTopic
		}
	}
	if *flagMetrics != "" {
		cfg.MetricsAddr = *flagMetrics
	}

	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail deep inside a loop.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeADC, ModeBlink, ModeBlinkDual, ModeThermometer, ModeTimer:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.SensorType {
	case SensorReal, SensorSimulation:
	default:
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	switch c.Display.Type {
	case DisplayText, DisplaySSD1306:
	default:
		return fmt.Errorf("unknown display type %q", c.Display.Type)
	}
	if c.SampleRate <= 0 {
		return errors.New("sample-rate must be > 0")
	}
	if c.IntervalMs <= 0 || c.ProducerIntervalMs <= 0 || c.TimerPeriodMs <= 0 {
		return errors.New("interval-ms, producer-interval-ms and timer-period-ms must be > 0")
	}
	if c.ConversionDelayMs < 0 || c.Display.HoldMs < 0 {
		return errors.New("conversion-delay-ms and display-hold-ms must be >= 0")
	}
	if c.Resolution < 9 || c.Resolution > 12 {
		return fmt.Errorf("resolution must be 9..12, got %d", c.Resolution)
	}
	if err := c.Calibration.ValidateInterval(); err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	return nil
}

// EnabledChannels returns the enabled ADC channels in configuration order.
func (c Config) EnabledChannels() []ChannelConfig {
	out := make([]ChannelConfig, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

func channelByID(cfg *Config, id int) *ChannelConfig {
	for i := range cfg.Channels {
		if cfg.Channels[i].Channel == id {
			return &cfg.Channels[i]
		}
	}
	cfg.Channels = append(cfg.Channels, ChannelConfig{Channel: id, CalibrationScale: 1.0})
	return &cfg.Channels[len(cfg.Channels)-1]
}

// mergeEnabledChannels keeps existing per-channel settings and enables exactly
// the channels in ids.
func mergeEnabledChannels(existing []ChannelConfig, ids []int) []ChannelConfig {
	cfg := Config{Channels: existing}
	for i := range cfg.Channels {
		cfg.Channels[i].Enabled = false
	}
	for _, id := range ids {
		channelByID(&cfg, id).Enabled = true
	}
	return cfg.Channels
}

func outputByType(cfg *Config, typ string) *OutputConfig {
	for i := range cfg.Outputs {
		if strings.EqualFold(cfg.Outputs[i].Type, typ) {
			return &cfg.Outputs[i]
		}
	}
	cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: typ})
	return &cfg.Outputs[len(cfg.Outputs)-1]
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseChannels(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseLinear(s string) (calibrate.Linear, error) {
	parts := parseCSV(s)
	if len(parts) != 4 {
		return calibrate.Linear{}, fmt.Errorf("want 4 bounds, got %d", len(parts))
	}
	var b [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) {
			return calibrate.Linear{}, fmt.Errorf("invalid bound '%s'", p)
		}
		b[i] = v
	}
	return calibrate.Linear{SrcLo: b[0], SrcHi: b[1], DstLo: b[2], DstHi: b[3]}, nil
}

// parseKeyValues splits "k=v,k=v" into integer keys and raw values.
func parseKeyValues(s string) (map[int]string, error) {
	out := map[int]string{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid pair '%s'", p)
		}
		k, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid key '%s': %w", kv[0], err)
		}
		out[k] = strings.TrimSpace(kv[1])
	}
	return out, nil
}

func parseKeyFloatMap(s string) (map[int]float64, error) {
	kvs, err := parseKeyValues(s)
	if err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(kvs))
	for k, v := range kvs {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %d: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

func parseKeyIntMap(s string) (map[int]int, error) {
	kvs, err := parseKeyValues(s)
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(kvs))
	for k, v := range kvs {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %d: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func parseKeyBoolMap(s string) (map[int]bool, error) {
	kvs, err := parseKeyValues(s)
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(kvs))
	for k, v := range kvs {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %d: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}
