//go:build tinygo

package sensor

import (
	"fmt"
	"machine"
	"time"

	"tinygo.org/x/drivers/ds18b20"
	"tinygo.org/x/drivers/onewire"
)

// BoardThermometer reads every DS18B20 on a bit-banged 1-Wire pin.
type BoardThermometer struct {
	ow    onewire.Device
	dev   ds18b20.Device
	roms  [][]uint8
	names []string
	conv  *Conversion
}

func NewBoardThermometer(pin machine.Pin, resolution int, minDelay time.Duration) (*BoardThermometer, error) {
	ow := onewire.New(pin)
	roms, err := ow.Search(onewire.SEARCH_ROM)
	if err != nil {
		return nil, fmt.Errorf("onewire search: %w: %v", ErrPeripheralUnavailable, err)
	}
	t := &BoardThermometer{ow: ow, dev: ds18b20.New(ow)}
	for _, rom := range roms {
		if len(rom) != 8 || rom[0] != ds18b20Family {
			continue
		}
		var code uint64
		for i := len(rom) - 1; i >= 0; i-- {
			code = code<<8 | uint64(rom[i])
		}
		t.roms = append(t.roms, rom)
		t.names = append(t.names, romName(code))
		t.dev.ThermometerResolution(rom, uint8(resolution))
	}
	if len(t.roms) == 0 {
		return nil, fmt.Errorf("no ds18b20 on GP%d: %w", pin, ErrPeripheralUnavailable)
	}
	delay := ConversionTime(resolution)
	if minDelay > delay {
		delay = minDelay
	}
	t.conv = NewConversion(delay)
	return t, nil
}

func (t *BoardThermometer) Devices() []string { return append([]string(nil), t.names...) }

func (t *BoardThermometer) Read() ([]Reading, error) {
	if err := t.ow.Reset(); err != nil {
		return nil, fmt.Errorf("convert: %w: %v", ErrPeripheralUnavailable, err)
	}
	t.ow.Write(cmdSkipROM)
	t.ow.Write(cmdConvert)
	t.conv.Start()
	time.Sleep(t.conv.Remaining())
	if err := t.conv.Ready(); err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]Reading, 0, len(t.roms))
	for i, rom := range t.roms {
		raw, err := t.dev.ReadTemperatureRaw(rom)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.names[i], err)
		}
		word := uint16(raw[0]) | uint16(raw[1])<<8
		out = append(out, Reading{Source: t.names[i], Raw: word, Value: float64(int16(word)) / 16, Timestamp: now})
	}
	return out, nil
}

func (t *BoardThermometer) Close() error { return nil }
