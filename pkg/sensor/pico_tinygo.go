//go:build tinygo

package sensor

import (
	"fmt"
	"machine"
	"time"
)

// PicoADC reads one on-chip ADC input. machine.ADC.Get already returns a
// 16-bit scaled count.
type PicoADC struct {
	adc  machine.ADC
	name string
}

func NewPicoADC(pin machine.Pin) *PicoADC {
	machine.InitADC()
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &PicoADC{adc: a, name: fmt.Sprintf("ADC(GP%d)", pin)}
}

func (p *PicoADC) Devices() []string { return []string{p.name} }

func (p *PicoADC) Read() ([]Reading, error) {
	raw := p.adc.Get()
	value, err := Voltage.Map(float64(raw))
	if err != nil {
		return nil, err
	}
	return []Reading{{Source: p.name, Raw: raw, Value: value, Timestamp: time.Now()}}, nil
}

func (p *PicoADC) Close() error { return nil }
