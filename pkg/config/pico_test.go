package config

import "testing"

func TestPicoLEDGPIO(t *testing.T) {
	tests := map[string]int{
		ModeBlink:       25,
		ModeBlinkDual:   16,
		ModeTimer:       14,
		ModeThermometer: -1,
		ModeADC:         -1,
	}
	for mode, want := range tests {
		if got := PicoLEDGPIO(mode); got != want {
			t.Fatalf("PicoLEDGPIO(%q) = %d; want %d", mode, got, want)
		}
	}
}
