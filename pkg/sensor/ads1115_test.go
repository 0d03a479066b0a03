//go:build !tinygo

package sensor

import (
	"testing"
)

func TestConfigForChannelBytes(t *testing.T) {
	s := &ADS1115Sensor{}

	// channel 0, sample rate 128 -> msb 0xC3 lsb 0x83
	msb, lsb, err := s.configForChannel(0, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC3 || lsb != 0x83 {
		t.Fatalf("channel0@128 => got %02X %02X; want C3 83", msb, lsb)
	}

	msb, lsb, err = s.configForChannel(1, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xD3 || lsb != 0x83 {
		t.Fatalf("channel1@128 => got %02X %02X; want D3 83", msb, lsb)
	}

	// dr=0
	msb, lsb, err = s.configForChannel(0, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC3 || lsb != 0x03 {
		t.Fatalf("channel0@8 => got %02X %02X; want C3 03", msb, lsb)
	}

	// unknown rates fall back to 128 SPS
	msb, lsb, _ = s.configForChannel(3, 100)
	if msb != 0xF3 || lsb != 0x83 {
		t.Fatalf("channel3@100 => got %02X %02X; want F3 83", msb, lsb)
	}

	if _, _, err = s.configForChannel(9, 128); err == nil {
		t.Fatalf("expected error for invalid channel")
	}
}

func TestScaleSigned(t *testing.T) {
	tests := []struct {
		in   int16
		want uint16
	}{
		{-5, 0},
		{0, 0},
		{32767, 65535},
		{16384, 32769},
	}
	for _, tt := range tests {
		if got := scaleSigned(tt.in); got != tt.want {
			t.Fatalf("scaleSigned(%d) = %d; want %d", tt.in, got, tt.want)
		}
	}
}
