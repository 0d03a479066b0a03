package config

import (
	"reflect"
	"testing"

	"github.com/ericogr/pico-loops/pkg/calibrate"
)

func TestParseKeyMaps(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) (interface{}, error)
		in    string
		want  interface{}
		ok    bool
	}{
		{"float empty", floatMap, "", map[int]float64{}, true},
		{"float spaced", floatMap, " 0 = 1 , 2 = -0.5", map[int]float64{0: 1.0, 2: -0.5}, true},
		{"float no pair", floatMap, "bad", nil, false},
		{"float bad value", floatMap, "0=x", nil, false},
		{"int rates", intMap, "0=128,1=250", map[int]int{0: 128, 1: 250}, true},
		{"int bad key", intMap, "a=8", nil, false},
		{"bool enabled", boolMap, "0=true, 2=false", map[int]bool{0: true, 2: false}, true},
		{"bool bad value", boolMap, "0=maybe", nil, false},
	}
	for _, tt := range tests {
		got, err := tt.parse(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("%s: parse(%q) ok=%v err=%v", tt.name, tt.in, tt.ok, err)
		}
		if tt.ok && !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: parse(%q) = %v; want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func floatMap(s string) (interface{}, error) { return parseKeyFloatMap(s) }
func intMap(s string) (interface{}, error)   { return parseKeyIntMap(s) }
func boolMap(s string) (interface{}, error)  { return parseKeyBoolMap(s) }

func TestParseLinear(t *testing.T) {
	got, err := parseLinear("0, 65535, 0.05, 1.5")
	if err != nil {
		t.Fatalf("parseLinear: %v", err)
	}
	want := calibrate.Linear{SrcLo: 0, SrcHi: 65535, DstLo: 0.05, DstHi: 1.5}
	if got != want {
		t.Fatalf("parseLinear = %+v; want %+v", got, want)
	}
	for _, in := range []string{"", "0,1,2", "0,1,2,x", "0,1,2,NaN"} {
		if _, err := parseLinear(in); err == nil {
			t.Fatalf("parseLinear(%q) succeeded", in)
		}
	}
}

func TestParseIntOrHex(t *testing.T) {
	for in, want := range map[string]int{"72": 72, "0x48": 0x48, "0X3c": 0x3C} {
		got, err := parseIntOrHex(in)
		if err != nil || got != want {
			t.Fatalf("parseIntOrHex(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseIntOrHex("0xZZ"); err == nil {
		t.Fatal("parseIntOrHex accepted garbage")
	}
}

func TestParseChannels(t *testing.T) {
	got, err := parseChannels("0, 2,,3")
	if err != nil {
		t.Fatalf("parseChannels: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 2, 3}) {
		t.Fatalf("parseChannels = %v", got)
	}
	if _, err := parseChannels("0,one"); err == nil {
		t.Fatal("parseChannels accepted a name")
	}
}
