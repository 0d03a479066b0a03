package console

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/ericogr/pico-loops/pkg/sensor"
)

func captureStdout(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()
	f()
	_ = w.Close()
	os.Stdout = stdout
	return <-outC
}

func TestConsolePublish(t *testing.T) {
	c := NewConsole()
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)
	readings := []sensor.Reading{{Source: "A0", Raw: 40000, Value: 2.014496, Timestamp: ts}}
	out := captureStdout(func() { _ = c.Publish(readings) })
	want := "2025-09-19T14:41:54Z source=A0 raw=40000 value=2.014496\n"
	if out != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", out, want)
	}
}

func TestConsoleWriterPublish(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)
	readings := []sensor.Reading{
		{Source: "28-000000001cb8", Raw: 0x0191, Value: 25.0625, Timestamp: ts},
		{Source: "28-000000001cb9", Raw: 0xFF5E, Value: -10.125, Timestamp: ts},
	}
	if err := c.Publish(readings); err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := "2025-09-19T14:41:54Z source=28-000000001cb8 raw=401 value=25.062500\n" +
		"2025-09-19T14:41:54Z source=28-000000001cb9 raw=65374 value=-10.125000\n"
	if buf.String() != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", buf.String(), want)
	}
}
