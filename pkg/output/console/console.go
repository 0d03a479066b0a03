package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ericogr/pico-loops/pkg/output"
	"github.com/ericogr/pico-loops/pkg/sensor"
)

type ConsoleOutput struct {
	w io.Writer
}

func NewConsole() output.Output { return &ConsoleOutput{} }

// NewConsoleWriter prints to w instead of stdout.
func NewConsoleWriter(w io.Writer) output.Output { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Publish(readings []sensor.Reading) error {
	w := c.w
	if w == nil {
		w = os.Stdout
	}
	for _, r := range readings {
		if _, err := fmt.Fprintf(w, "%s source=%s raw=%d value=%.6f\n", r.Timestamp.Format(time.RFC3339), r.Source, r.Raw, r.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
