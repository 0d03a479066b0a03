package sensor

import (
	"fmt"
	"math"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
)

// channelSettings holds the per-channel settings of every enabled channel.
type channelSettings struct {
	channel    int
	scale      float64
	offset     float64
	sampleRate int
}

// buildChannelSettings extracts the enabled channels from the config, falling
// back to the global sample rate and a unit scale.
func buildChannelSettings(cfg config.Config) []channelSettings {
	out := make([]channelSettings, 0, len(cfg.Channels))
	for _, c := range cfg.EnabledChannels() {
		s := channelSettings{channel: c.Channel, scale: c.CalibrationScale, offset: c.CalibrationOffset, sampleRate: c.SampleRate}
		if s.scale == 0 {
			s.scale = 1.0
		}
		if s.sampleRate == 0 {
			s.sampleRate = cfg.SampleRate
		}
		out = append(out, s)
	}
	return out
}

// ConversionDelay is the time a converter needs at the given sample rate plus
// a small margin.
func ConversionDelay(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		sampleRate = 128
	}
	return time.Duration(int(math.Ceil(1000.0/float64(sampleRate)))+2) * time.Millisecond
}

func channelName(ch int) string {
	return fmt.Sprintf("A%d", ch)
}

// scaleSigned maps a signed single-ended result onto the full unsigned range.
// Negative results (below ground noise) read as zero.
func scaleSigned(raw int16) uint16 {
	if raw <= 0 {
		return 0
	}
	return uint16(math.Round(float64(raw) * 65535.0 / 32767.0))
}
