// Package calibrate converts raw sensor counts into physical or timing units
// through linear range-to-range mappings.
package calibrate

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidRange is returned when a mapping has equal or non-finite bounds.
var ErrInvalidRange = errors.New("invalid calibration range")

// Full-scale bounds of a 16-bit reading.
const (
	RawMin = 0
	RawMax = 65535
)

// Map linearly maps raw from [srcLo, srcHi] onto [dstLo, dstHi].
// The result is not clamped.
func Map(raw, srcLo, srcHi, dstLo, dstHi float64) (float64, error) {
	for _, b := range [...]float64{raw, srcLo, srcHi, dstLo, dstHi} {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return 0, fmt.Errorf("%w: non-finite value %v", ErrInvalidRange, b)
		}
	}
	if srcLo == srcHi {
		return 0, fmt.Errorf("%w: source bounds are equal (%v)", ErrInvalidRange, srcLo)
	}
	v := dstLo + (raw-srcLo)*(dstHi-dstLo)/(srcHi-srcLo)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result overflows", ErrInvalidRange)
	}
	return v, nil
}

// Linear is a calibration from one scalar range to another.
type Linear struct {
	SrcLo float64 `json:"src_lo"`
	SrcHi float64 `json:"src_hi"`
	DstLo float64 `json:"dst_lo"`
	DstHi float64 `json:"dst_hi"`
}

// FullScale maps the full 16-bit reading range onto [lo, hi].
func FullScale(lo, hi float64) Linear {
	return Linear{SrcLo: RawMin, SrcHi: RawMax, DstLo: lo, DstHi: hi}
}

// Validate reports whether the bounds describe a usable mapping.
func (l Linear) Validate() error {
	_, err := Map(l.SrcLo, l.SrcLo, l.SrcHi, l.DstLo, l.DstHi)
	return err
}

// Map applies the calibration without clamping.
func (l Linear) Map(raw float64) (float64, error) {
	return Map(raw, l.SrcLo, l.SrcHi, l.DstLo, l.DstHi)
}

// Clamped applies the calibration and clamps the result to the target range,
// whichever direction the range runs.
func (l Linear) Clamped(raw float64) (float64, error) {
	v, err := l.Map(raw)
	if err != nil {
		return 0, err
	}
	lo, hi := l.DstLo, l.DstHi
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(v, lo), hi), nil
}

// MaxInterval is the longest interval a calibration may produce.
const MaxInterval = time.Duration(math.MaxInt64)

// ValidateInterval reports whether every value of the calibration is a
// representable, non-negative interval in seconds.
func (l Linear) ValidateInterval() error {
	if err := l.Validate(); err != nil {
		return err
	}
	for _, secs := range [...]float64{l.DstLo, l.DstHi} {
		if err := checkSeconds(secs); err != nil {
			return err
		}
	}
	return nil
}

// Interval maps raw onto a target range expressed in seconds.
func (l Linear) Interval(raw float64) (time.Duration, error) {
	secs, err := l.Clamped(raw)
	if err != nil {
		return 0, err
	}
	if err := checkSeconds(secs); err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func checkSeconds(secs float64) error {
	if secs < 0 {
		return fmt.Errorf("%w: negative interval %.3fs", ErrInvalidRange, secs)
	}
	// float64(MaxInt64) rounds up to 2^63, so equality overflows too
	if secs*float64(time.Second) >= float64(MaxInterval) {
		return fmt.Errorf("%w: interval %gs overflows", ErrInvalidRange, secs)
	}
	return nil
}
