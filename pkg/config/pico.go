package config

// GPIO numbers of the Raspberry Pi Pico wiring used by the board build.
const (
	PicoADCGPIO      = 26
	PicoBlinkLEDGPIO = 25
	PicoDualLEDGPIO  = 16
	PicoTimerLEDGPIO = 14
	PicoOneWireGPIO  = 22
	PicoSDAGPIO      = 8
	PicoSCLGPIO      = 9
)

// PicoLEDGPIO returns the LED pin a demo mode drives on the Pico, or -1 for
// modes without an LED.
func PicoLEDGPIO(mode string) int {
	switch mode {
	case ModeBlink:
		return PicoBlinkLEDGPIO
	case ModeBlinkDual:
		return PicoDualLEDGPIO
	case ModeTimer:
		return PicoTimerLEDGPIO
	}
	return -1
}
