package types

import (
	"fmt"
	"math"
)

// Colour temperature bounds in mireds, matching the range of Tasmota's
// CT command.
const (
	MinColorTemp = 153
	MaxColorTemp = 500
)

// ColorTemp is a white colour temperature in mireds (153-500).
//
// Mireds are reciprocal megakelvin: lower values are cooler (bluer),
// higher values are warmer (more orange).
type ColorTemp uint16

// Common colour temperature presets.
const (
	// ColorTempCool is the coolest white the device produces (~6500K).
	ColorTempCool ColorTemp = 153

	// ColorTempNeutral is a neutral white (~4000K).
	ColorTempNeutral ColorTemp = 250

	// ColorTempWarm is a warm white (~2700K).
	ColorTempWarm ColorTemp = 370

	// ColorTempCandle is the warmest white the device produces (~2000K).
	ColorTempCandle ColorTemp = 500
)

// NewColorTemp validates mireds against the 153-500 range.
func NewColorTemp(mireds int) (ColorTemp, error) {
	if mireds < MinColorTemp || mireds > MaxColorTemp {
		return 0, rangeErr("color temperature", mireds, MinColorTemp, MaxColorTemp)
	}
	return ColorTemp(mireds), nil
}

// NewColorTempClamped clamps mireds into the valid range.
func NewColorTempClamped(mireds int) ColorTemp {
	if mireds < MinColorTemp {
		return MinColorTemp
	}
	if mireds > MaxColorTemp {
		return MaxColorTemp
	}
	return ColorTemp(mireds)
}

// ColorTempFromKelvin converts a Kelvin temperature to mireds, clamped
// to the device range. 6500K maps to the cool end, 2000K to the warm end.
func ColorTempFromKelvin(kelvin int) ColorTemp {
	if kelvin <= 0 {
		return ColorTempWarm
	}
	return NewColorTempClamped(1_000_000 / kelvin)
}

// Mireds returns the raw mired value.
func (c ColorTemp) Mireds() int {
	return int(c)
}

// Kelvin returns the approximate temperature in Kelvin.
func (c ColorTemp) Kelvin() int {
	return 1_000_000 / int(c)
}

// String returns the wire form used in CT command payloads.
func (c ColorTemp) String() string {
	return fmt.Sprintf("%d", uint16(c))
}

// HSB component bounds.
const (
	MaxHue        = 360
	MaxSaturation = 100
	MaxBrightness = 100
)

// Hue is a colour wheel position in degrees (0-360).
type Hue uint16

// NewHue validates degrees against the 0-360 range.
func NewHue(degrees int) (Hue, error) {
	if degrees < 0 || degrees > MaxHue {
		return 0, rangeErr("hue", degrees, 0, MaxHue)
	}
	return Hue(degrees), nil
}

// String returns the wire form used in HSBColor1 command payloads.
func (h Hue) String() string {
	return fmt.Sprintf("%d", uint16(h))
}

// HsbColor is a colour in hue/saturation/brightness form, the native
// colour model of Tasmota's HSBColor command.
type HsbColor struct {
	// Hue in degrees (0-360).
	Hue uint16

	// Saturation in percent (0-100).
	Saturation uint8

	// Brightness in percent (0-100).
	Brightness uint8
}

// NewHsbColor validates each component against its range.
//
// Parameters:
//   - hue: 0-360 degrees
//   - saturation: 0-100 percent
//   - brightness: 0-100 percent
func NewHsbColor(hue, saturation, brightness int) (HsbColor, error) {
	if hue < 0 || hue > MaxHue {
		return HsbColor{}, rangeErr("hue", hue, 0, MaxHue)
	}
	if saturation < 0 || saturation > MaxSaturation {
		return HsbColor{}, rangeErr("saturation", saturation, 0, MaxSaturation)
	}
	if brightness < 0 || brightness > MaxBrightness {
		return HsbColor{}, rangeErr("brightness", brightness, 0, MaxBrightness)
	}
	return HsbColor{
		Hue:        uint16(hue),
		Saturation: uint8(saturation),
		Brightness: uint8(brightness),
	}, nil
}

// String returns the wire form "hue,saturation,brightness" used in
// HSBColor command payloads and device responses.
func (h HsbColor) String() string {
	return fmt.Sprintf("%d,%d,%d", h.Hue, h.Saturation, h.Brightness)
}

// IsBlack reports whether brightness is zero.
func (h HsbColor) IsBlack() bool {
	return h.Brightness == 0
}

// RgbColor is a colour in 8-bit-per-channel RGB form.
//
// Tasmota lights are driven in HSB; RGB exists as a convenience for
// callers working with RGB values and converts losslessly enough for
// lighting purposes via ToHsb.
type RgbColor struct {
	R, G, B uint8
}

// NewRgbColor builds an RgbColor. All byte values are valid.
func NewRgbColor(r, g, b uint8) RgbColor {
	return RgbColor{R: r, G: g, B: b}
}

// ToHsb converts the colour to Tasmota's HSB model.
func (c RgbColor) ToHsb() HsbColor {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case maxC == r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case maxC == g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	var sat float64
	if maxC > 0 {
		sat = delta / maxC
	}

	return HsbColor{
		Hue:        uint16(math.Round(hue)),
		Saturation: uint8(math.Round(sat * 100)),
		Brightness: uint8(math.Round(maxC * 100)),
	}
}

// String returns the hex form "RRGGBB" accepted by Tasmota's Color command.
func (c RgbColor) String() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}
