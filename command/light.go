package command

import "github.com/tasgo-io/tasgo/types"

// ===== Dimmer =====

// QueryDimmer asks for the current brightness level.
func QueryDimmer() Command {
	return query("Dimmer")
}

// SetDimmer sets the brightness to an absolute level.
func SetDimmer(level types.Dimmer) Command {
	return set("Dimmer", level.String())
}

// IncreaseDimmer raises the brightness by the device's DimmerStep.
func IncreaseDimmer() Command {
	return set("Dimmer", "+")
}

// DecreaseDimmer lowers the brightness by the device's DimmerStep.
func DecreaseDimmer() Command {
	return set("Dimmer", "-")
}

// DimmerToMinimum fades the brightness down to the configured minimum.
func DimmerToMinimum() Command {
	return set("Dimmer", "<")
}

// DimmerToMaximum fades the brightness up to the configured maximum.
func DimmerToMaximum() Command {
	return set("Dimmer", ">")
}

// StopDimmer halts an in-progress dimmer fade.
func StopDimmer() Command {
	return set("Dimmer", "!")
}

// ===== Colour temperature =====

// QueryColorTemp asks for the current white colour temperature.
func QueryColorTemp() Command {
	return query("CT")
}

// SetColorTemp sets the white colour temperature in mireds.
func SetColorTemp(ct types.ColorTemp) Command {
	return set("CT", ct.String())
}

// IncreaseColorTemp warms the white channel by 10 mireds.
func IncreaseColorTemp() Command {
	return set("CT", "+")
}

// DecreaseColorTemp cools the white channel by 10 mireds.
func DecreaseColorTemp() Command {
	return set("CT", "-")
}

// ===== Colour =====

// QueryHsbColor asks for the current colour in HSB form.
func QueryHsbColor() Command {
	return query("HSBColor")
}

// SetHsbColor sets hue, saturation and brightness in one step.
func SetHsbColor(color types.HsbColor) Command {
	return set("HSBColor", color.String())
}

// SetHue changes only the hue component (HSBColor1).
func SetHue(hue types.Hue) Command {
	return set("HSBColor1", hue.String())
}

// SetSaturation changes only the saturation component (HSBColor2).
func SetSaturation(saturation types.Dimmer) Command {
	return set("HSBColor2", saturation.String())
}

// SetBrightness changes only the brightness component (HSBColor3).
func SetBrightness(brightness types.Dimmer) Command {
	return set("HSBColor3", brightness.String())
}

// SetRgbColor sets the colour from an RGB value, converted to the
// device's native HSB model.
func SetRgbColor(color types.RgbColor) Command {
	return SetHsbColor(color.ToHsb())
}

// ===== Fading =====

// QueryFadeSpeed asks for the current fade speed.
func QueryFadeSpeed() Command {
	return query("Speed")
}

// SetFadeSpeed sets how quickly light transitions run (1 fastest, 40 slowest).
func SetFadeSpeed(speed types.FadeSpeed) Command {
	return set("Speed", speed.String())
}

// EnableFade turns on fading between light states.
func EnableFade() Command {
	return set("Fade", "1")
}

// DisableFade makes light state changes immediate.
func DisableFade() Command {
	return set("Fade", "0")
}

// SetStartupFade controls whether the power-on transition also fades
// (SetOption91).
func SetStartupFade(enabled bool) Command {
	if enabled {
		return set("SetOption91", "1")
	}
	return set("SetOption91", "0")
}

// ===== Schemes and wakeup =====

// QueryScheme asks for the active light scheme.
func QueryScheme() Command {
	return query("Scheme")
}

// SetScheme selects a built-in light animation.
func SetScheme(scheme types.Scheme) Command {
	return set("Scheme", scheme.String())
}

// StartWakeup begins a wakeup brightness ramp using the configured
// wakeup duration.
func StartWakeup() Command {
	return set("Scheme", types.SchemeWakeup.String())
}

// QueryWakeupDuration asks for the configured wakeup ramp length.
func QueryWakeupDuration() Command {
	return query("WakeupDuration")
}

// SetWakeupDuration sets the wakeup ramp length in seconds.
func SetWakeupDuration(d types.WakeupDuration) Command {
	return set("WakeupDuration", d.String())
}
