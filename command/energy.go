package command

import "fmt"

// QueryEnergy requests the sensor status report carrying the energy
// monitoring block (Status 8).
func QueryEnergy() Command {
	return set("Status", "8")
}

// ResetEnergyTotal zeroes the lifetime energy counter (EnergyReset3 0).
func ResetEnergyTotal() Command {
	return set("EnergyReset3", "0")
}

// ResetEnergyToday zeroes today's energy counter (EnergyReset1 0).
func ResetEnergyToday() Command {
	return set("EnergyReset1", "0")
}

// ResetEnergyYesterday zeroes yesterday's energy counter (EnergyReset2 0).
func ResetEnergyYesterday() Command {
	return set("EnergyReset2", "0")
}

// SetEnergyToday presets today's energy counter, in watt-hours.
func SetEnergyToday(wattHours uint32) Command {
	return set("EnergyToday", fmt.Sprintf("%d", wattHours))
}

// SetEnergyTotal presets the lifetime energy counter, in watt-hours.
func SetEnergyTotal(wattHours uint32) Command {
	return set("EnergyTotal", fmt.Sprintf("%d", wattHours))
}
