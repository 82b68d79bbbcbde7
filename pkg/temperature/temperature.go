// Package temperature converts TMP36-style sensor voltages into rounded
// temperature samples.
package temperature

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit is the display unit of a Sample.
type Unit byte

const (
	Celsius    Unit = 'C'
	Fahrenheit Unit = 'F'
)

// sensor transfer function: 500mV at 0°C, 10mV per degree
const (
	offsetVolts  = 0.5
	degreesPerV  = 100.0
	roundingBase = 10.0
)

func (u Unit) String() string {
	switch u {
	case Fahrenheit:
		return "F"
	default:
		return "C"
	}
}

// ParseUnit accepts c, celsius, f and fahrenheit in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	}
	return Celsius, fmt.Errorf("invalid unit %q", s)
}

// Sample is one converted reading.
type Sample struct {
	Temp    float64   `json:"temperature"`
	Unit    Unit      `json:"-"`
	Voltage float64   `json:"voltage"`
	Time    time.Time `json:"timestamp"`
}

// FormatTemp renders a temperature with exactly one decimal.
func FormatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', 1, 64)
}

func (s Sample) String() string {
	return FormatTemp(s.Temp) + " " + s.Unit.String()
}

// FromVoltage returns the unrounded Celsius temperature for v volts.
func FromVoltage(v float64) float64 {
	return (v - offsetVolts) * degreesPerV
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// Round1 rounds to one decimal place. Halves round toward positive infinity.
func Round1(x float64) float64 {
	return math.Floor(x*roundingBase+0.5) / roundingBase
}

// Convert turns a voltage into a Sample in the requested unit. Rounding
// happens once, after the unit conversion.
func Convert(v float64, unit Unit, at time.Time) Sample {
	t := FromVoltage(v)
	if unit == Fahrenheit {
		t = CelsiusToFahrenheit(t)
	} else {
		unit = Celsius
	}
	return Sample{Temp: Round1(t), Unit: unit, Voltage: v, Time: at}
}
