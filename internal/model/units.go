package model

import (
	"fmt"
	"strings"
)

// Unit is a length unit accepted for cut lengths.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
	UnitMeter      Unit = "m"
	UnitInch       Unit = "inches"
)

var unitFactors = map[Unit]float64{
	UnitMillimeter: 1,
	UnitCentimeter: 10,
	UnitMeter:      1000,
	UnitInch:       25.4,
}

// Units lists the supported units in display order.
func Units() []Unit {
	return []Unit{UnitMillimeter, UnitCentimeter, UnitMeter, UnitInch}
}

func (u Unit) String() string {
	return string(u)
}

// ParseUnit converts free text to a Unit. An empty string means millimetres.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mm", "millimeter", "millimeters", "millimetre", "millimetres":
		return UnitMillimeter, nil
	case "cm", "centimeter", "centimeters", "centimetre", "centimetres":
		return UnitCentimeter, nil
	case "m", "meter", "meters", "metre", "metres":
		return UnitMeter, nil
	case "in", "inch", "inches", "\"":
		return UnitInch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// ToMillimeters converts a length in the given unit to millimetres.
func ToMillimeters(value float64, unit Unit) (float64, error) {
	factor, ok := unitFactors[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, string(unit))
	}
	return value * factor, nil
}
