package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a temperature display unit. Provider values are always Celsius.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// ParseUnit accepts "c"/"f" in either case; anything else is ErrInvalidInput.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "C":
		return Celsius, nil
	case "F":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown temperature unit %q: %w", s, ErrInvalidInput)
}

// Convert converts a Celsius value to u, rounded to the nearest degree.
func (u Unit) Convert(celsius float64) int {
	if u == Fahrenheit {
		return int(math.Round(celsius*9/5 + 32))
	}
	return int(math.Round(celsius))
}

// Format renders a Celsius value in u, e.g. "21 °C".
func (u Unit) Format(celsius float64) string {
	if u == Fahrenheit {
		return fmt.Sprintf("%d °F", u.Convert(celsius))
	}
	return fmt.Sprintf("%d °C", Celsius.Convert(celsius))
}
