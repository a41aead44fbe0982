package vbt

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for negative or non-finite velocities and unknown goals.
var ErrInvalidInput = errors.New("invalid input")

// Zone is a labeled velocity range. Zones are ordered from slowest to fastest.
type Zone int

const (
	MaxStrength Zone = iota
	Strength
	StrengthSpeed
	Power
	MaxVelocity
)

// Zones lists all zones in ascending order of velocity.
var Zones = []Zone{MaxStrength, Strength, StrengthSpeed, Power, MaxVelocity}

// Lower bounds in m/s, inclusive. MaxStrength covers everything below Strength.
var lowerBounds = [...]float64{
	MaxStrength:   0,
	Strength:      0.3,
	StrengthSpeed: 0.5,
	Power:         0.75,
	MaxVelocity:   1.0,
}

var zoneNames = [...]string{
	MaxStrength:   "max_strength",
	Strength:      "strength",
	StrengthSpeed: "strength_speed",
	Power:         "power",
	MaxVelocity:   "max_velocity",
}

var zoneLabels = [...]string{
	MaxStrength:   "Max Strength",
	Strength:      "Strength",
	StrengthSpeed: "Strength-Speed",
	Power:         "Power",
	MaxVelocity:   "Max Velocity",
}

var zoneCharacters = [...]string{
	MaxStrength:   "Maximal",
	Strength:      "Controlled",
	StrengthSpeed: "Dynamic",
	Power:         "Explosive",
	MaxVelocity:   "Speed",
}

func (z Zone) valid() bool { return z >= MaxStrength && z <= MaxVelocity }

// String returns the snake_case name used in storage and JSON.
func (z Zone) String() string {
	if !z.valid() {
		return fmt.Sprintf("zone(%d)", int(z))
	}
	return zoneNames[z]
}

// Label returns the display name, e.g. "Strength-Speed".
func (z Zone) Label() string {
	if !z.valid() {
		return z.String()
	}
	return zoneLabels[z]
}

// Character returns the one-word description of the movement quality.
func (z Zone) Character() string {
	if !z.valid() {
		return ""
	}
	return zoneCharacters[z]
}

// LowerBound returns the inclusive lower velocity bound of the zone.
func (z Zone) LowerBound() float64 {
	if !z.valid() {
		return math.NaN()
	}
	return lowerBounds[z]
}

// UpperBound returns the exclusive upper bound, or +Inf for MaxVelocity.
func (z Zone) UpperBound() float64 {
	if !z.valid() {
		return math.NaN()
	}
	if z == MaxVelocity {
		return math.Inf(1)
	}
	return lowerBounds[z+1]
}

// Contains reports whether v falls in [LowerBound, UpperBound).
func (z Zone) Contains(v float64) bool {
	return z.valid() && v >= z.LowerBound() && v < z.UpperBound()
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	if !z.valid() {
		return nil, fmt.Errorf("marshaling %s: %w", z, ErrInvalidInput)
	}
	return []byte(zoneNames[z]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(b []byte) error {
	parsed, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// ParseZone converts a stored zone name back into a Zone.
func ParseZone(s string) (Zone, error) {
	for _, z := range Zones {
		if zoneNames[z] == s {
			return z, nil
		}
	}
	return 0, fmt.Errorf("unknown zone %q: %w", s, ErrInvalidInput)
}

// Classify maps a velocity in m/s to its training zone.
// Bounds are checked from the highest down, so each velocity lands in exactly one zone.
func Classify(v float64) (Zone, error) {
	if err := checkVelocity(v); err != nil {
		return 0, err
	}
	switch {
	case v >= lowerBounds[MaxVelocity]:
		return MaxVelocity, nil
	case v >= lowerBounds[Power]:
		return Power, nil
	case v >= lowerBounds[StrengthSpeed]:
		return StrengthSpeed, nil
	case v >= lowerBounds[Strength]:
		return Strength, nil
	default:
		return MaxStrength, nil
	}
}

func checkVelocity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("velocity %v is not finite: %w", v, ErrInvalidInput)
	}
	if v < 0 {
		return fmt.Errorf("velocity %v m/s is negative: %w", v, ErrInvalidInput)
	}
	return nil
}

// ZoneInfo describes a zone for display and API responses.
type ZoneInfo struct {
	Zone       Zone     `json:"zone"`
	Label      string   `json:"label"`
	Character  string   `json:"character"`
	LowerBound float64  `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound,omitempty"`
}

// ZoneTable returns all zones fastest first, the order the zone reference card shows them.
func ZoneTable() []ZoneInfo {
	table := make([]ZoneInfo, 0, len(Zones))
	for i := len(Zones) - 1; i >= 0; i-- {
		z := Zones[i]
		info := ZoneInfo{
			Zone:       z,
			Label:      z.Label(),
			Character:  z.Character(),
			LowerBound: z.LowerBound(),
		}
		if z != MaxVelocity {
			upper := z.UpperBound()
			info.UpperBound = &upper
		}
		table = append(table, info)
	}
	return table
}
