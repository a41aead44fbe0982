package models

import "time"

// SensorSession is one day of sensor readings, parsed from a bar-speed export.
type SensorSession struct {
	Date time.Time
	Sets []SensorSet
}

// SensorSet is one set of one exercise within a session.
type SensorSet struct {
	Exercise  string
	Goal      string
	WeightKg  float64
	SetNumber int
	Reps      []SensorRep
}

// SensorRep is a single rep's mean concentric velocity in m/s.
type SensorRep struct {
	Number   int
	Velocity float64
}

// Velocities returns the rep velocities in rep order.
func (s SensorSet) Velocities() []float64 {
	v := make([]float64, len(s.Reps))
	for i, r := range s.Reps {
		v[i] = r.Velocity
	}
	return v
}
