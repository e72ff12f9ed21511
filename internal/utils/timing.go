package utils

import "time"

// Timepoint is a named moment during a run, relative to the stopwatch start
type Timepoint struct {
	Name    string
	Elapsed time.Duration
}

// Stopwatch records timepoints for verbose output
type Stopwatch struct {
	start  time.Time
	now    func() time.Time
	points []Timepoint
}

// NewStopwatch starts a stopwatch
func NewStopwatch() *Stopwatch {
	return newStopwatch(time.Now)
}

func newStopwatch(now func() time.Time) *Stopwatch {
	return &Stopwatch{start: now(), now: now}
}

// Mark records a timepoint
func (s *Stopwatch) Mark(name string) {
	s.points = append(s.points, Timepoint{Name: name, Elapsed: s.now().Sub(s.start)})
}

// Points returns the recorded timepoints in order
func (s *Stopwatch) Points() []Timepoint {
	return s.points
}
