// Package common holds the small cross-stage utilities: run timers and the
// per-stage duration capture used by extraction logs and server metrics.
package common

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer measures one span from construction to Stop.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer labeled for log output.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop freezes the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the frozen duration; zero before Stop.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer's label, empty if unnamed.
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

// Stage is one named, completed span of a run.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Stages collects stage durations in completion order. Safe for concurrent
// recording.
type Stages struct {
	mu     sync.Mutex
	stages []Stage
}

// NewStages returns an empty stage recorder.
func NewStages() *Stages {
	return &Stages{}
}

// Record appends a completed stage.
func (s *Stages) Record(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, Stage{Name: name, Duration: d})
}

// Time starts a stage and returns the function that completes it.
func (s *Stages) Time(name string) func() {
	start := time.Now()
	return func() {
		s.Record(name, time.Since(start))
	}
}

// List returns the recorded stages in completion order.
func (s *Stages) List() []Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

// Milliseconds returns the stage durations keyed by name, in whole
// milliseconds, for structured log attributes.
func (s *Stages) Milliseconds() map[string]int64 {
	out := make(map[string]int64)
	for _, st := range s.List() {
		out[st.Name] += st.Duration.Milliseconds()
	}
	return out
}

func (s *Stages) String() string {
	parts := make([]string, 0, 4)
	for _, st := range s.List() {
		parts = append(parts, fmt.Sprintf("%s: %v", st.Name, st.Duration))
	}
	return strings.Join(parts, ", ")
}
