package clock

import "time"

// Clock supplies the current time. The engine never calls time.Now directly
// so that lifecycle transitions can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock frozen at a settable instant, for tests
type Fixed struct {
	Current time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{Current: t} }

func (f *Fixed) Now() time.Time { return f.Current }

// Advance moves the fixed clock forward by d
func (f *Fixed) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
