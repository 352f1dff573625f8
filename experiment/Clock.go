package experiment

import (
	"fmt"
	"time"
)

// Clock provides the elapsed time of each environment step
type Clock interface {
	Tick() time.Duration
}

// FixedClock returns the same duration on every tick. It is used to
// run the simulation faster than real time.
type FixedClock struct {
	dt time.Duration
}

// NewFixedClock returns a FixedClock which ticks one frame interval at
// fps frames per second
func NewFixedClock(fps int) (*FixedClock, error) {
	if fps < 1 {
		return nil, fmt.Errorf("newFixedClock: fps must be positive\n\t"+
			"have(%v)", fps)
	}
	return &FixedClock{dt: time.Second / time.Duration(fps)}, nil
}

// Tick returns the fixed frame interval
func (f *FixedClock) Tick() time.Duration {
	return f.dt
}

// FrameClock limits the step rate to a maximum number of frames per
// second. Each tick waits until at least one frame interval has
// passed since the previous tick and returns the real time elapsed.
type FrameClock struct {
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewFrameClock returns a FrameClock capped at fps frames per second
func NewFrameClock(fps int) (*FrameClock, error) {
	if fps < 1 {
		return nil, fmt.Errorf("newFrameClock: fps must be positive\n\t"+
			"have(%v)", fps)
	}
	return &FrameClock{
		interval: time.Second / time.Duration(fps),
		now:      time.Now,
		sleep:    time.Sleep,
	}, nil
}

// Tick waits for the next frame and returns the time since the
// previous tick. The first tick returns one frame interval.
func (f *FrameClock) Tick() time.Duration {
	if f.last.IsZero() {
		f.last = f.now()
		return f.interval
	}

	if elapsed := f.now().Sub(f.last); elapsed < f.interval {
		f.sleep(f.interval - elapsed)
	}

	now := f.now()
	dt := now.Sub(f.last)
	f.last = now
	return dt
}
