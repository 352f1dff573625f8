// Package environment outlines the interfaces and structs needed to
// implement concrete environments that are observed through rendered
// frames
package environment

import (
	"image"
	"time"

	"github.com/samuelfneumann/pongdqn/timestep"
)

// Environment implements a simulated environment that advances by a
// real elapsed duration on each step and is observed as a raw image
type Environment interface {
	// Reset starts a new episode and returns its first timestep along
	// with the first rendered frame
	Reset() (timestep.TimeStep, image.Image)

	// Step takes action for a duration of dt. Actions outside of
	// ActionSpec are rejected with an error.
	Step(action int, dt time.Duration) (timestep.TimeStep, image.Image, error)

	ActionSpec() Spec
}
