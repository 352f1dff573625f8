// Package experiment implements functionality for running an experiment
package experiment

import (
	"github.com/samuelfneumann/pongdqn/experiment/tracker"
)

// Experiment runs an agent on an environment for a fixed number of
// steps. Every TimeStep of the run is sent to the registered Trackers,
// which cache what they need in memory until Save writes it to disk.
type Experiment interface {
	Run() error
	Save() error

	// Register adds a Tracker to the experiment, which may already be
	// running
	Register(t tracker.Tracker)
}
