package checkpointer

import (
	"fmt"

	"github.com/rs/zerolog"
	ts "github.com/samuelfneumann/pongdqn/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename returns the filename of the next checkpoint.
	//
	// If each checkpoint should be saved in a separate file with each
	// file having an incremented number as a suffix (e.g. agent1.bin,
	// agent2.bin, ..., agentK.bin), use FilenameEnumerator. If the
	// filename does not matter, use FileTimer. To overwrite a single
	// checkpoint, use a function returning a constant.
	filename func() string

	logger zerolog.Logger
}

// NewNStep returns a checkpointer that checkpoints object every n
// steps. Step 0 is never checkpointed.
func NewNStep(n int, object Serializable, filename func() string,
	logger zerolog.Logger) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: checkpoint interval must be "+
			"positive\n\thave(%v)", n)
	}
	if object == nil || filename == nil {
		return nil, fmt.Errorf("newNStep: nil object or filename function")
	}

	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
		logger:   logger.With().Str("component", "checkpointer").Logger(),
	}, nil
}

// Checkpoint saves the Checkpointer's tracked object if t is a
// checkpointing step
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.Number <= 0 || t.Number%n.interval != 0 {
		return nil
	}

	filename := n.filename()
	if err := Save(filename, n.object); err != nil {
		return err
	}
	n.logger.Info().Int("step", t.Number).Str("file", filename).
		Msg("checkpoint saved")
	return nil
}
