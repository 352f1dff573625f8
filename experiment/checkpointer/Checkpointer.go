// Package checkpointer implements periodic saving of serializable
// objects, such as agents, during an experiment
package checkpointer

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/pongdqn/timestep"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Save gob encodes object into the file filename, creating any missing
// parent directories. The file is written to a temporary file first
// and renamed, so that an interrupted save never leaves a partial
// checkpoint behind.
func Save(filename string, object gob.GobEncoder) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "save: could not create directory %v",
				dir)
		}
	}

	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "save: could not create checkpoint")
	}

	if err := gob.NewEncoder(file).Encode(object); err != nil {
		file.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "save: could not encode %T", object)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "save: could not close checkpoint")
	}

	return errors.Wrap(os.Rename(tmp, filename), "save: could not rename "+
		"checkpoint")
}

// Load decodes the checkpoint in the file filename into object
func Load(filename string, object gob.GobDecoder) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "load: could not open checkpoint")
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(object); err != nil {
		return errors.Wrapf(err, "load: could not decode checkpoint %v",
			filename)
	}
	return nil
}
