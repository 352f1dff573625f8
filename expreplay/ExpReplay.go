// Package expreplay implements a bounded experience replay buffer with
// first-in-first-out eviction
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/pongdqn/timestep"
)

// Config implements a specific configuration of a replay Memory
type Config struct {
	Capacity   int // Maximum number of stored transitions
	SampleSize int // Transitions returned by each call to Sample
}

// Validate checks that the Config describes a usable Memory
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("validate: capacity must be >= 1\n\thave(%v)",
			c.Capacity)
	}
	if c.SampleSize < 1 {
		return fmt.Errorf("validate: sample size must be >= 1\n\thave(%v)",
			c.SampleSize)
	}
	if c.SampleSize > c.Capacity {
		return fmt.Errorf("validate: cannot have batch size (%v) > buffer "+
			"capacity (%v)", c.SampleSize, c.Capacity)
	}
	return nil
}

// Create creates and returns the Memory described by the Config. The
// seed determines the sequence of sampled batches.
func (c Config) Create(seed uint64) (*Memory, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return New(c.Capacity, NewUniformSelector(c.SampleSize, seed))
}

// Memory is a fixed-capacity ring buffer of transitions. Once full,
// each insertion overwrites the oldest stored transition. Transitions
// are never modified after insertion.
//
// The ring is indexed by head, the position of the oldest transition,
// and tail, the position the next transition will be written to. When
// the Memory is full, head == tail.
//
// Memory is not safe for concurrent use.
type Memory struct {
	buffer []timestep.Transition
	head   int
	tail   int
	size   int

	sampler Selector
}

// New returns a new Memory which holds at most capacity transitions
// and draws batches with sampler
func New(capacity int, sampler Selector) (*Memory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be >= 1")
	}
	if sampler == nil {
		return nil, fmt.Errorf("new: nil sampler")
	}
	if capacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size(%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), capacity)
	}

	return &Memory{
		buffer:  make([]timestep.Transition, capacity),
		sampler: sampler,
	}, nil
}

// Add inserts t as the newest transition, evicting the oldest
// transition if the Memory is full
func (m *Memory) Add(t timestep.Transition) {
	m.buffer[m.tail] = t
	m.tail = (m.tail + 1) % len(m.buffer)

	if m.size == len(m.buffer) {
		m.head = m.tail
	} else {
		m.size++
	}
}

// Sample returns a batch of BatchSize() distinct transitions drawn
// uniformly at random. An error satisfying IsEmptyBuffer or
// IsInsufficientSamples is returned if a full batch cannot be drawn.
func (m *Memory) Sample() ([]timestep.Transition, error) {
	if m.size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if m.size < m.BatchSize() {
		return nil, &ExpReplayError{Op: "sample", Err: errInsufficientSamples}
	}

	indices := m.sampler.choose(m)
	batch := make([]timestep.Transition, len(indices))
	for i, index := range indices {
		batch[i] = m.At(index)
	}
	return batch, nil
}

// At returns the i-th oldest transition in the Memory
func (m *Memory) At(i int) timestep.Transition {
	if i < 0 || i >= m.size {
		panic(fmt.Sprintf("at: index %v out of range [0, %v)", i, m.size))
	}
	return m.buffer[(m.head+i)%len(m.buffer)]
}

// Transitions returns all stored transitions, oldest first
func (m *Memory) Transitions() []timestep.Transition {
	out := make([]timestep.Transition, m.size)
	for i := range out {
		out[i] = m.At(i)
	}
	return out
}

// Len returns the current number of transitions in the Memory
func (m *Memory) Len() int {
	return m.size
}

// Capacity returns the maximum number of transitions in the Memory
func (m *Memory) Capacity() int {
	return len(m.buffer)
}

// BatchSize returns the number of transitions returned by Sample
func (m *Memory) BatchSize() int {
	return m.sampler.BatchSize()
}

// String returns the string representation of the Memory
func (m *Memory) String() string {
	return fmt.Sprintf("Memory{len: %v, capacity: %v, head: %v, tail: %v, "+
		"batch: %v}", m.size, len(m.buffer), m.head, m.tail, m.BatchSize())
}
