package tracker

import (
	"fmt"
	"math"

	ts "github.com/samuelfneumann/pongdqn/timestep"
	"gonum.org/v1/gonum/stat"
)

// Score tracks the cumulative game score at regular step intervals.
// A timestep is recorded when its number is a multiple of the interval,
// so that step 0 is always recorded.
type Score struct {
	every    int
	scores   []float64
	filename string
}

// NewScore returns a new Score Tracker which records the score every
// `every` steps and saves the history to filename
func NewScore(every int, filename string) (*Score, error) {
	if every < 1 {
		return nil, fmt.Errorf("newScore: interval must be positive\n\t"+
			"have(%v)", every)
	}
	return &Score{every: every, filename: filename}, nil
}

// Track records the score of step if step is on the tracking interval
func (s *Score) Track(step ts.TimeStep) {
	if step.Number%s.every == 0 {
		s.scores = append(s.scores, step.Score)
	}
}

// History returns a copy of the recorded scores
func (s *Score) History() []float64 {
	return append([]float64(nil), s.scores...)
}

// Save saves the recorded scores to disk
func (s *Score) Save() error {
	return save(s.filename, s.scores)
}

// Summary describes the change in score over each tracking window
type Summary struct {
	Windows int     // Number of complete windows
	Final   float64 // Last recorded score
	Mean    float64 // Mean score change per window
	StdDev  float64 // Standard deviation of the score change per window
}

// Summary summarizes the recorded score history. Mean and StdDev are
// NaN if fewer than two windows have been recorded.
func (s *Score) Summary() Summary {
	var summary Summary
	if len(s.scores) > 0 {
		summary.Final = s.scores[len(s.scores)-1]
	}
	if len(s.scores) < 2 {
		summary.Mean, summary.StdDev = math.NaN(), math.NaN()
		return summary
	}

	deltas := make([]float64, len(s.scores)-1)
	for i := range deltas {
		deltas[i] = s.scores[i+1] - s.scores[i]
	}
	summary.Windows = len(deltas)
	summary.Mean, summary.StdDev = stat.MeanStdDev(deltas, nil)
	return summary
}
