package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StackedState is a fixed-length history of single-channel feature
// frames, ordered oldest first and most recent last. A StackedState
// never changes once built: Push returns a new StackedState which
// shares all but the oldest frame with its receiver.
//
// Frames must not be modified after they have been stacked.
//
// The zero StackedState holds no frames and is used as the terminal
// marker of a Transition.
type StackedState struct {
	frames []*mat.Dense
}

// NewStackedState returns a StackedState of depth copies of frame
func NewStackedState(depth int, frame *mat.Dense) StackedState {
	if depth < 1 {
		panic(fmt.Sprintf("newStackedState: depth must be positive, have %v",
			depth))
	}
	if frame == nil {
		panic("newStackedState: nil frame")
	}

	frames := make([]*mat.Dense, depth)
	for i := range frames {
		frames[i] = frame
	}
	return StackedState{frames: frames}
}

// Push returns a new StackedState with the oldest frame dropped and
// frame appended as the most recent. Push panics if frame does not have
// the same dimensions as the frames already stacked.
func (s StackedState) Push(frame *mat.Dense) StackedState {
	if s.IsZero() {
		panic("push: cannot push onto an empty stack")
	}
	r, c := frame.Dims()
	wantR, wantC := s.frames[0].Dims()
	if r != wantR || c != wantC {
		panic(fmt.Sprintf("push: frame shape mismatch\n\twant(%v×%v)"+
			"\n\thave(%v×%v)", wantR, wantC, r, c))
	}

	frames := make([]*mat.Dense, len(s.frames))
	copy(frames, s.frames[1:])
	frames[len(frames)-1] = frame

	return StackedState{frames: frames}
}

// IsZero returns whether the StackedState holds no frames
func (s StackedState) IsZero() bool {
	return len(s.frames) == 0
}

// Depth returns the number of frames in the stack
func (s StackedState) Depth() int {
	return len(s.frames)
}

// Dims returns the depth, height, and width of the stack
func (s StackedState) Dims() (depth, height, width int) {
	if s.IsZero() {
		return 0, 0, 0
	}
	height, width = s.frames[0].Dims()
	return len(s.frames), height, width
}

// Frame returns the i-th oldest frame
func (s StackedState) Frame(i int) mat.Matrix {
	return s.frames[i]
}

// Newest returns the most recent frame
func (s StackedState) Newest() mat.Matrix {
	return s.frames[len(s.frames)-1]
}

// Len returns the total number of features in the stack
func (s StackedState) Len() int {
	d, h, w := s.Dims()
	return d * h * w
}

// Flatten appends the features of the stack to dst in channel-major
// order (frame, row, column) and returns the extended slice
func (s StackedState) Flatten(dst []float64) []float64 {
	for _, frame := range s.frames {
		r, _ := frame.Dims()
		for i := 0; i < r; i++ {
			dst = append(dst, frame.RawRowView(i)...)
		}
	}
	return dst
}
