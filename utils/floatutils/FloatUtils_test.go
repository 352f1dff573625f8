package floatutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-3, 0, 340))
	assert.Equal(t, 340.0, Clip(341.5, 0, 340))
	assert.Equal(t, 12.25, Clip(12.25, 0, 340))
}

func TestClipInterval(t *testing.T) {
	travel := r1.Interval{Min: 0, Max: 340}
	assert.Equal(t, 0.0, ClipInterval(-0.5, travel))
	assert.Equal(t, 340.0, ClipInterval(1000, travel))
	assert.Equal(t, 170.0, ClipInterval(170, travel))
}
