package progressbar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewManualProgressBar(&buf, 10, 4)
	assert.Equal(t, 0.0, p.Fraction())

	p.Increment()
	assert.Equal(t, 0.25, p.Fraction())
	assert.True(t, strings.HasPrefix(p.String(), "|██        |"))
	assert.Contains(t, p.String(), "25.00%")

	for i := 0; i < 10; i++ {
		p.Increment()
	}
	assert.Equal(t, 1.0, p.Fraction())

	p.Display()
	assert.Contains(t, buf.String(), "100.00%")
	assert.Contains(t, buf.String(), strings.Repeat("█", 10))
}
