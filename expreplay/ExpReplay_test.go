package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/pongdqn/timestep"
)

// transition returns a transition identified by its reward
func transition(id int) timestep.Transition {
	return timestep.Transition{Action: id % 3, Reward: float64(id)}
}

func rewards(ts []timestep.Transition) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Reward
	}
	return out
}

func newMemory(t *testing.T, capacity, batch int) *Memory {
	t.Helper()
	m, err := Config{Capacity: capacity, SampleSize: batch}.Create(1)
	require.NoError(t, err)
	return m
}

func TestAddEvictsOldestFirst(t *testing.T) {
	const capacity = 5
	m := newMemory(t, capacity, 2)

	for i := 0; i < capacity+7; i++ {
		m.Add(transition(i))
		require.LessOrEqual(t, m.Len(), capacity)
	}

	assert.Equal(t, capacity, m.Len())
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, rewards(m.Transitions()))
	assert.Equal(t, 7.0, m.At(0).Reward)
	assert.Equal(t, 11.0, m.At(capacity-1).Reward)
}

func TestAddBeforeFullKeepsInsertOrder(t *testing.T) {
	m := newMemory(t, 10, 1)
	for i := 0; i < 4; i++ {
		m.Add(transition(i))
	}

	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []float64{0, 1, 2, 3}, rewards(m.Transitions()))
	assert.Panics(t, func() { m.At(4) })
}

func TestSampleErrors(t *testing.T) {
	m := newMemory(t, 10, 4)

	_, err := m.Sample()
	assert.True(t, IsEmptyBuffer(err))
	assert.False(t, IsInsufficientSamples(err))

	for i := 0; i < 3; i++ {
		m.Add(transition(i))
	}
	_, err = m.Sample()
	assert.True(t, IsInsufficientSamples(err))
	assert.False(t, IsEmptyBuffer(err))

	var replayErr *ExpReplayError
	assert.ErrorAs(t, err, &replayErr)
	assert.Equal(t, "sample", replayErr.Op)

	m.Add(transition(3))
	batch, err := m.Sample()
	require.NoError(t, err)
	assert.Len(t, batch, 4)
}

func TestSampleWithoutReplacement(t *testing.T) {
	m := newMemory(t, 64, 16)
	for i := 0; i < 100; i++ {
		m.Add(transition(i))
	}

	for call := 0; call < 50; call++ {
		batch, err := m.Sample()
		require.NoError(t, err)
		require.Len(t, batch, 16)

		seen := make(map[float64]bool)
		for _, tr := range batch {
			assert.False(t, seen[tr.Reward], "duplicate %v", tr.Reward)
			seen[tr.Reward] = true

			// Only the most recent 64 transitions are stored
			assert.GreaterOrEqual(t, tr.Reward, 36.0)
		}
	}
}

func TestSampleReachesEveryTransition(t *testing.T) {
	m := newMemory(t, 20, 5)
	for i := 0; i < 20; i++ {
		m.Add(transition(i))
	}

	seen := make(map[float64]int)
	for call := 0; call < 400; call++ {
		batch, err := m.Sample()
		require.NoError(t, err)
		for _, tr := range batch {
			seen[tr.Reward]++
		}
	}
	assert.Len(t, seen, 20)
}

func TestSampleIsDeterministicForSeed(t *testing.T) {
	a := newMemory(t, 32, 8)
	b := newMemory(t, 32, 8)
	for i := 0; i < 40; i++ {
		a.Add(transition(i))
		b.Add(transition(i))
	}

	for call := 0; call < 10; call++ {
		batchA, err := a.Sample()
		require.NoError(t, err)
		batchB, err := b.Sample()
		require.NoError(t, err)
		assert.Equal(t, rewards(batchA), rewards(batchB))
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(0, NewUniformSelector(1, 1))
	assert.Error(t, err)

	_, err = New(4, NewUniformSelector(5, 1))
	assert.Error(t, err)

	_, err = New(4, nil)
	assert.Error(t, err)

	assert.Error(t, Config{Capacity: 10, SampleSize: 0}.Validate())
	assert.Error(t, Config{Capacity: 10, SampleSize: 11}.Validate())
	assert.NoError(t, Config{Capacity: 10, SampleSize: 10}.Validate())
}

func BenchmarkSample(b *testing.B) {
	m, err := Config{Capacity: 100000, SampleSize: 64}.Create(1)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 100000; i++ {
		m.Add(transition(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Sample(); err != nil {
			b.Fatal(err)
		}
	}
}
