package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProbe struct {
	calls     map[string]int
	durations map[string]float64
	err       error
}

func (p *countingProbe) Duration(_ context.Context, input string) (float64, error) {
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[input]++
	if p.err != nil {
		return 0, p.err
	}
	return p.durations[input], nil
}

func TestDurationCacheProbesOncePerPath(t *testing.T) {
	probe := &countingProbe{durations: map[string]float64{
		"a.mp3": 100,
		"b.mp3": 50,
	}}
	c := NewDurationCache(probe)

	for i := 0; i < 3; i++ {
		d, err := c.Get(context.Background(), "a.mp3")
		require.NoError(t, err)
		assert.Equal(t, 100.0, d)
	}
	d, err := c.Get(context.Background(), "b.mp3")
	require.NoError(t, err)
	assert.Equal(t, 50.0, d)

	assert.Equal(t, 1, probe.calls["a.mp3"])
	assert.Equal(t, 1, probe.calls["b.mp3"])
	assert.Equal(t, 2, c.Len())
}

func TestDurationCacheDoesNotCacheFailures(t *testing.T) {
	probe := &countingProbe{err: errors.New("probe exploded")}
	c := NewDurationCache(probe)

	_, err := c.Get(context.Background(), "a.mp3")
	require.Error(t, err)

	probe.err = nil
	probe.durations = map[string]float64{"a.mp3": 42}

	d, err := c.Get(context.Background(), "a.mp3")
	require.NoError(t, err)
	assert.Equal(t, 42.0, d)
	assert.Equal(t, 2, probe.calls["a.mp3"])
}
