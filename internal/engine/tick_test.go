package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct{ steps int }

func (c *countingStepper) Step(context.Context) TickReport {
	c.steps++
	return TickReport{Tick: uint64(c.steps)}
}

func TestEngineRunStopsAtMaxTicks(t *testing.T) {
	s := &countingStepper{}
	e := NewEngine(s)
	e.MaxTicks = 3

	var reports []uint64
	e.OnTick = func(r TickReport) { reports = append(reports, r.Tick) }

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, s.steps)
	assert.Equal(t, uint64(3), e.Tick)
	assert.Equal(t, []uint64{1, 2, 3}, reports)
}

func TestEngineRunHonoursCancellation(t *testing.T) {
	s := &countingStepper{}
	e := NewEngine(s)
	e.Interval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, s.steps)
}

func TestEnginePaused(t *testing.T) {
	s := &countingStepper{}
	e := NewEngine(s)
	e.Speed = 0

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, e.Run(ctx), context.DeadlineExceeded)
	assert.Zero(t, s.steps)
}

func TestEngineDrivesSimulation(t *testing.T) {
	sim := newTown(t, nil)
	e := NewEngine(sim)
	e.MaxTicks = 24

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(24), sim.LastTick)
	assert.Equal(t, 1, sim.Clock.Day)
	assert.Equal(t, 7, sim.Clock.Hour)
}
