// Package engine provides the tick-based market simulation and its loop.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// Stepper advances a simulation by one tick.
type Stepper interface {
	Step(ctx context.Context) TickReport
}

// Engine drives a simulation forward in wall-clock time.
type Engine struct {
	Sim      Stepper
	Tick     uint64        // ticks run by this engine
	MaxTicks uint64        // 0 = run until the context is done
	Speed    float64       // multiplier: 1.0 = one tick per Interval, 0 = paused
	Interval time.Duration // base wall time per tick, 0 = as fast as possible

	// OnTick is called after every tick with its report.
	OnTick func(TickReport)
}

// NewEngine creates an engine with default settings.
func NewEngine(sim Stepper) *Engine {
	return &Engine{
		Sim:   sim,
		Speed: 1.0,
	}
}

// Run steps the simulation until MaxTicks is reached or ctx is done. It
// returns ctx.Err() when interrupted and nil when the tick budget is spent.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "max_ticks", e.MaxTicks, "speed", e.Speed, "interval", e.Interval)
	defer func() { slog.Info("simulation engine stopped", "ticks", e.Tick) }()

	for e.MaxTicks == 0 || e.Tick < e.MaxTicks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.Speed <= 0 {
			// Paused.
			if err := sleep(ctx, 100*time.Millisecond); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		e.step(ctx)

		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed := time.Since(start); elapsed < target {
			if err := sleep(ctx, target-elapsed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) step(ctx context.Context) {
	e.Tick++
	rep := e.Sim.Step(ctx)
	if e.OnTick != nil {
		e.OnTick(rep)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
