// Package journal appends simulation events to durable audit sinks. A
// journal is write-only: nothing is ever read back to restore a run.
package journal

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-market/internal/engine"
	"github.com/talgya/mini-market/internal/metrics"
)

// Entry is one journaled event.
type Entry struct {
	RunID       string `json:"run_id" db:"run_id"`
	Tick        uint64 `json:"tick" db:"tick"`
	Day         int    `json:"day" db:"day"`
	Hour        int    `json:"hour" db:"hour"`
	Minute      int    `json:"minute" db:"minute"`
	Category    string `json:"category" db:"category"`
	Agent       string `json:"agent,omitempty" db:"agent"`
	Location    string `json:"location,omitempty" db:"location"`
	Description string `json:"description" db:"description"`
}

// NewEntry converts a simulation event.
func NewEntry(runID string, e engine.Event) Entry {
	return Entry{
		RunID:       runID,
		Tick:        e.Tick,
		Day:         e.Time.Day,
		Hour:        e.Time.Hour,
		Minute:      e.Time.Minute,
		Category:    e.Category,
		Agent:       string(e.Agent),
		Location:    e.Location,
		Description: e.Description,
	}
}

// Sink stores journal entries.
type Sink interface {
	Name() string
	Write(entries []Entry) error
	Close() error
}

// Run describes one simulation run.
type Run struct {
	ID        string    `db:"id"`
	StartedAt time.Time `db:"started_at"`
	Agents    int       `db:"agents"`
	Locations int       `db:"locations"`
	Ticks     uint64    `db:"ticks"`
	Summary   string    `db:"summary"`
}

// RunRecorder is implemented by sinks that keep per-run metadata.
type RunRecorder interface {
	StartRun(r Run) error
	FinishRun(id string, ticks uint64, summary string) error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Journal buffers events during a tick and flushes them to every sink.
// Sink failures are logged and counted; they never stop the simulation.
type Journal struct {
	RunID string

	mu      sync.Mutex
	pending []Entry
	sinks   []Sink
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates a journal for runID writing to sinks.
func New(runID string, m *metrics.Collector, logger *slog.Logger, sinks ...Sink) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{RunID: runID, sinks: sinks, metrics: m, logger: logger}
}

// Record queues an event. It has the signature of engine.Options.OnEvent.
func (j *Journal) Record(e engine.Event) {
	j.mu.Lock()
	j.pending = append(j.pending, NewEntry(j.RunID, e))
	j.mu.Unlock()
}

// Flush writes the queued entries to every sink.
func (j *Journal) Flush() {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	for _, s := range j.sinks {
		if err := s.Write(batch); err != nil {
			j.metrics.RecordJournalError(s.Name())
			j.logger.Warn("journal write failed", "sink", s.Name(), "entries", len(batch), "error", err)
		}
	}
}

// Start records run metadata on sinks that keep it.
func (j *Journal) Start(agents, locations int) {
	r := Run{ID: j.RunID, StartedAt: time.Now().UTC(), Agents: agents, Locations: locations}
	for _, s := range j.sinks {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.StartRun(r); err != nil {
				j.metrics.RecordJournalError(s.Name())
				j.logger.Warn("journal start failed", "sink", s.Name(), "error", err)
			}
		}
	}
}

// Finish flushes pending entries and closes the run on sinks that keep
// run metadata.
func (j *Journal) Finish(ticks uint64, summary string) {
	j.Flush()
	for _, s := range j.sinks {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.FinishRun(j.RunID, ticks, summary); err != nil {
				j.metrics.RecordJournalError(s.Name())
				j.logger.Warn("journal finish failed", "sink", s.Name(), "error", err)
			}
		}
	}
}

// Close flushes and closes every sink.
func (j *Journal) Close() error {
	j.Flush()
	var errs []error
	for _, s := range j.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
