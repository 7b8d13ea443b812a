package cognition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/metrics"
)

// Defaults for the decision fan-out.
const (
	DefaultWidth   = 5
	DefaultTimeout = 30 * time.Second
)

// Request kinds, used in logs and metrics.
const (
	KindPlan         = "plan"
	KindAction       = "action"
	KindConversation = "conversation"
)

// Service is the external reasoning service.
type Service interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options tunes an Orchestrator.
type Options struct {
	Width   int
	Timeout time.Duration
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Orchestrator issues one request per agent to the reasoning service with
// bounded concurrency. A failed request degrades to a default result for
// that agent only.
type Orchestrator struct {
	svc     Service
	width   int
	timeout time.Duration
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewOrchestrator creates an orchestrator over svc.
func NewOrchestrator(svc Service, opts Options) *Orchestrator {
	o := &Orchestrator{
		svc:     svc,
		width:   opts.Width,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if o.width <= 0 {
		o.width = DefaultWidth
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

type job struct {
	id     agents.AgentID
	name   string
	prompt Prompt
}

// PlanDaily requests a daily plan for every agent.
func (o *Orchestrator) PlanDaily(ctx context.Context, v View, list []*agents.Agent) map[agents.AgentID]DailyPlan {
	jobs := make([]job, len(list))
	for i, a := range list {
		jobs[i] = job{id: a.ID, name: a.Name, prompt: PlanPrompt(a, v)}
	}
	return fanOut(ctx, o, KindPlan, jobs, DecodeDailyPlan, func(err error) DailyPlan {
		return DefaultPlan("error: " + err.Error())
	})
}

// DecideActions requests the current action for every agent. items holds
// the plan entry for the current hour per agent, where there is one.
func (o *Orchestrator) DecideActions(ctx context.Context, v View, list []*agents.Agent, items map[agents.AgentID]agents.PlanItem) map[agents.AgentID]Decision {
	jobs := make([]job, len(list))
	for i, a := range list {
		var item *agents.PlanItem
		if it, ok := items[a.ID]; ok {
			item = &it
		}
		jobs[i] = job{id: a.ID, name: a.Name, prompt: ActionPrompt(a, v, item)}
	}
	return fanOut(ctx, o, KindAction, jobs, DecodeAction, func(err error) Decision {
		return DefaultDecision("error: " + err.Error())
	})
}

// Converse generates one conversation between a and b.
func (o *Orchestrator) Converse(ctx context.Context, v View, a, b *agents.Agent) Conversation {
	j := job{id: a.ID, name: a.Name, prompt: ConversationPrompt(a, b, v)}
	fallback := func(err error) Conversation {
		return DefaultConversation(a.Name, b.Name, "error: "+err.Error())
	}
	decode := func(raw string) Conversation {
		c, ok := DecodeConversation(raw)
		if !ok {
			return DefaultConversation(a.Name, b.Name, "unusable reply")
		}
		return c
	}
	return call(ctx, o, KindConversation, j, decode, fallback)
}

// fanOut runs one call per job, at most o.width at a time, and returns the
// results keyed by agent id once every call has finished.
func fanOut[T any](ctx context.Context, o *Orchestrator, kind string, jobs []job, decode func(string) T, fallback func(error) T) map[agents.AgentID]T {
	results := make([]T, len(jobs))

	// A plain Group: one failed call must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(o.width)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = call(ctx, o, kind, j, decode, fallback)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[agents.AgentID]T, len(jobs))
	for i, j := range jobs {
		out[j.id] = results[i]
	}
	return out
}

func call[T any](ctx context.Context, o *Orchestrator, kind string, j job, decode func(string) T, fallback func(error) T) (res T) {
	start := time.Now()
	status := metrics.StatusOK
	defer func() {
		if r := recover(); r != nil {
			status = metrics.StatusPanic
			err := fmt.Errorf("panic: %v", r)
			o.logger.Warn("decision request panicked", "kind", kind, "agent", j.name, "error", err)
			res = fallback(err)
		}
		o.metrics.RecordDecision(kind, status, time.Since(start))
	}()

	if o.svc == nil {
		status = metrics.StatusFallback
		return fallback(fmt.Errorf("no reasoning service"))
	}

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.svc.Complete(cctx, j.prompt.System, j.prompt.User)
	if err != nil {
		status = metrics.StatusFallback
		o.logger.Warn("decision request failed, using default", "kind", kind, "agent", j.name, "error", err)
		return fallback(err)
	}
	return decode(raw)
}
