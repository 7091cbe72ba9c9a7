package rules

import (
	"fmt"
	"log/slog"
	"sort"
)

// DefaultMaxIterations bounds one inference pass.
const DefaultMaxIterations = 100

// Engine runs forward-chaining inference over a fixed, priority-ordered rule
// set. An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	rules         []Rule
	maxIterations int
	trace         bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default rule base.
func WithRules(rs []Rule) Option {
	return func(e *Engine) { e.rules = append([]Rule(nil), rs...) }
}

// WithMaxIterations sets the iteration cap of each pass. Values < 1 are
// ignored.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithTrace records an execution trace entry for every fired rule.
func WithTrace(on bool) Option {
	return func(e *Engine) { e.trace = on }
}

// NewEngine builds an engine over the rule base. Rules are ordered by
// priority; ties keep declaration order.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:         Base(),
		maxIterations: DefaultMaxIterations,
	}
	for _, o := range opts {
		o(e)
	}
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority < e.rules[j].Priority
	})
	return e
}

// Traced returns a copy of e with tracing switched on or off.
func (e *Engine) Traced(on bool) *Engine {
	cp := *e
	cp.trace = on
	return &cp
}

// Rules returns the engine's rules in conflict resolution order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Infer runs one pass over every rule. The input is not modified.
func (e *Engine) Infer(wm WorkingMemory) WorkingMemory {
	return e.run(wm, e.rules)
}

// InferCategory runs one pass restricted to the rules of category c.
func (e *Engine) InferCategory(wm WorkingMemory, c Category) WorkingMemory {
	var subset []Rule
	for _, r := range e.rules {
		if r.Category == c {
			subset = append(subset, r)
		}
	}
	slog.Debug("inference pass", "category", c, "rules", len(subset))
	return e.run(wm, subset)
}

// Applicable returns the rules whose condition holds for wm, in conflict
// resolution order, without firing them.
func (e *Engine) Applicable(wm WorkingMemory) []Rule {
	return match(&wm, e.rules, nil)
}

func (e *Engine) run(in WorkingMemory, rs []Rule) WorkingMemory {
	wm := in.Clone()
	if e.trace && wm.Metadata.Trace == nil {
		wm.Metadata.Trace = []TraceEntry{}
	}

	fired := make(map[string]bool, len(rs))
	firedThisPass := 0
	iter := 0
	for iter < e.maxIterations {
		iter++

		conflictSet := match(&wm, rs, fired)
		if len(conflictSet) == 0 {
			break
		}
		selected := conflictSet[0]
		slog.Debug("rule selected",
			"rule_id", selected.ID,
			"priority", selected.Priority.String(),
			"candidates", len(conflictSet))

		wm = e.execute(selected, wm, iter)
		fired[selected.ID] = true
		firedThisPass++
		wm.Metadata.RulesFired++
		wm.Metadata.FiredRules = append(wm.Metadata.FiredRules, selected.ID)
	}

	wm.Metadata.Iterations += iter
	if iter >= e.maxIterations {
		wm.Metadata.MaxIterationsReached = true
		slog.Warn("inference iteration limit reached", "max_iterations", e.maxIterations)
	}
	slog.Debug("inference pass finished", "rules_fired", firedThisPass, "iterations", iter)
	return wm
}

// match evaluates every not-yet-fired rule. A condition that panics counts as
// not matching.
func match(wm *WorkingMemory, rs []Rule, fired map[string]bool) []Rule {
	var out []Rule
	for _, r := range rs {
		if fired[r.ID] {
			continue
		}
		if holds(r, wm) {
			out = append(out, r)
		}
	}
	return out
}

func holds(r Rule, wm *WorkingMemory) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("rule condition failed", "rule_id", r.ID, "panic", p)
			ok = false
		}
	}()
	return r.Condition(wm)
}

func (e *Engine) execute(r Rule, wm WorkingMemory, iter int) WorkingMemory {
	next, err := apply(r, wm.Clone())
	if err != nil {
		rerr := &RuleExecutionError{RuleID: r.ID, Err: err}
		slog.Error("rule execution failed", "rule_id", r.ID, "err", rerr)
		wm.Metadata.FailedRules = append(wm.Metadata.FailedRules, r.ID)
		return wm
	}
	if e.trace {
		next.Metadata.Trace = append(next.Metadata.Trace, TraceEntry{
			Iteration: iter,
			RuleID:    r.ID,
			RuleName:  r.Name,
			Category:  r.Category,
			Priority:  r.Priority.String(),
		})
	}
	return next
}

func apply(r Rule, wm WorkingMemory) (out WorkingMemory, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Action(wm)
}
