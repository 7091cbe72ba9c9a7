package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/model"
)

func alwaysRule(id string, p Priority, act func(WorkingMemory) (WorkingMemory, error)) Rule {
	if act == nil {
		act = func(wm WorkingMemory) (WorkingMemory, error) {
			wm.applied(id, "fired")
			return wm, nil
		}
	}
	return Rule{
		ID:        id,
		Name:      id,
		Priority:  p,
		Category:  CategoryProfile,
		Condition: func(*WorkingMemory) bool { return true },
		Action:    act,
	}
}

func TestEngine_FiresEachRuleOnce(t *testing.T) {
	e := NewEngine(WithRules([]Rule{
		alwaysRule("A", Medium, nil),
		alwaysRule("B", Medium, nil),
	}))

	out := e.Infer(WorkingMemory{})
	assert.Equal(t, []string{"A: fired", "B: fired"}, out.AppliedRules)
	assert.Equal(t, 2, out.Metadata.RulesFired)
	assert.LessOrEqual(t, out.Metadata.RulesFired, len(e.Rules()))
	assert.Equal(t, 3, out.Metadata.Iterations, "the last iteration finds no match")
	assert.False(t, out.Metadata.MaxIterationsReached)
}

func TestEngine_ConflictResolution(t *testing.T) {
	e := NewEngine(WithRules([]Rule{
		alwaysRule("LOW", Low, nil),
		alwaysRule("MED1", Medium, nil),
		alwaysRule("CRIT", Critical, nil),
		alwaysRule("MED2", Medium, nil),
	}), WithTrace(true))

	out := e.Infer(WorkingMemory{})
	assert.Equal(t, []string{"CRIT", "MED1", "MED2", "LOW"}, out.Metadata.FiredRules)

	require.Len(t, out.Metadata.Trace, 4)
	assert.Equal(t, TraceEntry{Iteration: 1, RuleID: "CRIT", RuleName: "CRIT", Category: CategoryProfile, Priority: "CRITICAL"}, out.Metadata.Trace[0])
	assert.Equal(t, 4, out.Metadata.Trace[3].Iteration)
}

func TestEngine_MaxIterations(t *testing.T) {
	e := NewEngine(WithRules([]Rule{
		alwaysRule("A", High, nil),
		alwaysRule("B", High, nil),
		alwaysRule("C", High, nil),
	}), WithMaxIterations(2))

	out := e.Infer(WorkingMemory{})
	assert.True(t, out.Metadata.MaxIterationsReached)
	assert.Equal(t, 2, out.Metadata.RulesFired)
	assert.Equal(t, 2, out.Metadata.Iterations)
}

func TestEngine_FailingActionIsNoOp(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(WithRules([]Rule{
		alwaysRule("ERR", Critical, func(wm WorkingMemory) (WorkingMemory, error) {
			wm.AppliedRules = append(wm.AppliedRules, "should not stick")
			return wm, boom
		}),
		alwaysRule("PANIC", High, func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.PreferFree = true
			panic("kaboom")
		}),
		alwaysRule("OK", Low, nil),
	}))

	out := e.Infer(WorkingMemory{})
	assert.Equal(t, []string{"OK: fired"}, out.AppliedRules)
	assert.False(t, out.Computed.PreferFree)
	assert.Equal(t, []string{"ERR", "PANIC"}, out.Metadata.FailedRules)
	assert.Equal(t, 3, out.Metadata.RulesFired)
}

func TestEngine_PanickingConditionDoesNotMatch(t *testing.T) {
	bad := alwaysRule("BAD", Critical, nil)
	bad.Condition = func(*WorkingMemory) bool { panic("nil fact") }
	e := NewEngine(WithRules([]Rule{bad, alwaysRule("OK", Low, nil)}))

	out := e.Infer(WorkingMemory{})
	assert.Equal(t, []string{"OK"}, out.Metadata.FiredRules)
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	in := WorkingMemory{BudgetRange: "bajo", AppliedRules: []string{"seed"}}
	out := NewEngine().InferCategory(in, CategoryProfile)

	assert.Equal(t, []string{"seed"}, in.AppliedRules)
	assert.Empty(t, in.Computed.AllowedPriceRanges)
	assert.Equal(t, []string{model.PriceFree, model.PriceLow}, out.Computed.AllowedPriceRanges)
}

func TestEngine_MetadataAccumulatesAcrossPasses(t *testing.T) {
	e := NewEngine()
	wm := WorkingMemory{
		BudgetRange: "bajo",
		Now:         time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	wm = e.InferCategory(wm, CategoryProfile)
	wm = e.InferCategory(wm, CategoryTemporal)

	assert.Equal(t, []string{"PROFILE_002", "TIME_001"}, wm.Metadata.FiredRules)
	assert.Equal(t, 2, wm.Metadata.RulesFired)
	assert.Equal(t, 4, wm.Metadata.Iterations)
}

func TestBase_Catalog(t *testing.T) {
	rs := Base()
	require.Len(t, rs, 16)

	seen := map[string]bool{}
	counts := map[Category]int{}
	for _, r := range rs {
		assert.False(t, seen[r.ID], "duplicate rule id %s", r.ID)
		seen[r.ID] = true
		counts[r.Category]++
		assert.NotNil(t, r.Condition, r.ID)
		assert.NotNil(t, r.Action, r.ID)
	}
	assert.Equal(t, map[Category]int{
		CategoryProfile:    6,
		CategoryTemporal:   4,
		CategoryWeather:    2,
		CategoryValidation: 4,
	}, counts)
	assert.Len(t, ByCategory(CategoryWeather), 2)
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "HIGH", High.String())
	assert.Equal(t, "Priority(9)", Priority(9).String())
}
