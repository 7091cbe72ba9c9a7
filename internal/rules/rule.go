// Package rules implements a forward-chaining production rule engine that
// derives search parameters and itinerary findings from a traveler profile.
package rules

import "fmt"

// Priority orders rules during conflict resolution. Lower values win.
type Priority int

const (
	Critical Priority = iota + 1
	High
	Medium
	Low
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Category groups rules into passes.
type Category string

const (
	CategoryProfile    Category = "profile"
	CategoryTemporal   Category = "temporal"
	CategoryWeather    Category = "weather"
	CategoryValidation Category = "validation"
)

// Categories lists every rule category.
var Categories = []Category{CategoryProfile, CategoryTemporal, CategoryWeather, CategoryValidation}

// Rule is an immutable production rule. Condition must not modify the working
// memory; Action receives a private copy and returns the updated memory.
type Rule struct {
	ID          string
	Name        string
	Description string
	Priority    Priority
	Category    Category
	Condition   func(wm *WorkingMemory) bool
	Action      func(wm WorkingMemory) (WorkingMemory, error)
}

// RuleExecutionError reports a rule action that failed or panicked. The
// engine logs it and treats the rule as a no-op for that iteration.
type RuleExecutionError struct {
	RuleID string
	Err    error
}

func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
}

func (e *RuleExecutionError) Unwrap() error { return e.Err }
