package rules

import (
	"time"

	"github.com/rcliao/itinerary/internal/model"
)

// Weather is the contextual weather fact.
type Weather struct {
	Condition   string   `json:"condition,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ItineraryFacts is the slice of an itinerary the validation rules inspect.
type ItineraryFacts struct {
	Segments         []model.RouteSegment `json:"segments"`
	AttractionsCount int                  `json:"attractions_count"`
	TotalCost        float64              `json:"total_cost"`
}

// TravelMinutes sums the travel time of every segment.
func (f *ItineraryFacts) TravelMinutes() int {
	total := 0
	for _, s := range f.Segments {
		total += s.TravelMinutes
	}
	return total
}

// TraceEntry records one fired rule.
type TraceEntry struct {
	Iteration int      `json:"iteration"`
	RuleID    string   `json:"rule_id"`
	RuleName  string   `json:"rule_name"`
	Category  Category `json:"rule_category"`
	Priority  string   `json:"priority"`
}

// Metadata describes the inference passes applied to a working memory. It
// accumulates across passes run on the same memory.
type Metadata struct {
	Iterations           int          `json:"iterations"`
	RulesFired           int          `json:"rules_fired"`
	MaxIterationsReached bool         `json:"max_iterations_reached"`
	FiredRules           []string     `json:"fired_rules,omitempty"`
	FailedRules          []string     `json:"failed_rules,omitempty"`
	Trace                []TraceEntry `json:"execution_trace,omitempty"`
}

// WorkingMemory is the fact and derivation record of one inference run.
// Rule actions receive a private copy and return the updated record.
type WorkingMemory struct {
	UserID      string
	Name        string
	Preferences model.Preferences
	BudgetRange string
	BudgetMin   *float64
	BudgetMax   *float64
	Mobility    model.Mobility

	// Now is the reference date and time for temporal rules.
	Now       time.Time
	Weather   *Weather
	Itinerary *ItineraryFacts

	Computed         model.ComputedProfile
	Warnings         []model.Warning
	ValidationErrors []model.ValidationError
	AppliedRules     []string
	Metadata         Metadata
}

// FromProfile builds a working memory from a deep copy of p.
func FromProfile(p model.Profile, now time.Time) WorkingMemory {
	c := p.Clone()
	return WorkingMemory{
		UserID:      c.UserID,
		Name:        c.Name,
		Preferences: c.Preferences,
		BudgetRange: c.BudgetRange,
		BudgetMin:   c.BudgetMin,
		BudgetMax:   c.BudgetMax,
		Mobility:    c.Mobility,
		Now:         now,
	}
}

// Clone returns a deep copy.
func (wm WorkingMemory) Clone() WorkingMemory {
	out := wm
	p := model.Profile{
		Preferences: wm.Preferences,
		BudgetMin:   wm.BudgetMin,
		BudgetMax:   wm.BudgetMax,
		Mobility:    wm.Mobility,
	}.Clone()
	out.Preferences = p.Preferences
	out.BudgetMin = p.BudgetMin
	out.BudgetMax = p.BudgetMax
	out.Mobility = p.Mobility

	if wm.Weather != nil {
		w := *wm.Weather
		if w.Temperature != nil {
			t := *w.Temperature
			w.Temperature = &t
		}
		out.Weather = &w
	}
	if wm.Itinerary != nil {
		it := *wm.Itinerary
		it.Segments = append([]model.RouteSegment(nil), wm.Itinerary.Segments...)
		out.Itinerary = &it
	}

	out.Computed = wm.Computed.Clone()
	out.Warnings = append([]model.Warning(nil), wm.Warnings...)
	out.ValidationErrors = append([]model.ValidationError(nil), wm.ValidationErrors...)
	out.AppliedRules = append([]string(nil), wm.AppliedRules...)
	out.Metadata.FiredRules = append([]string(nil), wm.Metadata.FiredRules...)
	out.Metadata.FailedRules = append([]string(nil), wm.Metadata.FailedRules...)
	if wm.Metadata.Trace != nil {
		out.Metadata.Trace = append(make([]TraceEntry, 0, len(wm.Metadata.Trace)), wm.Metadata.Trace...)
	}
	return out
}

func (wm *WorkingMemory) applied(ruleID, text string) {
	wm.AppliedRules = append(wm.AppliedRules, ruleID+": "+text)
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
