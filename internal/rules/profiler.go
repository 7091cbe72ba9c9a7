package rules

import (
	"log/slog"
	"time"

	"github.com/rcliao/itinerary/internal/model"
)

// DefaultDailyAttractions is reported when no rule derived a daily cap.
const DefaultDailyAttractions = 5

// Context carries the situational facts of an enrichment run.
type Context struct {
	Time    *time.Time `json:"current_time,omitempty"`
	Weather *Weather   `json:"weather,omitempty"`
}

// Result is the outcome of an enrichment or validation run.
type Result struct {
	Computed         model.ComputedProfile   `json:"computed_profile"`
	Warnings         []model.Warning         `json:"warnings"`
	ValidationErrors []model.ValidationError `json:"validation_errors"`
	AppliedRules     []string                `json:"applied_rules"`
	Metadata         Metadata                `json:"metadata"`
}

// Valid reports whether the run produced no validation errors.
func (r Result) Valid() bool { return len(r.ValidationErrors) == 0 }

func resultOf(wm WorkingMemory) Result {
	r := Result{
		Computed:         wm.Computed,
		Warnings:         wm.Warnings,
		ValidationErrors: wm.ValidationErrors,
		AppliedRules:     wm.AppliedRules,
		Metadata:         wm.Metadata,
	}
	if r.Warnings == nil {
		r.Warnings = []model.Warning{}
	}
	if r.ValidationErrors == nil {
		r.ValidationErrors = []model.ValidationError{}
	}
	if r.AppliedRules == nil {
		r.AppliedRules = []string{}
	}
	return r
}

// Explanation describes whether a rule applies to a profile.
type Explanation struct {
	RuleID      string   `json:"rule_id"`
	RuleName    string   `json:"rule_name"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Category    Category `json:"category"`
	Applicable  bool     `json:"is_applicable"`
	Fired       bool     `json:"already_executed"`
}

// Recommendations is the traveler-facing projection of a computed profile.
type Recommendations struct {
	RecommendedCategories []string            `json:"recommended_categories"`
	PriorityCategories    []string            `json:"priority_categories"`
	AvoidCategories       []string            `json:"avoid_categories"`
	MaxDailyAttractions   int                 `json:"max_daily_attractions"`
	AllowedPriceRanges    []string            `json:"allowed_price_ranges"`
	MinRating             *float64            `json:"min_rating"`
	RequiredAmenities     []string            `json:"required_amenities"`
	PreferredTransport    []string            `json:"preferred_transport"`
	Special               SpecialRequirements `json:"special_requirements"`
}

// SpecialRequirements groups the boolean flags of a computed profile.
type SpecialRequirements struct {
	FamilyFriendly       bool `json:"family_friendly"`
	RequireAccessibility bool `json:"require_accessibility"`
	PreferIndoor         bool `json:"prefer_indoor"`
	AvoidOutdoor         bool `json:"avoid_outdoor"`
}

// Profiler composes category passes of an Engine into profile enrichment and
// itinerary validation.
type Profiler struct {
	engine *Engine
	now    func() time.Time
}

// NewProfiler returns a profiler over e. A nil engine uses the default rule
// base.
func NewProfiler(e *Engine) *Profiler {
	if e == nil {
		e = NewEngine()
	}
	return &Profiler{engine: e, now: time.Now}
}

// Engine returns the underlying engine.
func (p *Profiler) Engine() *Engine { return p.engine }

// Memory builds the initial working memory for a profile and context.
func (p *Profiler) Memory(profile model.Profile, ctx *Context) WorkingMemory {
	now := p.now()
	if ctx != nil && ctx.Time != nil {
		now = *ctx.Time
	}
	wm := FromProfile(profile, now)
	if ctx != nil && ctx.Weather != nil {
		wm.Weather = ctx.Weather
	}
	return wm.Clone()
}

// Enrich runs the profile pass, then the temporal pass when ctx carries a
// time and the weather pass when ctx carries weather. The profile is not
// modified.
func (p *Profiler) Enrich(profile model.Profile, ctx *Context, trace bool) Result {
	e := p.engine.Traced(trace)
	wm := e.InferCategory(p.Memory(profile, ctx), CategoryProfile)
	if ctx != nil && ctx.Time != nil {
		wm = e.InferCategory(wm, CategoryTemporal)
	}
	if ctx != nil && ctx.Weather != nil {
		wm = e.InferCategory(wm, CategoryWeather)
	}
	slog.Info("profile enriched",
		"profile", profile.Name,
		"rules_fired", wm.Metadata.RulesFired,
		"iterations", wm.Metadata.Iterations)
	return resultOf(wm)
}

// Validate runs the validation pass over an itinerary for profile.
func (p *Profiler) Validate(it ItineraryFacts, profile model.Profile, trace bool) Result {
	c := profile.Clone()
	wm := WorkingMemory{
		Preferences: c.Preferences,
		BudgetMax:   c.BudgetMax,
		Now:         p.now(),
		Itinerary:   &it,
	}
	wm = p.engine.Traced(trace).InferCategory(wm, CategoryValidation)
	res := resultOf(wm)
	if !res.Valid() {
		slog.Warn("itinerary has validation errors", "errors", len(res.ValidationErrors))
	}
	return res
}

// Explain reports, for every rule, whether its condition holds for the
// initial working memory of profile and whether enrichment fires it.
func (p *Profiler) Explain(profile model.Profile, ctx *Context) []Explanation {
	wm := p.Memory(profile, ctx)
	applicable := make(map[string]bool)
	for _, r := range p.engine.Applicable(wm) {
		applicable[r.ID] = true
	}
	fired := make(map[string]bool)
	for _, id := range p.Enrich(profile, ctx, false).Metadata.FiredRules {
		fired[id] = true
	}

	rs := p.engine.Rules()
	out := make([]Explanation, 0, len(rs))
	for _, r := range rs {
		out = append(out, Explanation{
			RuleID:      r.ID,
			RuleName:    r.Name,
			Description: r.Description,
			Priority:    r.Priority.String(),
			Category:    r.Category,
			Applicable:  applicable[r.ID],
			Fired:       fired[r.ID],
		})
	}
	return out
}

// Recommend enriches profile and projects the computed profile.
func (p *Profiler) Recommend(profile model.Profile, ctx *Context) Recommendations {
	cp := p.Enrich(profile, ctx, false).Computed
	rec := Recommendations{
		RecommendedCategories: nonNil(cp.RecommendedCategories),
		PriorityCategories:    nonNil(cp.PriorityCategories),
		AvoidCategories:       nonNil(cp.AvoidCategories),
		MaxDailyAttractions:   cp.MaxDailyAttractions,
		AllowedPriceRanges:    cp.AllowedPriceRanges,
		MinRating:             cp.MinRating,
		RequiredAmenities:     nonNil(cp.RequiredAmenities),
		PreferredTransport:    nonNil(cp.PreferredTransport),
		Special: SpecialRequirements{
			FamilyFriendly:       cp.FamilyFriendly,
			RequireAccessibility: cp.RequireAccessibility,
			PreferIndoor:         cp.PreferIndoor,
			AvoidOutdoor:         cp.AvoidOutdoor,
		},
	}
	if rec.MaxDailyAttractions == 0 {
		rec.MaxDailyAttractions = DefaultDailyAttractions
	}
	return rec
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
