package model

// Budget ranges a traveler profile may declare.
const (
	BudgetLow    = "bajo"
	BudgetMedium = "medio"
	BudgetHigh   = "alto"
	BudgetLuxury = "lujo"
)

// Preferences holds the traveler's declared tastes.
type Preferences struct {
	TourismType string   `json:"tourism_type,omitempty" yaml:"tourism_type"`
	Pace        string   `json:"pace,omitempty" yaml:"pace"`
	Interests   []string `json:"interests,omitempty" yaml:"interests"`
}

// Mobility holds the traveler's physical constraints.
type Mobility struct {
	MaxWalkingDistance *float64 `json:"max_walking_distance,omitempty" yaml:"max_walking_distance"`
	Wheelchair         bool     `json:"wheelchair,omitempty" yaml:"wheelchair"`
}

// Profile is a stored traveler profile.
type Profile struct {
	ID              int64            `json:"id"`
	UserID          string           `json:"user_id,omitempty"`
	Name            string           `json:"name"`
	Preferences     Preferences      `json:"preferences"`
	BudgetRange     string           `json:"budget_range,omitempty"`
	BudgetMin       *float64         `json:"budget_min,omitempty"`
	BudgetMax       *float64         `json:"budget_max,omitempty"`
	Mobility        Mobility         `json:"mobility_constraints"`
	ComputedProfile *ComputedProfile `json:"computed_profile,omitempty"`
}

// ComputedProfile is the set of search parameters derived from a profile by
// the rule engine. Zero values mean "not derived".
type ComputedProfile struct {
	FamilyFriendly        bool     `json:"family_friendly,omitempty"`
	RequiredAmenities     []string `json:"required_amenities,omitempty"`
	RecommendedCategories []string `json:"recommended_categories,omitempty"`
	PriorityCategories    []string `json:"priority_categories,omitempty"`
	AvoidCategories       []string `json:"avoid_categories,omitempty"`
	AllowedPriceRanges    []string `json:"allowed_price_ranges,omitempty"`
	MaxDailyCost          *float64 `json:"max_daily_cost,omitempty"`
	PreferFree            bool     `json:"prefer_free,omitempty"`
	MinRating             *float64 `json:"min_rating,omitempty"`
	PreferVerified        bool     `json:"prefer_verified,omitempty"`
	AllowExclusive        bool     `json:"allow_exclusive,omitempty"`
	RequireAccessibility  bool     `json:"require_accessibility,omitempty"`
	MaxWalkingDistance    *float64 `json:"max_walking_distance,omitempty"`
	PreferredTransport    []string `json:"preferred_transport,omitempty"`
	MaxDailyAttractions   int      `json:"max_daily_attractions,omitempty"`
	MinTimePerAttraction  int      `json:"min_time_per_attraction,omitempty"`
	IncludeRestTime       *bool    `json:"include_rest_time,omitempty"`
	PreferIndoor          bool     `json:"prefer_indoor,omitempty"`
	AvoidOutdoor          bool     `json:"avoid_outdoor,omitempty"`
}

// Clone returns a deep copy of the computed profile.
func (c ComputedProfile) Clone() ComputedProfile {
	out := c
	out.RequiredAmenities = cloneStrings(c.RequiredAmenities)
	out.RecommendedCategories = cloneStrings(c.RecommendedCategories)
	out.PriorityCategories = cloneStrings(c.PriorityCategories)
	out.AvoidCategories = cloneStrings(c.AvoidCategories)
	out.AllowedPriceRanges = cloneStrings(c.AllowedPriceRanges)
	out.PreferredTransport = cloneStrings(c.PreferredTransport)
	out.MaxDailyCost = cloneFloat(c.MaxDailyCost)
	out.MinRating = cloneFloat(c.MinRating)
	out.MaxWalkingDistance = cloneFloat(c.MaxWalkingDistance)
	if c.IncludeRestTime != nil {
		v := *c.IncludeRestTime
		out.IncludeRestTime = &v
	}
	return out
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	out.Preferences.Interests = cloneStrings(p.Preferences.Interests)
	out.BudgetMin = cloneFloat(p.BudgetMin)
	out.BudgetMax = cloneFloat(p.BudgetMax)
	out.Mobility.MaxWalkingDistance = cloneFloat(p.Mobility.MaxWalkingDistance)
	if p.ComputedProfile != nil {
		cp := p.ComputedProfile.Clone()
		out.ComputedProfile = &cp
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
