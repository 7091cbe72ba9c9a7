package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
)

var errMissing = errors.New("missing")

// memStore is an in-memory Store. block, when set, stalls GetProfile until it
// is closed.
type memStore struct {
	mu        sync.Mutex
	nodes     []model.Attraction
	edges     []model.Connection
	profiles  map[int64]*model.Profile
	persisted []*model.ItineraryPlan
	block     chan struct{}
}

func (m *memStore) LoadAttractionsAndEdges(_ context.Context, destID int64) ([]model.Attraction, []model.Connection, error) {
	return m.nodes, m.edges, nil
}

func (m *memStore) DestinationOf(_ context.Context, id int64) (int64, error) {
	for _, n := range m.nodes {
		if n.ID == id {
			return n.DestinationID, nil
		}
	}
	return 0, errMissing
}

func (m *memStore) GetProfile(_ context.Context, id int64) (*model.Profile, error) {
	if m.block != nil {
		<-m.block
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, errMissing
	}
	c := p.Clone()
	return &c, nil
}

func (m *memStore) PersistItinerary(_ context.Context, plan *model.ItineraryPlan) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted = append(m.persisted, plan)
	return fmt.Sprintf("it-%d", len(m.persisted)), nil
}

func (m *memStore) persistedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.persisted)
}

func place(id int64, name, cat string, lat, lon float64) model.Attraction {
	return model.Attraction{
		ID:            id,
		DestinationID: 1,
		Name:          name,
		Category:      cat,
		Rating:        model.Float(4.5),
		PriceRange:    model.PriceFree,
		VisitMinutes:  model.Int(90),
		Location:      &model.Coordinate{Lat: lat, Lon: lon},
	}
}

func both(a, b int64, m float64, mins int) []model.Connection {
	return []model.Connection{
		{FromID: a, ToID: b, DistanceM: m, TravelMinutes: mins, Mode: model.ModeWalking},
		{FromID: b, ToID: a, DistanceM: m, TravelMinutes: mins, Mode: model.ModeWalking},
	}
}

// cityStore has a center (1), a western pair (2, 3), an eastern pair (4, 5)
// and an isolated hotel (7).
func cityStore() *memStore {
	s := &memStore{
		nodes: []model.Attraction{
			place(1, "Zocalo", "historico", 19.4326, -99.1332),
			place(2, "Bellas Artes", "cultural", 19.4352, -99.1412),
			place(3, "Alameda", "naturaleza", 19.4361, -99.1445),
			place(4, "La Merced", "gastronomia", 19.4258, -99.1235),
			place(5, "Mercado Sonora", "compras", 19.4232, -99.1218),
			place(7, "Hotel Isla", "hotel", 19.4400, -99.1300),
		},
		profiles: map[int64]*model.Profile{
			1: {ID: 1, Name: "ana", Preferences: model.Preferences{Pace: "relaxed"}, BudgetRange: model.BudgetMedium},
		},
	}
	for _, e := range [][]model.Connection{
		both(1, 2, 900, 11),
		both(2, 3, 400, 5),
		both(1, 4, 1200, 15),
		both(4, 5, 350, 5),
		both(1, 3, 1300, 16),
	} {
		s.edges = append(s.edges, e...)
	}
	return s
}

var monday = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestOrchestrator(s Store) *Orchestrator {
	return New(s, WithClusterSeed(42), WithClock(func() time.Time { return monday }))
}

func TestGenerate_OptimizedDays(t *testing.T) {
	s := cityStore()
	plan, err := newTestOrchestrator(s).Generate(context.Background(), Request{
		ProfileID: 1,
		CenterID:  1,
		NumDays:   2,
		StartDate: monday,
	})
	require.NoError(t, err)

	assert.Equal(t, "it-1", plan.ID)
	assert.Equal(t, 1, s.persistedCount())
	assert.Equal(t, "Itinerario 2 días", plan.Name)
	assert.Equal(t, StatusDraft, plan.Status)
	assert.Equal(t, int64(1), plan.DestinationID)
	assert.Equal(t, int64(1), plan.StartPointID)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), plan.EndDate)
	assert.Equal(t, model.OptimizeBalanced, plan.Params.Mode)
	assert.Equal(t, DefaultRadiusKm, plan.Params.MaxRadiusKm)
	assert.Equal(t, DefaultMaxCandidates, plan.Params.MaxCandidates)

	require.Len(t, plan.Days, 2)
	assert.Equal(t, 4, plan.TotalAttractions)
	assert.Zero(t, plan.UnoptimizedDays)

	var dist float64
	for i, d := range plan.Days {
		assert.Equal(t, i+1, d.DayNumber)
		assert.Equal(t, monday.AddDate(0, 0, i).Truncate(24*time.Hour), d.Date)
		assert.True(t, d.Optimized)
		require.GreaterOrEqual(t, len(d.Stops), 3)
		assert.Equal(t, int64(1), d.Stops[0].AttractionID, "day starts at the center")
		assert.Equal(t, int64(1), d.Stops[len(d.Stops)-1].AttractionID, "day returns to the center")
		for j, st := range d.Stops {
			assert.Equal(t, j+1, st.Order)
			if st.AttractionID != 1 {
				assert.Equal(t, 90, st.VisitMinutes)
				assert.NotNil(t, st.Score)
			}
		}
		assert.NotEmpty(t, d.Segments)
		assert.Positive(t, d.TotalDistanceM)
		assert.Positive(t, d.OptimizationScore)
		dist += d.TotalDistanceM
	}
	assert.InDelta(t, dist, plan.TotalDistanceM, 0.01)
	assert.Positive(t, plan.AverageOptimizationScore)

	sum := plan.Summary()
	assert.Equal(t, 2, sum.NumDays)
	assert.Equal(t, 4, sum.TotalAttractions)
	assert.Equal(t, model.Round2(plan.TotalDistanceM/1000), sum.TotalDistanceKm)
}

func TestGenerate_DailyCapLimitsSelection(t *testing.T) {
	s := cityStore()
	s.profiles[1].Preferences.Pace = ""
	plan, err := newTestOrchestrator(s).Build(context.Background(), Request{
		ProfileID: 1,
		CenterID:  1,
		NumDays:   1,
		StartDate: monday,
	})
	require.NoError(t, err)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, DefaultDailyCap, plan.Days[0].AttractionsCount)
	assert.Zero(t, s.persistedCount(), "Build does not persist")
}

func TestGenerate_FallbackDaysWhenHotelIsolated(t *testing.T) {
	s := cityStore()
	hotel := int64(7)
	plan, err := newTestOrchestrator(s).Generate(context.Background(), Request{
		ProfileID: 1,
		CenterID:  1,
		NumDays:   2,
		StartDate: monday,
		HotelID:   &hotel,
	})
	require.NoError(t, err)

	assert.Equal(t, hotel, plan.StartPointID)
	assert.Equal(t, len(plan.Days), plan.UnoptimizedDays)
	assert.Zero(t, plan.AverageOptimizationScore)
	assert.Zero(t, plan.TotalDistanceM)
	assert.Equal(t, 4, plan.TotalAttractions)
	for _, d := range plan.Days {
		assert.False(t, d.Optimized)
		assert.Empty(t, d.Segments)
		assert.Zero(t, d.TotalDistanceM)
		assert.Zero(t, d.TotalMinutes)
		assert.Zero(t, d.TotalCost)
		assert.Len(t, d.Stops, d.AttractionsCount)
		for _, st := range d.Stops {
			assert.NotEqual(t, hotel, st.AttractionID)
		}
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	s := cityStore()
	s.edges = nil
	plan, err := newTestOrchestrator(s).Generate(context.Background(), Request{
		ProfileID: 1,
		CenterID:  1,
		NumDays:   3,
		StartDate: monday,
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Days)
	assert.Zero(t, plan.TotalAttractions)
}

func TestGenerate_InvalidInput(t *testing.T) {
	o := newTestOrchestrator(cityStore())
	ctx := context.Background()
	ok := Request{ProfileID: 1, CenterID: 1, NumDays: 1, StartDate: monday}

	bad := ok
	bad.NumDays = 0
	_, err := o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	bad = ok
	bad.Mode = "fastest"
	_, err = o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	bad = ok
	bad.StartDate = time.Time{}
	_, err = o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	bad = ok
	bad.ProfileID = 9
	_, err = o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, errMissing))

	bad = ok
	bad.CenterID = 99
	_, err = o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, graph.ErrDestinationNotFound))

	bad = ok
	hotel := int64(99)
	bad.HotelID = &hotel
	_, err = o.Generate(ctx, bad)
	assert.True(t, errors.Is(err, graph.ErrNodeNotFound))
}

func TestGenerate_DoesNotMutateStoredProfile(t *testing.T) {
	s := cityStore()
	before := s.profiles[1].Clone()
	_, err := newTestOrchestrator(s).Generate(context.Background(), Request{ProfileID: 1, CenterID: 1, NumDays: 2, StartDate: monday})
	require.NoError(t, err)
	assert.Equal(t, before, *s.profiles[1])
}

func TestGenerate_SeededRunsAreReproducible(t *testing.T) {
	req := Request{ProfileID: 1, CenterID: 1, NumDays: 2, StartDate: monday}
	a, err := newTestOrchestrator(cityStore()).Build(context.Background(), req)
	require.NoError(t, err)
	b, err := newTestOrchestrator(cityStore()).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
