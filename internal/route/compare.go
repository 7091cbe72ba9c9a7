package route

import "github.com/rcliao/itinerary/internal/model"

// Comparison summarizes one mode's route between the same two attractions.
type Comparison struct {
	Mode              model.OptimizationMode `json:"mode"`
	Found             bool                   `json:"path_found"`
	TotalDistanceM    float64                `json:"total_distance_meters"`
	TotalMinutes      int                    `json:"total_time_minutes"`
	TotalCost         float64                `json:"total_cost"`
	OptimizationScore float64                `json:"optimization_score"`
	NodesExplored     int                    `json:"nodes_explored"`
	AttractionsCount  int                    `json:"attractions_count"`
}

// Compare runs FindPath with the euclidean heuristic once per mode, in
// model.AllModes order.
func (o *Optimizer) Compare(start, end int64, scores map[int64]float64) ([]Comparison, error) {
	out := make([]Comparison, 0, len(model.AllModes))
	for _, mode := range model.AllModes {
		r, err := o.FindPath(start, end, mode, Euclidean, scores)
		if err != nil {
			return nil, err
		}
		out = append(out, Comparison{
			Mode:              mode,
			Found:             r.Found,
			TotalDistanceM:    r.TotalDistanceM,
			TotalMinutes:      r.TotalMinutes,
			TotalCost:         r.TotalCost,
			OptimizationScore: r.OptimizationScore,
			NodesExplored:     r.NodesExplored,
			AttractionsCount:  len(r.Attractions),
		})
	}
	return out, nil
}
