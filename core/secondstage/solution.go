package secondstage

// Duals holds the row duals of a restricted master solve. Bound duals are
// keyed by path index.
type Duals struct {
	Tail  []float64
	Leg   []float64
	Delay []float64
	Bound map[int]float64
	Risk  float64
}

// Solution is a solved restricted master problem. Y is indexed like
// Builder.Paths.
type Solution struct {
	Objective float64
	Y         [][]float64
	D         []float64
	V         float64
	Duals     *Duals
}
