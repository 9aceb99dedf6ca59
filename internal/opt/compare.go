package opt

// Comparison is one heuristic's line in a Report.
type Comparison struct {
	Algorithm Algorithm `json:"algorithm"`
	Distance  float64   `json:"distance"`
	Vehicles  int       `json:"vehicles"`
	Routes    [][]int   `json:"routes"`
	// GapPct is the excess over the reference distance in percent; zero
	// without a reference.
	GapPct float64 `json:"gapPct,omitempty"`
	Result Result  `json:"-"`
}

// Report puts every heuristic next to an optional reference solution.
type Report struct {
	Reference         *Solution    `json:"reference,omitempty"`
	ReferenceDistance float64      `json:"referenceDistance,omitempty"`
	Heuristics        []Comparison `json:"heuristics"`
}

// NewReport starts a Report for p. A non-nil reference must be feasible for
// p; it is scored and later heuristics get their gap to it.
func NewReport(p *Problem, reference *Solution) (Report, error) {
	rep := Report{Heuristics: []Comparison{}}
	if reference == nil {
		return rep, nil
	}
	if err := Verify(*reference, p); err != nil {
		return Report{}, err
	}
	d, err := TotalDistance(*reference, p)
	if err != nil {
		return Report{}, err
	}
	rep.Reference = reference
	rep.ReferenceDistance = d
	return rep, nil
}

// Add appends the line for one construction result.
func (rep *Report) Add(res Result) {
	c := Comparison{
		Algorithm: res.Algorithm,
		Distance:  res.Distance,
		Vehicles:  res.Solution.Vehicles(),
		Routes:    res.Solution.Lists(),
		Result:    res,
	}
	if rep.Reference != nil && rep.ReferenceDistance > 0 {
		c.GapPct = (res.Distance - rep.ReferenceDistance) / rep.ReferenceDistance * 100
	}
	rep.Heuristics = append(rep.Heuristics, c)
}

// Compare runs every registered heuristic on p. When reference is non-nil it
// is scored too and each heuristic gets its gap to it. The reference must be
// feasible for p.
func Compare(p *Problem, reference *Solution, opts Options) (Report, error) {
	return CompareAlgorithms(p, reference, opts, Algorithms())
}

// CompareAlgorithms is Compare restricted to algos, in the given order.
func CompareAlgorithms(p *Problem, reference *Solution, opts Options, algos []Algorithm) (Report, error) {
	rep, err := NewReport(p, reference)
	if err != nil {
		return Report{}, err
	}
	for _, algo := range algos {
		res, err := Construct(algo, p, opts)
		if err != nil {
			return Report{}, err
		}
		rep.Add(res)
	}
	return rep, nil
}
