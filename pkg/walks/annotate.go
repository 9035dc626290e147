package walks

// Annotation classifies a set of walks (normally one source/target group)
// by the classic optimality criteria. Every bucket is tie-complete: each
// holds all walks achieving the optimum, not an arbitrary representative.
//
// The combined buckets refine a primary bucket by a secondary criterion:
// ShortestFastest holds the minimum-duration walks among the shortest
// ones, HeaviestFastest the minimum-duration walks among the heaviest,
// and so on.
type Annotation struct {
	Shortest []Walk // fewest hops
	Fastest  []Walk // smallest first-to-last duration
	Heaviest []Walk // largest total weight
	Foremost []Walk // earliest arrival instant

	ShortestFastest  []Walk
	FastestShortest  []Walk
	ShortestHeaviest []Walk
	HeaviestShortest []Walk
	FastestHeaviest  []Walk
	HeaviestFastest  []Walk
}

func arrival(w Walk) int {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].T
}

func selectBy(ws []Walk, metric func(Walk) int, wantMax bool) []Walk {
	if len(ws) == 0 {
		return nil
	}
	best := metric(ws[0])
	for _, w := range ws[1:] {
		m := metric(w)
		if (wantMax && m > best) || (!wantMax && m < best) {
			best = m
		}
	}
	var out []Walk
	for _, w := range ws {
		if metric(w) == best {
			out = append(out, w)
		}
	}
	return out
}

// Annotate classifies walks by length, duration, weight and arrival. An
// empty input yields an Annotation with every bucket empty.
func Annotate(ws []Walk) *Annotation {
	a := &Annotation{
		Shortest: selectBy(ws, WalkLength, false),
		Fastest:  selectBy(ws, WalkDuration, false),
		Heaviest: selectBy(ws, WalkWeight, true),
		Foremost: selectBy(ws, arrival, false),
	}
	a.ShortestFastest = selectBy(a.Shortest, WalkDuration, false)
	a.FastestShortest = selectBy(a.Fastest, WalkLength, false)
	a.ShortestHeaviest = selectBy(a.Shortest, WalkWeight, true)
	a.HeaviestShortest = selectBy(a.Heaviest, WalkLength, false)
	a.FastestHeaviest = selectBy(a.Fastest, WalkWeight, true)
	a.HeaviestFastest = selectBy(a.Heaviest, WalkDuration, false)
	return a
}
