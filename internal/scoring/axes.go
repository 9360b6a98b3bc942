package scoring

// AxisScore is one bipolar axis outcome. Pct is the positive pole's share of
// the combined raw evidence, in 0..1; 0.5 is a dead tie.
type AxisScore struct {
	Positive string  `json:"positive"`
	Negative string  `json:"negative"`
	Pct      float64 `json:"pct"`
}

// AggregateAxes groups the eight dimension scores into the four bipolar
// axes. Membership resolves through the symbolic key index, never through
// array position: weight authors and mapping authors are not guaranteed to
// share an ordering, so a key that fails to resolve contributes nothing
// rather than silently pulling the wrong dimension.
//
// A zero denominator (no evidence on either pole) lands at 0.5 so the
// type-resolution heuristic's tie rule still applies.
func AggregateAxes(scores [NumDims]FunctionScore, axes []AxisDef, keyIndex map[string]int) map[string]AxisScore {
	if axes == nil {
		axes = AxisDefs()
	}
	if keyIndex == nil {
		keyIndex = KeyIndex(DefaultFuncMeta())
	}

	out := make(map[string]AxisScore, len(axes))
	for _, def := range axes {
		pos := sumRaw(scores, def.PositiveKeys, keyIndex)
		neg := sumRaw(scores, def.NegativeKeys, keyIndex)
		pct := 0.5
		if total := pos + neg; total > 0 {
			pct = pos / total
		}
		out[def.Name] = AxisScore{
			Positive: def.Positive,
			Negative: def.Negative,
			Pct:      pct,
		}
	}
	return out
}

func sumRaw(scores [NumDims]FunctionScore, keys []string, keyIndex map[string]int) float64 {
	var sum float64
	for _, k := range keys {
		if i, ok := ResolveDim(keyIndex, k); ok {
			sum += scores[i].Raw
		}
	}
	return sum
}
