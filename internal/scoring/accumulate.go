package scoring

// FunctionScore is one dimension's outcome for a single scoring run. Raw and
// Max are the running evidence sum and its per-item ceiling sum; Pct is
// raw/max scaled to 0..100. Instances are rebuilt on every run, never reused.
type FunctionScore struct {
	Idx int     `json:"idx"`
	Key string  `json:"key"`
	Raw float64 `json:"raw"`
	Max float64 `json:"max"`
	Pct float64 `json:"pct"`
}

// Per-item diagnostic statuses. Neutral and unanswered both contribute
// nothing, but for different reasons, and callers debugging a sheet need to
// tell them apart.
const (
	DiagCounted    = "counted"
	DiagNeutral    = "neutral"
	DiagUnanswered = "unanswered"
	DiagNoWeights  = "no-weights"
)

// ItemDiag records what happened to one submitted answer.
type ItemDiag struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Direction int     `json:"direction,omitempty"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Side      string  `json:"side,omitempty"`
}

// maxEpsilon floors the pct denominator; a dimension no item touched divides
// 0 by this and lands at pct 0 instead of faulting.
const maxEpsilon = 1e-9

// Accumulate folds an answer sheet into the eight dimension scores.
//
// Each answered, non-neutral item with a weight row contributes
// magnitude*vec[i] to raw and the item's own ceiling max(A[i], B[i]) to max.
// The ceiling is per item, not a global constant: items that only weakly
// evidence a dimension raise its denominator by the same small amount, which
// keeps pct comparable across dimensions with uneven item coverage.
//
// Missing weight rows are data-quality conditions, not errors; they skip the
// item and show up in the diagnostics. used counts the contributing items,
// which multi-part merge policies upstream need.
func Accumulate(answers []AnswerRecord, weights Weights, scale ResponseScale, funcs []FuncMeta) (byFunction [NumDims]FunctionScore, perItem []ItemDiag, used int) {
	if len(funcs) != NumDims {
		funcs = DefaultFuncMeta()
	}

	var raw, max [NumDims]float64
	perItem = make([]ItemDiag, 0, len(answers))

	for _, ans := range answers {
		if ans.Value == nil {
			perItem = append(perItem, ItemDiag{ID: ans.ID, Status: DiagUnanswered})
			continue
		}
		sig := Reduce(Centered(scale, *ans.Value))
		if sig.Direction == 0 {
			perItem = append(perItem, ItemDiag{ID: ans.ID, Status: DiagNeutral})
			continue
		}
		row, ok := weights.Row(ans.ID)
		if !ok {
			perItem = append(perItem, ItemDiag{
				ID:        ans.ID,
				Status:    DiagNoWeights,
				Direction: sig.Direction,
				Magnitude: sig.Magnitude,
			})
			continue
		}

		vec := row.Side(sig.Direction)
		side := "A"
		if sig.Direction < 0 {
			side = "B"
		}
		for i := 0; i < NumDims; i++ {
			raw[i] += sig.Magnitude * vec[i]
			max[i] += row.Ceiling(i)
		}
		used++
		perItem = append(perItem, ItemDiag{
			ID:        ans.ID,
			Status:    DiagCounted,
			Direction: sig.Direction,
			Magnitude: sig.Magnitude,
			Side:      side,
		})
	}

	for i := 0; i < NumDims; i++ {
		denom := max[i]
		if denom < maxEpsilon {
			denom = maxEpsilon
		}
		pct := raw[i] / denom
		if pct < 0 {
			pct = 0
		}
		if pct > 1 {
			pct = 1
		}
		byFunction[i] = FunctionScore{
			Idx: i,
			Key: funcs[i].Key,
			Raw: raw[i],
			Max: max[i],
			Pct: pct * 100,
		}
	}
	return byFunction, perItem, used
}
