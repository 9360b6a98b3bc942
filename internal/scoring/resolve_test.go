package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresWithPct(pct map[int]float64) [NumDims]FunctionScore {
	var out [NumDims]FunctionScore
	funcs := DefaultFuncMeta()
	for i := 0; i < NumDims; i++ {
		out[i] = FunctionScore{Idx: i, Key: funcs[i].Key, Pct: pct[i], Raw: pct[i]}
	}
	return out
}

func TestRankDims_TiesBreakByIndex(t *testing.T) {
	order := RankDims(scoresWithPct(map[int]float64{
		DimNi: 80,
		DimTe: 80,
		DimSe: 90,
	}))
	assert.Equal(t, DimSe, order[0])
	assert.Equal(t, DimTe, order[1], "equal pct ranks the lower index first")
	assert.Equal(t, DimNi, order[2])
	assert.Equal(t, DimTi, order[3], "the all-zero tail keeps index order")
}

// A populated pair table must win even when the dominant table would also
// match; provenance says which tier fired.
func TestResolveType_PairOutranksDominant(t *testing.T) {
	scores := scoresWithPct(map[int]float64{DimNi: 90, DimTe: 80})
	tm := TypeMap{
		Pairs:    map[string]TypeInfo{PairKey("Ni", "Te"): {Code: "INTJ", Name: "Strategist"}},
		Dominant: map[string]TypeInfo{"ni": {Code: "IN-DOM"}},
	}
	rec := ResolveType(scores, nil, tm)
	assert.Equal(t, "INTJ", rec.Code)
	assert.Equal(t, "Strategist", rec.Name)
	assert.Equal(t, HowPair, rec.How)
}

func TestResolveType_PairMatchesEitherOrder(t *testing.T) {
	scores := scoresWithPct(map[int]float64{DimNi: 90, DimTe: 80})
	tm := TypeMap{
		Pairs: map[string]TypeInfo{PairKey("Te", "Ni"): {Code: "INTJ"}},
	}
	rec := ResolveType(scores, nil, tm)
	assert.Equal(t, "INTJ", rec.Code)
	assert.Equal(t, HowPair, rec.How)
}

func TestResolveType_DominantTier(t *testing.T) {
	scores := scoresWithPct(map[int]float64{DimFi: 70})
	tm := TypeMap{
		Dominant: map[string]TypeInfo{"fi": {Code: "xxFP"}},
	}
	rec := ResolveType(scores, nil, tm)
	assert.Equal(t, "xxFP", rec.Code)
	assert.Equal(t, HowDominant, rec.How)
}

func TestResolveType_RuleTier(t *testing.T) {
	scores := scoresWithPct(map[int]float64{DimSe: 95, DimFi: 85})
	tm := TypeMap{
		Rules: []TypeRule{
			{Dominant: "Se", Auxiliary: "Ti", Info: TypeInfo{Code: "WRONG"}},
			{Dominant: "se", Auxiliary: "fi", Info: TypeInfo{Code: "ESFP"}},
			{Info: TypeInfo{Code: "CATCH-ALL"}},
		},
	}
	rec := ResolveType(scores, nil, tm)
	assert.Equal(t, "ESFP", rec.Code, "first rule with matching constraints wins")
	assert.Equal(t, HowRule, rec.How)

	// With no constrained match the catch-all fires before the heuristic.
	scores = scoresWithPct(map[int]float64{DimNe: 95})
	rec = ResolveType(scores, nil, tm)
	assert.Equal(t, "CATCH-ALL", rec.Code)
	assert.Equal(t, HowRule, rec.How)
}

func TestResolveType_HeuristicFallback(t *testing.T) {
	axes := map[string]AxisScore{
		AxisEI: {Positive: "E", Negative: "I", Pct: 0.2},
		AxisNS: {Positive: "N", Negative: "S", Pct: 0.9},
		AxisTF: {Positive: "T", Negative: "F", Pct: 0.5},
		AxisJP: {Positive: "J", Negative: "P", Pct: 0.49},
	}
	rec := ResolveType(scoresWithPct(nil), axes, TypeMap{})
	assert.Equal(t, "INTP", rec.Code, "letters follow the axes; the 0.5 tie goes positive")
	assert.Equal(t, HowHeuristic, rec.How)
	assert.Empty(t, rec.Name)
}

func TestResolveType_HeuristicNeedsNoData(t *testing.T) {
	rec := ResolveType(scoresWithPct(nil), nil, TypeMap{})
	require.Len(t, rec.Code, 4)
	assert.Equal(t, "ENTJ", rec.Code, "absent axes read as ties and round positive")
	assert.Equal(t, HowHeuristic, rec.How)
}

func TestCanonPairKey_Separators(t *testing.T) {
	want := PairKey("Ni", "Te")
	for _, raw := range []string{"Ni+Te", "ni te", "NI/te", "ni,te", "ni--te", "NiTe", "nite"} {
		assert.Equal(t, want, canonPairKey(raw), "raw %q", raw)
	}
	// Keys that cannot split into two halves stay as-is, lowercased.
	assert.Equal(t, "nitefi", canonPairKey("NiTeFi"))
}
