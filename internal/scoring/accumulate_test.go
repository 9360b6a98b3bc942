package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func diagByID(diags []ItemDiag, id string) (ItemDiag, bool) {
	for _, d := range diags {
		if d.ID == id {
			return d, true
		}
	}
	return ItemDiag{}, false
}

// An item weighing both sides equally on a dimension contributes that value
// to the ceiling once, not twice: the denominator is the item's own maximum,
// not the sum of its sides.
func TestAccumulate_CeilingIsMaxNotSum(t *testing.T) {
	weights := Weights{
		"q1": {
			A: [NumDims]float64{DimTe: 2},
			B: [NumDims]float64{DimTe: 2},
		},
	}
	answers := []AnswerRecord{{ID: "q1", Value: fp(2)}}
	byFunc, _, used := Accumulate(answers, weights, ScaleCentered, nil)

	assert.Equal(t, 2.0, byFunc[DimTe].Max, "ceiling is max(A,B), not A+B")
	assert.Equal(t, 2.0, byFunc[DimTe].Raw)
	assert.Equal(t, 100.0, byFunc[DimTe].Pct)
	assert.Equal(t, 1, used)
}

func TestAccumulate_NeutralVsUnanswered(t *testing.T) {
	weights := Weights{
		"q1": {A: [NumDims]float64{DimFe: 1}},
		"q2": {A: [NumDims]float64{DimFe: 1}},
	}
	answers := []AnswerRecord{
		{ID: "q1", Value: fp(0)},
		{ID: "q2", Value: nil},
	}
	byFunc, perItem, used := Accumulate(answers, weights, ScaleCentered, nil)

	require.Len(t, perItem, 2)
	neutral, ok := diagByID(perItem, "q1")
	require.True(t, ok)
	unanswered, ok := diagByID(perItem, "q2")
	require.True(t, ok)
	assert.Equal(t, DiagNeutral, neutral.Status)
	assert.Equal(t, DiagUnanswered, unanswered.Status)

	assert.Equal(t, 0, used)
	for i := 0; i < NumDims; i++ {
		assert.Zero(t, byFunc[i].Raw, "dim %d", i)
		assert.Zero(t, byFunc[i].Max, "dim %d", i)
		assert.Zero(t, byFunc[i].Pct, "dim %d", i)
	}
}

func TestAccumulate_MissingWeightRow(t *testing.T) {
	weights := Weights{"q1": {A: [NumDims]float64{DimTe: 1}}}
	answers := []AnswerRecord{
		{ID: "q1", Value: fp(2)},
		{ID: "ghost", Value: fp(2)},
	}
	byFunc, perItem, used := Accumulate(answers, weights, ScaleCentered, nil)

	d, ok := diagByID(perItem, "ghost")
	require.True(t, ok)
	assert.Equal(t, DiagNoWeights, d.Status)
	assert.Equal(t, 1, d.Direction, "the reduced signal is still reported for debugging")

	assert.Equal(t, 1, used, "missing weights skip the item, not the run")
	assert.Equal(t, 100.0, byFunc[DimTe].Pct)
}

func TestAccumulate_DisagreePicksSideB(t *testing.T) {
	weights := Weights{
		"q1": {
			A: [NumDims]float64{DimTe: 1},
			B: [NumDims]float64{DimTi: 2},
		},
	}
	answers := []AnswerRecord{{ID: "q1", Value: fp(-2)}}
	byFunc, perItem, _ := Accumulate(answers, weights, ScaleCentered, nil)

	d, _ := diagByID(perItem, "q1")
	assert.Equal(t, "B", d.Side)
	assert.Equal(t, 2.0, byFunc[DimTi].Raw)
	assert.Zero(t, byFunc[DimTe].Raw)
	// Both dimensions the item touches gain their ceilings regardless of the
	// chosen side.
	assert.Equal(t, 1.0, byFunc[DimTe].Max)
	assert.Equal(t, 2.0, byFunc[DimTi].Max)
	assert.Equal(t, 100.0, byFunc[DimTi].Pct)
	assert.Zero(t, byFunc[DimTe].Pct)
}

func TestAccumulate_MildResponseHalves(t *testing.T) {
	weights := Weights{"q1": {A: [NumDims]float64{DimNe: 4}}}
	answers := []AnswerRecord{{ID: "q1", Value: fp(1)}}
	byFunc, _, _ := Accumulate(answers, weights, ScaleCentered, nil)

	assert.Equal(t, 2.0, byFunc[DimNe].Raw, "magnitude 0.5 scales the vector")
	assert.Equal(t, 4.0, byFunc[DimNe].Max, "the ceiling never scales")
	assert.Equal(t, 50.0, byFunc[DimNe].Pct)
}

func TestAccumulate_SheetScaleApplied(t *testing.T) {
	weights := Weights{"q1": {A: [NumDims]float64{DimSi: 1}}}
	answers := []AnswerRecord{{ID: "q1", Value: fp(5)}}
	byFunc, _, used := Accumulate(answers, weights, ScaleOneToFive, nil)

	assert.Equal(t, 1, used)
	assert.Equal(t, 100.0, byFunc[DimSi].Pct, "a raw 5 on the 1..5 scale is a strong agree")
}

func TestAccumulate_PctStaysBounded(t *testing.T) {
	weights := Weights{
		"q1": {A: [NumDims]float64{DimTe: 0.3, DimFi: 1.1}, B: [NumDims]float64{DimTe: 0.7}},
		"q2": {A: [NumDims]float64{DimTe: 2.5}, B: [NumDims]float64{DimFi: 0.4}},
		"q3": {A: [NumDims]float64{DimNi: 0.9}},
	}
	answers := []AnswerRecord{
		{ID: "q1", Value: fp(2)},
		{ID: "q2", Value: fp(-1)},
		{ID: "q3", Value: fp(1)},
	}
	byFunc, _, _ := Accumulate(answers, weights, ScaleCentered, nil)
	for i := 0; i < NumDims; i++ {
		assert.GreaterOrEqual(t, byFunc[i].Pct, 0.0, "dim %d", i)
		assert.LessOrEqual(t, byFunc[i].Pct, 100.0, "dim %d", i)
	}
}

func TestAccumulate_KeysFollowFuncMeta(t *testing.T) {
	funcs := DefaultFuncMeta()
	funcs[DimTe].Key = "ET"
	byFunc, _, _ := Accumulate(nil, Weights{}, ScaleCentered, funcs)
	assert.Equal(t, "ET", byFunc[DimTe].Key)
	assert.Equal(t, "Ti", byFunc[DimTi].Key)
}
