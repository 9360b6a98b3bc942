// Package scoring implements the assessment core: deterministic item
// sequencing, weight-schema normalization, answer reduction, per-dimension
// score accumulation, axis aggregation and type resolution.
package scoring

import "strings"

// The eight cognitive-function dimensions, in canonical index order.
// Everything that crosses a normalization boundary addresses dimensions by
// symbolic key, never by position; these indices exist only as the canonical
// internal layout (and as the deterministic tie-breaker when ranking).
const (
	DimTe = iota // extroverted thinking
	DimTi        // introverted thinking
	DimFe        // extroverted feeling
	DimFi        // introverted feeling
	DimSe        // extroverted sensing
	DimSi        // introverted sensing
	DimNe        // extroverted intuition
	DimNi        // introverted intuition

	NumDims = 8
)

// FuncMeta describes one scored dimension. A payload's mapping.funcs section
// may override names and descriptions (or even the symbolic keys, as long as
// the weight tables use the same ones).
type FuncMeta struct {
	Key         string `json:"key"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// DefaultFuncMeta returns the built-in metadata for the eight dimensions in
// canonical order. Callers get a fresh slice; the builtin table is never
// exposed for mutation.
func DefaultFuncMeta() []FuncMeta {
	out := make([]FuncMeta, NumDims)
	copy(out, builtinFuncMeta[:])
	return out
}

var builtinFuncMeta = [NumDims]FuncMeta{
	{Key: "Te", Name: "Extroverted Thinking", Description: "Organizes the outer world by measurable criteria: plans, metrics, decisions."},
	{Key: "Ti", Name: "Introverted Thinking", Description: "Builds internal frameworks of how things work; precision over consensus."},
	{Key: "Fe", Name: "Extroverted Feeling", Description: "Reads and tends the emotional field of a group; harmony and shared norms."},
	{Key: "Fi", Name: "Introverted Feeling", Description: "Evaluates against an inner scale of values; authenticity over approval."},
	{Key: "Se", Name: "Extroverted Sensing", Description: "Engages the concrete present; acts on what is immediately real."},
	{Key: "Si", Name: "Introverted Sensing", Description: "Compares the present against stored detail; continuity and reliability."},
	{Key: "Ne", Name: "Extroverted Intuition", Description: "Generates possibilities outward; connects unrelated ideas."},
	{Key: "Ni", Name: "Introverted Intuition", Description: "Converges on an underlying pattern; foresight from synthesis."},
}

// KeyIndex builds the dimension-key resolution map for a metadata set. Keys
// are stored lowercased so weight and mapping authors are free to disagree on
// casing; resolve lookups through ResolveDim.
func KeyIndex(funcs []FuncMeta) map[string]int {
	m := make(map[string]int, len(funcs))
	for i, f := range funcs {
		if i >= NumDims {
			break
		}
		if k := strings.ToLower(strings.TrimSpace(f.Key)); k != "" {
			m[k] = i
		}
	}
	return m
}

// ResolveDim resolves a dimension symbol case-insensitively against a
// KeyIndex map.
func ResolveDim(keyIndex map[string]int, key string) (int, bool) {
	idx, ok := keyIndex[strings.ToLower(strings.TrimSpace(key))]
	return idx, ok
}

// AxisDef groups dimensions into one bipolar axis. Membership is expressed by
// symbolic key and resolved through the active KeyIndex at aggregation time,
// so a payload with renamed keys keeps its axes intact as long as the eight
// canonical positions are covered.
type AxisDef struct {
	Name     string `json:"name"`
	Positive string `json:"positive"`
	Negative string `json:"negative"`
	// PositiveKeys and NegativeKeys are disjoint; for the JP axis they cover
	// only four of the eight dimensions (see Approximate).
	PositiveKeys []string `json:"positiveKeys"`
	NegativeKeys []string `json:"negativeKeys"`
	// Approximate marks an axis that does not partition all eight dimensions.
	// JP is derived from external judgment (Te, Fe) versus external
	// perception (Se, Ne) only; the true J/P split belongs to the type
	// mapping table, not to this composite.
	Approximate bool `json:"approximate,omitempty"`
}

// Axis names, used as keys in Result.Axes.
const (
	AxisEI = "EI"
	AxisNS = "NS"
	AxisTF = "TF"
	AxisJP = "JP"
)

// AxisDefs returns the four axis definitions in presentation order
// (EI, NS, TF, JP). The slice is freshly allocated on every call.
func AxisDefs() []AxisDef {
	return []AxisDef{
		{
			Name: AxisEI, Positive: "E", Negative: "I",
			PositiveKeys: []string{"Te", "Fe", "Se", "Ne"},
			NegativeKeys: []string{"Ti", "Fi", "Si", "Ni"},
		},
		{
			Name: AxisNS, Positive: "N", Negative: "S",
			PositiveKeys: []string{"Ne", "Ni"},
			NegativeKeys: []string{"Se", "Si"},
		},
		{
			Name: AxisTF, Positive: "T", Negative: "F",
			PositiveKeys: []string{"Te", "Ti"},
			NegativeKeys: []string{"Fe", "Fi"},
		},
		{
			Name: AxisJP, Positive: "J", Negative: "P",
			PositiveKeys: []string{"Te", "Fe"},
			NegativeKeys: []string{"Se", "Ne"},
			Approximate:  true,
		},
	}
}
