package scoring

import (
	"sort"
	"strings"
)

// Provenance tags. Every resolved type records which tier produced it;
// auditing and tests depend on the tag, so it is structural, never inferred
// after the fact.
const (
	HowPair      = "pair"
	HowDominant  = "dominant"
	HowRule      = "rule"
	HowHeuristic = "heuristic"
)

// TypeInfo is one categorical type entry from the mapping data.
type TypeInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// TypeRule is one ordered rule. Empty constraints match anything; a rule
// with neither constraint is a catch-all.
type TypeRule struct {
	Dominant  string   `json:"dominant,omitempty"`
	Auxiliary string   `json:"auxiliary,omitempty"`
	Info      TypeInfo `json:"info"`
}

// TypeMap is the normalized mapping data for the table tiers. Any or all
// parts may be empty; absence only narrows which tiers are reachable.
type TypeMap struct {
	Pairs    map[string]TypeInfo `json:"pairs,omitempty"`
	Dominant map[string]TypeInfo `json:"dominant,omitempty"`
	Rules    []TypeRule          `json:"rules,omitempty"`
}

// TypeRecord is the resolver's outcome: a type code plus the provenance tag
// naming the tier that produced it.
type TypeRecord struct {
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	How         string `json:"how"`
}

// RankDims orders the dimension indices by pct descending; ties break by
// ascending index, which makes the ranking total and deterministic.
func RankDims(scores [NumDims]FunctionScore) [NumDims]int {
	var order [NumDims]int
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order[:], func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a].Pct != scores[b].Pct {
			return scores[a].Pct > scores[b].Pct
		}
		return a < b
	})
	return order
}

// resolveInput carries everything a tier may consult.
type resolveInput struct {
	domKey string
	auxKey string
	axes   map[string]AxisScore
	tm     TypeMap
}

// resolverStrategy pairs a provenance tag with one tier's lookup.
type resolverStrategy struct {
	how   string
	apply func(in resolveInput) (TypeInfo, bool)
}

// resolverStrategies is the cascade, in order. The first tier returning a
// match wins. The heuristic is terminal and never misses.
var resolverStrategies = []resolverStrategy{
	{how: HowPair, apply: resolveByPair},
	{how: HowDominant, apply: resolveByDominant},
	{how: HowRule, apply: resolveByRule},
	{how: HowHeuristic, apply: resolveByHeuristic},
}

// ResolveType runs the cascade over a finished scoring run.
func ResolveType(scores [NumDims]FunctionScore, axes map[string]AxisScore, tm TypeMap) TypeRecord {
	order := RankDims(scores)
	in := resolveInput{
		domKey: scores[order[0]].Key,
		auxKey: scores[order[1]].Key,
		axes:   axes,
		tm:     tm,
	}
	for _, s := range resolverStrategies {
		if info, ok := s.apply(in); ok {
			return TypeRecord{
				Code:        info.Code,
				Name:        info.Name,
				Description: info.Description,
				How:         s.how,
			}
		}
	}
	// Unreachable: the heuristic tier always succeeds.
	return TypeRecord{How: HowHeuristic}
}

// resolveByPair tries (dominant, auxiliary) and then the reversed pair, so a
// table authored in either order still hits.
func resolveByPair(in resolveInput) (TypeInfo, bool) {
	if len(in.tm.Pairs) == 0 {
		return TypeInfo{}, false
	}
	if info, ok := in.tm.Pairs[PairKey(in.domKey, in.auxKey)]; ok {
		return info, true
	}
	if info, ok := in.tm.Pairs[PairKey(in.auxKey, in.domKey)]; ok {
		return info, true
	}
	return TypeInfo{}, false
}

func resolveByDominant(in resolveInput) (TypeInfo, bool) {
	info, ok := in.tm.Dominant[strings.ToLower(in.domKey)]
	return info, ok
}

func resolveByRule(in resolveInput) (TypeInfo, bool) {
	for _, r := range in.tm.Rules {
		if r.Dominant != "" && !strings.EqualFold(r.Dominant, in.domKey) {
			continue
		}
		if r.Auxiliary != "" && !strings.EqualFold(r.Auxiliary, in.auxKey) {
			continue
		}
		return r.Info, true
	}
	return TypeInfo{}, false
}

// resolveByHeuristic derives a four-letter code from the axis percentages
// alone: the positive letter at pct >= 0.5, ties included. It needs no
// mapping data, which is what makes it a safe terminal tier.
func resolveByHeuristic(in resolveInput) (TypeInfo, bool) {
	var code strings.Builder
	for _, def := range AxisDefs() {
		letter := def.Positive
		if ax, ok := in.axes[def.Name]; ok && ax.Pct < 0.5 {
			letter = def.Negative
		}
		code.WriteString(letter)
	}
	return TypeInfo{Code: code.String()}, true
}

// PairKey builds the canonical lookup key for a (dominant, auxiliary) pair.
func PairKey(dom, aux string) string {
	return strings.ToLower(strings.TrimSpace(dom)) + "+" + strings.ToLower(strings.TrimSpace(aux))
}

// canonPairKey rewrites an authored pair key into canonical form. Any
// non-alphanumeric run separates the halves; a bare four-letter key such as
// "NiTe" splits down the middle.
func canonPairKey(raw string) string {
	parts := splitAlnum(raw)
	if len(parts) == 1 && len(parts[0]) == 4 {
		parts = []string{parts[0][:2], parts[0][2:]}
	}
	if len(parts) != 2 {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return PairKey(parts[0], parts[1])
}

func splitAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		default:
			return true
		}
	})
}
