package scoring

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Weight tables are authored out-of-band, in multiple uncoordinated files,
// and arrive in several inconsistent shapes for the same logical data. This
// file is the single point that makes the rest of the engine shape-agnostic:
// every accepted form canonicalizes to Weights before anything downstream
// sees it.
//
// Accepted per-item entries:
//
//	[3, 0, 1.5, ...]                          vector, side A implied
//	{"0": 3, "4": 1.5}                        index-keyed vector, side A implied
//	{"Te": 3, "Se": 1.5}                      symbol-keyed vector, side A implied
//	{"A": <vector>, "B": <vector>}            side-alias object; aliases a/b,
//	                                          pos/neg, positive/negative,
//	                                          agree/disagree
//	{"side": "A", "weights": <vector>}        side record; merges into the row
//	[{"side": "A", ...}, {"side": "B", ...}]  list of side records
//
// The top level is either an object keyed by item id or an array of records
// carrying their own id ("id", "item", "item_id" or "itemId"). Any other top
// level normalizes to an empty table. Dimensions absent from a vector are
// weight 0; two records for the same item combine per side rather than
// overwrite.

// WeightRow holds the canonical per-item weight vectors: A is evidence
// contributed by agreeing with the item, B by disagreeing.
type WeightRow struct {
	A [NumDims]float64 `json:"a"`
	B [NumDims]float64 `json:"b"`
}

// Side returns the vector selected by a reduced answer direction.
func (r WeightRow) Side(direction int) [NumDims]float64 {
	if direction < 0 {
		return r.B
	}
	return r.A
}

// Ceiling returns the item's own per-dimension ceiling, max(A[i], B[i]).
func (r WeightRow) Ceiling(i int) float64 {
	if r.B[i] > r.A[i] {
		return r.B[i]
	}
	return r.A[i]
}

// Weights is the canonical weight table: item id to weight row.
type Weights map[string]WeightRow

// Row looks up the weight row for an item.
func (w Weights) Row(id string) (WeightRow, bool) {
	row, ok := w[id]
	return row, ok
}

// NormalizeWeights canonicalizes an authored weight table of any accepted
// shape. keyIndex resolves symbolic dimension keys (see KeyIndex). Unknown
// shapes never fail: they simply contribute nothing.
func NormalizeWeights(raw any, keyIndex map[string]int) Weights {
	out := Weights{}
	switch t := coerce(raw).(type) {
	case map[string]any:
		for id, entry := range t {
			applyEntry(out, strings.TrimSpace(id), entry, keyIndex)
		}
	case []any:
		for _, el := range t {
			m, ok := asMap(el)
			if !ok {
				continue
			}
			id, rest := splitItemID(m)
			if id == "" {
				continue
			}
			applyEntry(out, id, rest, keyIndex)
		}
	}
	return out
}

const (
	sideA = byte('A')
	sideB = byte('B')
)

// contribution is one canonicalized half of a weight row.
type contribution struct {
	side byte
	vec  [NumDims]float64
}

// entryDetector pairs a shape predicate with its canonicalizer. The table is
// tried in fixed priority order; the first match wins. Explicit over clever:
// each detector is testable on its own.
type entryDetector struct {
	name     string
	match    func(v any) bool
	contribs func(v any, keyIndex map[string]int) []contribution
}

// entryDetectors: side-bearing shapes must outrank the plain vector shapes,
// since every side object is also a map that the symbol-keyed vector detector
// would happily misread.
var entryDetectors = []entryDetector{
	{name: "side-record", match: isSideRecord, contribs: sideRecordContribs},
	{name: "weights-record", match: isWeightsRecord, contribs: weightsRecordContribs},
	{name: "side-alias-object", match: isSideAliasObject, contribs: sideAliasContribs},
	{name: "record-list", match: isRecordList, contribs: recordListContribs},
	{name: "vector", match: isVectorShape, contribs: vectorContribs},
}

func applyEntry(w Weights, id string, entry any, keyIndex map[string]int) {
	contribs := entryContribs(entry, keyIndex)
	if len(contribs) == 0 {
		return
	}
	row := w[id]
	for _, c := range contribs {
		if c.side == sideB {
			row.B = c.vec
		} else {
			row.A = c.vec
		}
	}
	w[id] = row
}

func entryContribs(entry any, keyIndex map[string]int) []contribution {
	entry = coerce(entry)
	for _, d := range entryDetectors {
		if d.match(entry) {
			return d.contribs(entry, keyIndex)
		}
	}
	return nil
}

// --- entry detectors ---

func isSideRecord(v any) bool {
	m, ok := asMap(v)
	if !ok {
		return false
	}
	_, hasSide := m["side"]
	_, hasWeights := m["weights"]
	return hasSide && hasWeights
}

func sideRecordContribs(v any, keyIndex map[string]int) []contribution {
	m, _ := asMap(v)
	token, _ := m["side"].(string)
	side, ok := sideFromToken(token)
	if !ok {
		return nil
	}
	vec, ok := asVector(m["weights"], keyIndex)
	if !ok {
		return nil
	}
	return []contribution{{side: side, vec: vec}}
}

func isWeightsRecord(v any) bool {
	m, ok := asMap(v)
	if !ok {
		return false
	}
	_, hasSide := m["side"]
	_, hasWeights := m["weights"]
	return hasWeights && !hasSide
}

// weightsRecordContribs handles {"weights": <vector>} with no side marker:
// the vector is the agree side, like a bare vector entry.
func weightsRecordContribs(v any, keyIndex map[string]int) []contribution {
	m, _ := asMap(v)
	vec, ok := asVector(m["weights"], keyIndex)
	if !ok {
		return nil
	}
	return []contribution{{side: sideA, vec: vec}}
}

func isSideAliasObject(v any) bool {
	m, ok := asMap(v)
	if !ok {
		return false
	}
	for k := range m {
		if _, ok := sideFromToken(k); ok {
			return true
		}
	}
	return false
}

func sideAliasContribs(v any, keyIndex map[string]int) []contribution {
	m, _ := asMap(v)
	var out []contribution
	// Both halves of one alias pair may be present; absent halves simply
	// contribute nothing (the row keeps whatever that side already had).
	for _, k := range sortedKeys(m) {
		side, ok := sideFromToken(k)
		if !ok {
			continue
		}
		vec, ok := asVector(m[k], keyIndex)
		if !ok {
			continue
		}
		out = append(out, contribution{side: side, vec: vec})
	}
	return out
}

func isRecordList(v any) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, el := range list {
		if el == nil {
			continue
		}
		_, isM := asMap(el)
		return isM
	}
	return false
}

func recordListContribs(v any, keyIndex map[string]int) []contribution {
	list, _ := v.([]any)
	var out []contribution
	for _, el := range list {
		out = append(out, entryContribs(el, keyIndex)...)
	}
	return out
}

func isVectorShape(v any) bool {
	switch v.(type) {
	case []any:
		return true
	default:
		_, ok := asMap(v)
		return ok
	}
}

func vectorContribs(v any, keyIndex map[string]int) []contribution {
	vec, ok := asVector(v, keyIndex)
	if !ok {
		return nil
	}
	return []contribution{{side: sideA, vec: vec}}
}

// --- vector detectors ---

type vectorDetector struct {
	name  string
	match func(v any) bool
	build func(v any, keyIndex map[string]int) [NumDims]float64
}

var vectorDetectors = []vectorDetector{
	{name: "list", match: isVectorList, build: vectorFromList},
	{name: "index-keyed", match: isIndexKeyedMap, build: vectorFromIndexMap},
	{name: "symbol-keyed", match: isSymbolKeyedMap, build: vectorFromSymbolMap},
}

func asVector(v any, keyIndex map[string]int) ([NumDims]float64, bool) {
	v = coerce(v)
	for _, d := range vectorDetectors {
		if d.match(v) {
			return d.build(v, keyIndex), true
		}
	}
	return [NumDims]float64{}, false
}

func isVectorList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// vectorFromList reads an ordered list. Short lists leave the remaining
// dimensions at 0; anything past the eighth entry is ignored.
func vectorFromList(v any, _ map[string]int) [NumDims]float64 {
	list, _ := v.([]any)
	var vec [NumDims]float64
	for i := 0; i < len(list) && i < NumDims; i++ {
		if f, ok := toFloat(list[i]); ok {
			vec[i] = clampWeight(f)
		}
	}
	return vec
}

func isIndexKeyedMap(v any) bool {
	m, ok := asMap(v)
	if !ok || len(m) == 0 {
		return false
	}
	for k := range m {
		if _, err := strconv.Atoi(strings.TrimSpace(k)); err != nil {
			return false
		}
	}
	return true
}

func vectorFromIndexMap(v any, _ map[string]int) [NumDims]float64 {
	m, _ := asMap(v)
	var vec [NumDims]float64
	for k, raw := range m {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || i < 0 || i >= NumDims {
			continue
		}
		if f, ok := toFloat(raw); ok {
			vec[i] = clampWeight(f)
		}
	}
	return vec
}

func isSymbolKeyedMap(v any) bool {
	_, ok := asMap(v)
	return ok
}

// vectorFromSymbolMap resolves keys through the dimension index;
// unresolvable keys are skipped, absent keys are weight 0.
func vectorFromSymbolMap(v any, keyIndex map[string]int) [NumDims]float64 {
	m, _ := asMap(v)
	var vec [NumDims]float64
	for k, raw := range m {
		i, ok := ResolveDim(keyIndex, k)
		if !ok {
			continue
		}
		if f, ok := toFloat(raw); ok {
			vec[i] = clampWeight(f)
		}
	}
	return vec
}

// --- plumbing ---

// sideFromToken maps every accepted side alias to its canonical half.
func sideFromToken(s string) (byte, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "pos", "positive", "agree":
		return sideA, true
	case "b", "neg", "negative", "disagree":
		return sideB, true
	default:
		return 0, false
	}
}

// splitItemID extracts the item id from an array-form record and returns the
// record without its id keys, so the remainder can run through the entry
// detectors unchanged.
func splitItemID(m map[string]any) (string, map[string]any) {
	id := ""
	rest := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "id", "item", "item_id", "itemId":
			if id == "" {
				if s, ok := v.(string); ok {
					id = strings.TrimSpace(s)
				}
			}
		default:
			rest[k] = v
		}
	}
	return id, rest
}

// asMap views any decoded mapping as map[string]any. yaml.v3 hands back
// map[string]any for string keys but falls back to map[any]any when a key is
// numeric (for example unquoted "0:" keys in an index-keyed vector), so both
// forms must be accepted.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func coerce(v any) any {
	if m, ok := v.(map[any]any); ok {
		converted, _ := asMap(m)
		return converted
	}
	return v
}

// toFloat accepts every numeric representation the json and yaml decoders
// produce, plus numeric strings, since authors quote numbers inconsistently.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// clampWeight enforces the WeightRow invariant: entries are non-negative
// reals. Negative authored values would corrupt the per-item ceilings, so
// they floor at zero here and nowhere else.
func clampWeight(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
