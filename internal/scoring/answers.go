package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrSheetMismatch rejects a positional sheet that cannot be aligned with
// the session's item order.
var ErrSheetMismatch = errors.New("positional sheet does not fit item order")

// AnswerRecord ties one response to an item. A nil Value is an unanswered
// item and contributes nothing to scoring.
type AnswerRecord struct {
	ID    string   `json:"id"`
	Value *float64 `json:"value"`
}

// AnswerSheet is the submitted response set. Two wire forms are accepted:
// an explicit record list (preferred, survives reordering and multi-part
// merges) and a bare positional array whose index is the position in the
// session's shuffled item order. Positional sheets can only be resolved
// against the permutation that produced them, so they require the seed.
type AnswerSheet struct {
	Records    []AnswerRecord
	Positional bool
}

// UnmarshalJSON picks the wire form by inspecting the document: an object is
// an id-keyed map, an array of objects is a record list, any other array is
// positional.
func (s *AnswerSheet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty answer sheet")
	}
	switch trimmed[0] {
	case '{':
		var byID map[string]*float64
		if err := json.Unmarshal(trimmed, &byID); err != nil {
			return fmt.Errorf("answer map: %w", err)
		}
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		s.Records = make([]AnswerRecord, 0, len(ids))
		for _, id := range ids {
			s.Records = append(s.Records, AnswerRecord{ID: id, Value: byID[id]})
		}
		s.Positional = false
		return nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return fmt.Errorf("answer list: %w", err)
		}
		if answerElemsAreRecords(elems) {
			s.Records = make([]AnswerRecord, 0, len(elems))
			for i, el := range elems {
				var rec AnswerRecord
				if err := json.Unmarshal(el, &rec); err != nil {
					return fmt.Errorf("answer record %d: %w", i, err)
				}
				s.Records = append(s.Records, rec)
			}
			s.Positional = false
			return nil
		}
		s.Records = make([]AnswerRecord, 0, len(elems))
		for i, el := range elems {
			var v *float64
			if err := json.Unmarshal(el, &v); err != nil {
				return fmt.Errorf("answer value %d: %w", i, err)
			}
			s.Records = append(s.Records, AnswerRecord{Value: v})
		}
		s.Positional = true
		return nil
	default:
		return fmt.Errorf("answer sheet must be an array or object")
	}
}

// answerElemsAreRecords reports whether the first non-null element is an
// object. Sheets do not mix forms; the first element decides for all.
func answerElemsAreRecords(elems []json.RawMessage) bool {
	for _, el := range elems {
		t := bytes.TrimSpace(el)
		if len(t) == 0 || bytes.Equal(t, []byte("null")) {
			continue
		}
		return t[0] == '{'
	}
	return false
}

// MarshalJSON always emits the explicit record form, sorted by item id, so
// repeated marshals of the same sheet are byte-identical.
func (s AnswerSheet) MarshalJSON() ([]byte, error) {
	out := make([]AnswerRecord, len(s.Records))
	copy(out, s.Records)
	if !s.Positional {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return json.Marshal(out)
}

// ResolvePositional rewrites a positional sheet against the shuffled item
// order, attaching ids by position. A sheet longer than the item list cannot
// be aligned and is rejected.
func (s AnswerSheet) ResolvePositional(order []string) ([]AnswerRecord, error) {
	if !s.Positional {
		return s.Records, nil
	}
	if len(s.Records) > len(order) {
		return nil, fmt.Errorf("%w: %d answers for %d items", ErrSheetMismatch, len(s.Records), len(order))
	}
	out := make([]AnswerRecord, len(s.Records))
	for i, rec := range s.Records {
		out[i] = AnswerRecord{ID: order[i], Value: rec.Value}
	}
	return out, nil
}
