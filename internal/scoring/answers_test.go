package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerSheet_UnmarshalPositional(t *testing.T) {
	var s AnswerSheet
	require.NoError(t, json.Unmarshal([]byte(`[2, -1, null, 0.5]`), &s))
	assert.True(t, s.Positional)
	require.Len(t, s.Records, 4)
	assert.Equal(t, 2.0, *s.Records[0].Value)
	assert.Equal(t, -1.0, *s.Records[1].Value)
	assert.Nil(t, s.Records[2].Value, "null keeps its slot as unanswered")
	assert.Equal(t, 0.5, *s.Records[3].Value)
	assert.Empty(t, s.Records[0].ID, "positional slots have no ids until resolved")
}

func TestAnswerSheet_UnmarshalRecords(t *testing.T) {
	var s AnswerSheet
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "q2", "value": -2},
		{"id": "q1", "value": null}
	]`), &s))
	assert.False(t, s.Positional)
	require.Len(t, s.Records, 2)
	assert.Equal(t, "q2", s.Records[0].ID)
	assert.Equal(t, -2.0, *s.Records[0].Value)
	assert.Nil(t, s.Records[1].Value)
}

func TestAnswerSheet_UnmarshalMap(t *testing.T) {
	var s AnswerSheet
	require.NoError(t, json.Unmarshal([]byte(`{"q3": 1, "q1": 2, "q2": null}`), &s))
	assert.False(t, s.Positional)
	require.Len(t, s.Records, 3)
	// Map form sorts by id so decoding is order-stable.
	assert.Equal(t, "q1", s.Records[0].ID)
	assert.Equal(t, "q2", s.Records[1].ID)
	assert.Equal(t, "q3", s.Records[2].ID)
	assert.Nil(t, s.Records[1].Value)
}

func TestAnswerSheet_UnmarshalLeadingNulls(t *testing.T) {
	var s AnswerSheet
	require.NoError(t, json.Unmarshal([]byte(`[null, {"id": "q1", "value": 1}]`), &s))
	assert.False(t, s.Positional, "the first non-null element decides the form")
	require.Len(t, s.Records, 2)
	assert.Empty(t, s.Records[0].ID)
}

func TestAnswerSheet_UnmarshalRejectsScalars(t *testing.T) {
	var s AnswerSheet
	assert.Error(t, json.Unmarshal([]byte(`"q1=2"`), &s))
	assert.Error(t, json.Unmarshal([]byte(``), &s))
}

func TestAnswerSheet_MarshalIsStable(t *testing.T) {
	s := AnswerSheet{Records: []AnswerRecord{
		{ID: "q2", Value: fp(1)},
		{ID: "q1", Value: nil},
	}}
	first, err := json.Marshal(s)
	require.NoError(t, err)
	second, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.JSONEq(t, `[{"id":"q1","value":null},{"id":"q2","value":1}]`, string(first))
}

func TestAnswerSheet_ResolvePositional(t *testing.T) {
	var s AnswerSheet
	require.NoError(t, json.Unmarshal([]byte(`[2, null, -1]`), &s))

	records, err := s.ResolvePositional([]string{"c", "a", "b", "d"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.Nil(t, records[1].Value)
	assert.Equal(t, "b", records[2].ID)

	_, err = s.ResolvePositional([]string{"only-one"})
	assert.ErrorIs(t, err, ErrSheetMismatch, "more answers than items cannot be aligned")
}

func TestAnswerSheet_ResolvePositionalPassthrough(t *testing.T) {
	s := AnswerSheet{Records: []AnswerRecord{{ID: "q1", Value: fp(1)}}}
	records, err := s.ResolvePositional(nil)
	require.NoError(t, err)
	assert.Equal(t, s.Records, records, "record sheets ignore the order entirely")
}
