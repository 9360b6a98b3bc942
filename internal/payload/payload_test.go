package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope() *Envelope {
	return &Envelope{
		Version: "2024.1",
		TS:      1700000000,
		Weights: map[string]any{
			"full":  map[string]any{"q1": []any{1.0, 0.5}},
			"quick": map[string]any{"q1": []any{2.0}},
		},
		Mapping: Mapping{
			Funcs: map[string]any{"te": "Black Logic"},
		},
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	sealed, err := Seal(testEnvelope(), "master-key")
	require.NoError(t, err)
	require.True(t, IsSealed(sealed))

	got, err := Open(sealed, "master-key")
	require.NoError(t, err)
	assert.Equal(t, testEnvelope(), got)
}

func TestSeal_NonceVaries(t *testing.T) {
	a, err := Seal(testEnvelope(), "k")
	require.NoError(t, err)
	b, err := Seal(testEnvelope(), "k")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "every seal uses a fresh nonce")
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := Seal(testEnvelope(), "right")
	require.NoError(t, err)
	_, err = Open(sealed, "wrong")
	assert.ErrorIs(t, err, ErrBadSeal)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	sealed, err := Seal(testEnvelope(), "k")
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0x01
	_, err = Open(sealed, "k")
	assert.ErrorIs(t, err, ErrBadSeal)
}

func TestOpen_TruncatedAndUnsealed(t *testing.T) {
	_, err := Open([]byte("TMPK1short"), "k")
	assert.ErrorIs(t, err, ErrBadSeal)

	_, err = Open([]byte(`{"weights":{}}`), "k")
	assert.Error(t, err, "plain JSON has no seal magic")
}

func TestDecode_PlainJSONFallback(t *testing.T) {
	env, err := Decode([]byte(`{"version":"v","ts":5,"weights":{"full":{}}}`), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "v", env.Version)
	assert.Contains(t, env.Weights, "full")
}

func TestDecode_SealedPassThrough(t *testing.T) {
	sealed, err := Seal(testEnvelope(), "k")
	require.NoError(t, err)
	env, err := Decode(sealed, "k")
	require.NoError(t, err)
	assert.Equal(t, "2024.1", env.Version)
}

func TestParse_RequiresWeights(t *testing.T) {
	_, err := Parse([]byte(`{"version":"v"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestEnvelope_ModesSorted(t *testing.T) {
	assert.Equal(t, []string{"full", "quick"}, testEnvelope().Modes())
	assert.Empty(t, (&Envelope{}).Modes())
}
