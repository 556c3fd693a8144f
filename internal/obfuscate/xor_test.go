package obfuscate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripJSONValues(t *testing.T) {
	values := []any{
		map[string]any{"tasks": []any{"a", "b"}, "dailyGoal": float64(6)},
		[]any{float64(1), "二", true, nil},
		"plain ascii",
		"emoji 🍅 and 中文 mixed",
		float64(42),
		nil,
	}
	keys := []string{"k", "aipomodoro-local-key", "钥匙🔑"}

	for _, key := range keys {
		for _, v := range values {
			raw, err := json.Marshal(v)
			require.NoError(t, err)

			enc, err := Encode(string(raw), key)
			require.NoError(t, err)
			dec, err := Decode(enc, key)
			require.NoError(t, err)

			var got any
			require.NoError(t, json.Unmarshal([]byte(dec), &got))
			assert.Equal(t, v, got, "key %q", key)
		}
	}
}

func TestEncodeOutputIsNotPlaintext(t *testing.T) {
	enc, err := Encode(`{"secret":"value"}`, "key")
	require.NoError(t, err)
	assert.NotContains(t, enc, "secret")
}

func TestEmptyKeyRejected(t *testing.T) {
	_, err := Encode("x", "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = Decode("AAAA", "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestDecodeMalformedInput(t *testing.T) {
	_, err := Decode("not base64!!", "key")
	assert.ErrorIs(t, err, ErrMalformedInput)

	// "AA==" is a single byte, which cannot hold a UTF-16 code unit.
	_, err = Decode("AA==", "key")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestWrongKeyDoesNotRoundTrip(t *testing.T) {
	enc, err := Encode(`{"a":1}`, "right")
	require.NoError(t, err)
	dec, err := Decode(enc, "wrong")
	require.NoError(t, err)

	var v any
	assert.Error(t, json.Unmarshal([]byte(dec), &v))
}

func TestBytesHelpers(t *testing.T) {
	enc, err := EncodeBytes([]byte(`[1,2,3]`), "k")
	require.NoError(t, err)
	dec, err := DecodeBytes(enc, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(dec))
}
