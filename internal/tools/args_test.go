package tools

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	cases := []struct {
		value any
		want  int
	}{
		{nil, 20},
		{5, 5},
		{5.6, 6},
		{"12", 12},
		{"abc", 20},
		{math.NaN(), 20},
		{math.Inf(1), 20},
		{-10, 1},
		{1e9, 200},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, clampInt(tc.value, 20, 1, 200), "value %v", tc.value)
	}
}

func TestDecodeArgsWeakStrings(t *testing.T) {
	var args readInput
	err := decodeArgs(map[string]any{"path": 42, "max_chars": "10"}, &args)
	assert.NoError(t, err)
	assert.Equal(t, "42", args.Path)
	assert.Equal(t, 10, clampInt(args.MaxChars, 1, 1, 100))

	err = decodeArgs(map[string]any{"path": map[string]any{"nested": true}}, &args)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
