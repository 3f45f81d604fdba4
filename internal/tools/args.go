package tools

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// decodeArgs decodes a free-form input object into out. Scalars are
// converted weakly, so a numeric path or query becomes a string.
func decodeArgs(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return Wrap(err, "failed to prepare arguments")
	}
	if err := decoder.Decode(input); err != nil {
		return InvalidInputf("invalid arguments: %v", err)
	}
	return nil
}

// clampInt rounds value into [lo, hi]. Missing or non-numeric values
// yield fallback.
func clampInt(value any, fallback, lo, hi int) int {
	if value == nil {
		return fallback
	}
	numeric, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(numeric) || math.IsInf(numeric, 0) {
		return fallback
	}
	rounded := math.Round(numeric)
	if rounded < float64(lo) {
		return lo
	}
	if rounded > float64(hi) {
		return hi
	}
	return int(rounded)
}
