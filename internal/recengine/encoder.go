package recengine

import (
	"hash/fnv"
	"strings"

	"github.com/harborview-labs/concierge/internal/types"
)

// EncoderVersion tags the categorical encoding scheme. Bump it whenever
// the code-assignment rule changes so stored evaluations can tell which
// dictionary produced a vector.
const EncoderVersion = "v1"

// encoderRange bounds the integer codes assigned to free-text values.
// Code 0 stays reserved for "No Preference"/missing.
const encoderRange = 999

// CategoricalEncoder deterministically maps free-text preference values
// to small integers so unlike categorical values can be compared
// numerically. The same value always maps to the same code, across rows,
// runs and platforms.
type CategoricalEncoder struct {
	Version string
}

// NewCategoricalEncoder returns the current encoder.
func NewCategoricalEncoder() *CategoricalEncoder {
	return &CategoricalEncoder{Version: EncoderVersion}
}

// Encode returns the integer code for a raw preference value. Empty
// values and the "No Preference" sentinel encode as 0; everything else
// lands in [1, 999].
func (e *CategoricalEncoder) Encode(value string) int {
	v := strings.TrimSpace(value)
	if v == "" || v == "0" || strings.EqualFold(v, types.NoPreference) {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(v)))
	return int(h.Sum32()%encoderRange) + 1
}
