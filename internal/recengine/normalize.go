package recengine

import (
	"strconv"

	"github.com/harborview-labs/concierge/internal/types"
)

// NormalizedPreferences is the numeric form of the preference table:
// one [0,1] vector per guest, dimensions laid out in Columns order.
type NormalizedPreferences struct {
	Columns []string
	vectors map[string][]float64
}

// Vector returns the guest's preference vector, or false when the guest
// has no preference row.
func (p *NormalizedPreferences) Vector(guestID string) ([]float64, bool) {
	v, ok := p.vectors[guestID]
	return v, ok
}

// NormalizedInteraction is an interaction row with its rating and
// time-spent rescaled to [0,1]. Optional columns stay nil when absent.
type NormalizedInteraction struct {
	GuestID   string
	Activity  string
	Rating    *float64
	TimeSpent *float64
}

// NormalizedInteractions is the rescaled interaction log. Advisory
// input only; nothing in the scoring path ranks on it.
type NormalizedInteractions struct {
	Rows []NormalizedInteraction
}

// Normalizer converts the raw input tables into numeric-ready form
// without altering row counts or identifier columns. The activity table
// passes through untouched; its scaling happens in the embedder so it
// stays aligned with the text-vector dimensionality.
type Normalizer struct {
	encoder *CategoricalEncoder
}

// NewNormalizer returns a normalizer using the current categorical
// encoder version.
func NewNormalizer() *Normalizer {
	return &Normalizer{encoder: NewCategoricalEncoder()}
}

// Normalize produces the per-guest preference vectors and the rescaled
// interaction log. Empty inputs pass through unchanged rather than
// erroring; a guest with no preference row simply has no vector.
func (n *Normalizer) Normalize(prefs types.PreferenceTable, inters types.InteractionTable) (*NormalizedPreferences, NormalizedInteractions) {
	return n.normalizePreferences(prefs), n.normalizeInteractions(inters)
}

func (n *Normalizer) normalizePreferences(prefs types.PreferenceTable) *NormalizedPreferences {
	out := &NormalizedPreferences{
		Columns: prefs.Columns,
		vectors: make(map[string][]float64, len(prefs.Rows)),
	}
	if len(prefs.Rows) == 0 {
		return out
	}
	for _, row := range prefs.Rows {
		out.vectors[row.GuestID] = make([]float64, len(prefs.Columns))
	}

	// Each column is encoded and scaled independently against its own
	// value distribution.
	for ci, col := range prefs.Columns {
		column := make([]float64, len(prefs.Rows))
		for ri, row := range prefs.Rows {
			column[ri] = n.encodeValue(row.Values[col])
		}
		var scaler MinMaxScaler
		scaled := scaler.FitTransform(column)
		for ri, row := range prefs.Rows {
			out.vectors[row.GuestID][ci] = scaled[ri]
		}
	}
	return out
}

// encodeValue turns a raw preference cell into a number: the sentinel
// and blanks become 0, numeric text stays numeric, everything else goes
// through the categorical encoder.
func (n *Normalizer) encodeValue(raw string) float64 {
	code := n.encoder.Encode(raw)
	if code == 0 {
		return 0
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return float64(code)
}

func (n *Normalizer) normalizeInteractions(inters types.InteractionTable) NormalizedInteractions {
	out := NormalizedInteractions{Rows: make([]NormalizedInteraction, len(inters.Rows))}

	var ratings, times []float64
	for _, row := range inters.Rows {
		if row.Rating != nil {
			ratings = append(ratings, float64(*row.Rating))
		}
		if row.TimeSpent != nil {
			times = append(times, float64(*row.TimeSpent))
		}
	}
	var ratingScaler, timeScaler MinMaxScaler
	ratingScaler.Fit(ratings)
	timeScaler.Fit(times)

	for i, row := range inters.Rows {
		nr := NormalizedInteraction{GuestID: row.GuestID, Activity: row.Activity}
		if row.Rating != nil {
			v := ratingScaler.Transform(float64(*row.Rating))
			nr.Rating = &v
		}
		if row.TimeSpent != nil {
			v := timeScaler.Transform(float64(*row.TimeSpent))
			nr.TimeSpent = &v
		}
		out.Rows[i] = nr
	}
	return out
}
