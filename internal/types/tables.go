package types

import (
	"time"
)

// NoPreference is the sentinel stored in preference columns when a guest
// declined to state a preference. The engine encodes it as 0.
const NoPreference = "No Preference"

// PreferenceRow is one guest's raw preference record. Values are free text
// keyed by preference category (Dining, Sports, Wellness, ...).
type PreferenceRow struct {
	GuestID string            `json:"guest_id"`
	Values  map[string]string `json:"values"`
}

// PreferenceTable holds one row per guest. Columns fixes the category
// order so that every derived vector lays out its dimensions identically.
type PreferenceTable struct {
	Columns []string        `json:"columns"`
	Rows    []PreferenceRow `json:"rows"`
}

// Row returns the preference row for guestID, or nil when the guest has
// no record.
func (t *PreferenceTable) Row(guestID string) *PreferenceRow {
	for i := range t.Rows {
		if t.Rows[i].GuestID == guestID {
			return &t.Rows[i]
		}
	}
	return nil
}

// ActivityRow is one completed activity occurrence. The same activity
// name may recur across guests and occasions.
type ActivityRow struct {
	GuestID   string    `json:"guest_id"`
	Activity  string    `json:"activity"`
	Category  string    `json:"category"`
	Rating    int       `json:"rating"`     // 1-5
	TimeSpent int       `json:"time_spent"` // minutes
	Date      time.Time `json:"date"`
	TimeOfDay string    `json:"time_of_day"`
}

// ActivityTable holds every recorded (guest, activity, occasion) row.
type ActivityTable struct {
	Rows []ActivityRow `json:"rows"`
}

// CompletedBy returns the set of distinct activity names guestID has
// done, independent of occasion.
func (t *ActivityTable) CompletedBy(guestID string) map[string]struct{} {
	done := make(map[string]struct{})
	for _, row := range t.Rows {
		if row.GuestID == guestID {
			done[row.Activity] = struct{}{}
		}
	}
	return done
}

// InteractionRow logs guest engagement with promotional content.
// Rating and TimeSpent are optional; advisory input only, never ranked.
type InteractionRow struct {
	GuestID   string    `json:"guest_id"`
	Activity  string    `json:"activity"`
	Rating    *int      `json:"rating,omitempty"`
	TimeSpent *int      `json:"time_spent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InteractionTable holds the promotional interaction log.
type InteractionTable struct {
	Rows []InteractionRow `json:"rows"`
}

// TableSnapshot bundles the three input tables for one recommendation
// call. Each call gets its own snapshot; the engine never mutates it
// beyond the normalization copies it makes internally.
type TableSnapshot struct {
	Preferences  PreferenceTable
	Activities   ActivityTable
	Interactions InteractionTable
}
