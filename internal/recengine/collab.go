package recengine

import (
	"sort"

	"github.com/harborview-labs/concierge/internal/types"
)

// neighborCount is how many most-similar guests feed the collaborative
// recommendation set.
const neighborCount = 5

// CollaborativeScore returns the activity names the guest's nearest
// neighbors (by activity-overlap pattern) have done and the guest has
// not. The result carries no ranking; a guest absent from the activity
// table gets an empty set.
func CollaborativeScore(guestID string, acts types.ActivityTable) []string {
	pivot := pivotGuestActivity(acts)
	target, ok := pivot.rowOf[guestID]
	if !ok {
		return nil
	}

	type neighbor struct {
		row int
		sim float64
	}
	neighbors := make([]neighbor, 0, len(pivot.guests)-1)
	for row := range pivot.guests {
		if row == target {
			continue
		}
		neighbors = append(neighbors, neighbor{
			row: row,
			sim: CosineSimilarity(pivot.matrix[target], pivot.matrix[row]),
		})
	}
	// Similarity descending, ties broken by matrix row order.
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].sim > neighbors[j].sim
	})
	if len(neighbors) > neighborCount {
		neighbors = neighbors[:neighborCount]
	}

	own := acts.CompletedBy(guestID)
	seen := make(map[string]struct{})
	var out []string
	for _, nb := range neighbors {
		for _, name := range pivot.doneBy[pivot.guests[nb.row]] {
			if _, done := own[name]; done {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// guestActivityPivot is the guest-by-activity count matrix: rows are
// guests in sorted identifier order, columns activities in sorted name
// order, cells the occurrence count.
type guestActivityPivot struct {
	guests []string
	rowOf  map[string]int
	matrix [][]float64
	doneBy map[string][]string // distinct activity names per guest, table order
}

func pivotGuestActivity(acts types.ActivityTable) *guestActivityPivot {
	p := &guestActivityPivot{
		rowOf:  make(map[string]int),
		doneBy: make(map[string][]string),
	}
	activityCol := make(map[string]int)
	var activities []string
	seenPerGuest := make(map[string]map[string]struct{})

	for _, row := range acts.Rows {
		if _, ok := p.rowOf[row.GuestID]; !ok {
			p.rowOf[row.GuestID] = 0
			p.guests = append(p.guests, row.GuestID)
			seenPerGuest[row.GuestID] = make(map[string]struct{})
		}
		if _, ok := activityCol[row.Activity]; !ok {
			activityCol[row.Activity] = 0
			activities = append(activities, row.Activity)
		}
		if _, ok := seenPerGuest[row.GuestID][row.Activity]; !ok {
			seenPerGuest[row.GuestID][row.Activity] = struct{}{}
			p.doneBy[row.GuestID] = append(p.doneBy[row.GuestID], row.Activity)
		}
	}
	sort.Strings(p.guests)
	sort.Strings(activities)
	for i, id := range p.guests {
		p.rowOf[id] = i
	}
	for i, name := range activities {
		activityCol[name] = i
	}

	p.matrix = make([][]float64, len(p.guests))
	for i := range p.matrix {
		p.matrix[i] = make([]float64, len(activities))
	}
	for _, row := range acts.Rows {
		p.matrix[p.rowOf[row.GuestID]][activityCol[row.Activity]]++
	}
	return p
}
