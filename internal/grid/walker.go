// Package grid reconstructs the one-minute timeline implied by a stream of
// apnea annotations.
//
// Annotations are expected every constants.MinuteSamples samples starting at
// sample 0. A Walker keeps the expected-time cursor and turns each incoming
// annotation into the slots it settles: an unknown slot for every expected
// time it skips over, then the slot it lands on.
package grid

import (
	"iter"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/models"
)

// Walker tracks the expected-time cursor of a single record.
// The zero value starts at sample 0.
type Walker struct {
	expected int64
	minute   int
}

// Expected returns the sample offset at which the next annotation is expected
func (w *Walker) Expected() int64 {
	return w.expected
}

// Minutes returns the number of slots settled so far
func (w *Walker) Minutes() int {
	return w.minute
}

// Step returns the slots settled by annotation a, in timeline order.
//
// Annotations earlier than the cursor are stale and yield nothing. Every
// expected time strictly before a.Time yields an unknown slot. If a.Time
// then equals the cursor, a is on the grid and yields one slot of its own
// kind. An annotation between grid points only yields the gap slots.
//
// The cursor moves as slots are yielded; stopping the iteration early
// leaves it after the last yielded slot.
func (w *Walker) Step(a models.Annotation) iter.Seq[models.Slot] {
	return func(yield func(models.Slot) bool) {
		if a.Time < w.expected {
			return
		}
		for w.expected < a.Time {
			if !yield(w.advance(models.SlotUnknown)) {
				return
			}
		}
		if w.expected == a.Time {
			yield(w.advance(models.SlotFor(a)))
		}
	}
}

func (w *Walker) advance(kind models.SlotKind) models.Slot {
	s := models.Slot{Minute: w.minute, Time: w.expected, Kind: kind}
	w.expected += constants.MinuteSamples
	w.minute++
	return s
}
