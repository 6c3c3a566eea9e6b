// Package playback advances a virtual clock over the fixed haunted-house
// timeline and fires effects at their scheduled offsets.
package playback

import (
	"time"

	"hauntedlights/internal/effects"
)

// Entry schedules one effect at an offset from the start of a run. Offsets are
// unique and strictly increasing within a timeline.
type Entry struct {
	Offset time.Duration `json:"time"`
	Effect string        `json:"effect"`
	Label  string        `json:"label"`
}

// Timeline is an ordered effect schedule with a fixed total duration.
type Timeline struct {
	Entries  []Entry
	Duration time.Duration
}

// Schedule is the haunted-house program, fixed at build time.
var Schedule = Timeline{
	Duration: 65 * time.Second,
	Entries: []Entry{
		{Offset: 0, Effect: effects.Reset, Label: "Lights Normal"},
		{Offset: 5 * time.Second, Effect: effects.Flicker, Label: "Quick Flicker"},
		{Offset: 12 * time.Second, Effect: effects.Dim, Label: "Dim Slowly"},
		{Offset: 20 * time.Second, Effect: effects.FlashRed, Label: "Red Flash"},
		{Offset: 25 * time.Second, Effect: effects.Blackout, Label: "Complete Darkness"},
		{Offset: 32 * time.Second, Effect: effects.FlashRed, Label: "Red Pulse"},
		{Offset: 38 * time.Second, Effect: effects.Reset, Label: "Lights Return"},
		{Offset: 45 * time.Second, Effect: effects.Flicker, Label: "Flickering"},
		{Offset: 52 * time.Second, Effect: effects.Blackout, Label: "Final Blackout"},
		{Offset: 60 * time.Second, Effect: effects.Reset, Label: "End - Normal"},
	},
}

// next returns the single due entry: the first whose offset has been reached
// by the clock but not yet fired. Because lastFired is monotonically
// non-decreasing, no entry at or before it can fire twice.
func (t Timeline) next(clock, lastFired time.Duration) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Offset <= clock && e.Offset > lastFired {
			return e, true
		}
	}
	return Entry{}, false
}
