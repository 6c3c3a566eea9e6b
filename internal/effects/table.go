// Package effects maps named lighting behaviors to device command batches and
// broadcasts them to every device a session knows about.
package effects

import "hauntedlights/internal/tuya"

// Effect names accepted by Trigger.
const (
	Blackout = "blackout"
	FlashRed = "flash-red"
	Reset    = "reset"
	Dim      = "dim"
	Flicker  = "flicker"
)

// table holds the static effect command batches, loaded once and never
// mutated. Flicker is absent: it is a procedural pulse sequence, not a batch.
var table = map[string][]tuya.Command{
	Blackout: {
		{Code: "switch_led", Value: false},
		{Code: "switch", Value: false},
	},
	FlashRed: {
		{Code: "switch_led", Value: true},
		{Code: "work_mode", Value: "colour"},
		// Some devices expect an object, some a stringified JSON value.
		{Code: "colour_data_v2", Value: `{"h":0,"s":1000,"v":1000}`},
	},
	Reset: {
		{Code: "switch_led", Value: true},
		{Code: "switch", Value: true},
		{Code: "work_mode", Value: "white"},
		{Code: "bright_value_v2", Value: 500},
	},
	Dim: {
		{Code: "switch_led", Value: true},
		{Code: "bright_value_v2", Value: 100},
	},
}

// Known reports whether name is a valid effect, including flicker.
func Known(name string) bool {
	if name == Flicker {
		return true
	}
	_, ok := table[name]
	return ok
}

// Commands returns the command batch for a static effect.
func Commands(name string) ([]tuya.Command, bool) {
	cmds, ok := table[name]
	return cmds, ok
}
