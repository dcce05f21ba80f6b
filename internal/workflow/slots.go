package workflow

import "fmt"

// DefaultSlots are the bookable times offered when none are configured.
var DefaultSlots = buildSlots(8*60, 17*60+30, 30)

func buildSlots(fromMin, toMin, stepMin int) []string {
	var out []string
	for m := fromMin; m <= toMin; m += stepMin {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}
