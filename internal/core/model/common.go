package model

// MAPLE phase codes
const (
	PhaseMonitor    = "m"
	PhaseAnalysis   = "a"
	PhasePlan       = "p"
	PhaseLegitimate = "l"
	PhaseExecute    = "e"
)

// Default stream names used by the monitor specifications
const (
	StreamAtomicStage = "atomicstage"
	StreamStageOut    = "stageout"
	StreamMaple       = "maple"
	StreamAtomic      = "atomic"
)

// DefaultOrder is the natural pipeline order of stage keys, including the
// analysis outcome variants.
var DefaultOrder = []string{"m", "a", "aok", "anom", "p", "l", "e"}

// DefaultColors maps stage keys and marker values to chart fill colors
var DefaultColors = map[string]string{
	"m":    "#cbd7ea",
	"a":    "#b1d0ad",
	"anom": "#e02e44",
	"aok":  "#b1d0ad",
	"p":    "#f4a918",
	"l":    "#3273d8",
	"e":    "#a251cb",
}

// PhaseName returns the long name of a phase code
func PhaseName(code string) string {
	switch code {
	case PhaseMonitor:
		return "Monitor"
	case PhaseAnalysis:
		return "Analysis"
	case PhasePlan:
		return "Plan"
	case PhaseLegitimate:
		return "Legitimate"
	case PhaseExecute:
		return "Execute"
	default:
		return code
	}
}
