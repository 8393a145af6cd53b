package types

// StatusName is a positioning status reported by the native engine.
type StatusName string

const (
	StatusStarting          StatusName = "STARTING"
	StatusCalculating       StatusName = "CALCULATING"
	StatusPositioning       StatusName = "POSITIONING"
	StatusUserNotInBuilding StatusName = "USER_NOT_IN_BUILDING"
	StatusStopped           StatusName = "STOPPED"
)

// LocationStatus pairs the engine status name with its numeric code.
type LocationStatus struct {
	StatusName StatusName `json:"statusName"`
	Code       int        `json:"code"`
}

// ViewerVisible reports whether the embedded viewer understands this status
// name. The viewer vocabulary is a strict subset of the engine vocabulary:
// anything else must be swallowed before reaching the viewer channel, while
// user callbacks still receive the raw name.
func (s StatusName) ViewerVisible() bool {
	switch s {
	case StatusStarting, StatusUserNotInBuilding, StatusStopped:
		return true
	case StatusCalculating, StatusPositioning:
		return false
	default:
		return false
	}
}

// AdaptForViewer maps an engine status name onto the viewer vocabulary. The
// viewer has no CALCULATING state; it must keep showing its "starting" UI
// until real positions arrive, so CALCULATING becomes STARTING. Everything
// else passes through unchanged, including names the viewer will reject.
func (s StatusName) AdaptForViewer() StatusName {
	if s == StatusCalculating {
		return StatusStarting
	}
	return s
}
